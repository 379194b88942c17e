package infra

// pdf.go: invoice receipts rendered with go-pdf/fpdf.
// Narrow receipt-paper layout: shop header, invoice number and time,
// one row per line (name, qty, voucher, total) and the grand total.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cafebook/internal/model"

	"github.com/go-pdf/fpdf"
)

const shopName = "CafeBook"

// WriteInvoicePDF renders inv as a receipt into w. inv must have its lines
// loaded with Product and Voucher.
func WriteInvoicePDF(inv *model.Invoice, w io.Writer) error {
	pdf := renderInvoice(inv)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render invoice %d: %w", inv.ID, err)
	}
	return nil
}

// SaveInvoicePDF writes the receipt to storagePath/invoice_{id}.pdf (the
// directory is created if needed) and returns the file path.
func SaveInvoicePDF(inv *model.Invoice, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("invoice_%d.pdf", inv.ID))

	pdf := renderInvoice(inv)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func renderInvoice(inv *model.Invoice) *fpdf.Fpdf {
	// 80mm is the common thermal roll width; height grows with the line count.
	height := 70 + float64(len(inv.Lines))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	// Core fonts are cp1252; characters outside it degrade instead of failing.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Hoa don ban hang"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("HD #%d", inv.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, inv.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if inv.Employee.Name != "" {
		pdf.CellFormat(contentW, 4, tr("NV: "+inv.Employee.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.46 // product
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.14 // voucher %
	col4 := contentW * 0.28 // line total

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "San pham", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "SL", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Giam", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 5, "Thanh tien", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, line := range inv.Lines {
		name := []rune(line.Product.Name)
		if len(name) > 24 {
			name = append(name[:23], '.')
		}
		discount := ""
		if line.Voucher != nil {
			discount = fmt.Sprintf("-%d%%", line.Voucher.Percent)
		}
		pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, discount, "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 5, line.Total().StringFixed(0), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2+col3, 6, "TONG CONG:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, inv.Total().StringFixed(0)+" VND", "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Cam on quy khach!", "", 1, "C", false, 0, "")
	return pdf
}
