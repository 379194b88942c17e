package infra

import (
	"cafebook/internal/dto"

	"github.com/xuri/excelize/v2"
)

// StatisticsWorkbook renders a report as an .xlsx file with a summary sheet
// plus, when present, the revenue series and top products.
func StatisticsWorkbook(report *dto.StatisticsResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Tong quan"
	index, err := f.NewSheet(summary)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	rows := [][]any{
		{"Chi so", "Gia tri"},
		{"Loai bao cao", report.Type},
		{"Tu", report.From.Format("2006-01-02")},
		{"Den (khong gom)", report.To.Format("2006-01-02")},
		{"So hoa don", report.InvoiceCount},
		{"Doanh thu", report.Revenue.InexactFloat64()},
		{"Tong san pham ban", report.ItemsSold},
		{"Do uong ban", report.Drink.ItemsSold},
		{"Do an ban", report.Food.ItemsSold},
		{"Ban chay (do uong)", bestSellerName(report.Drink)},
		{"Ban chay (do an)", bestSellerName(report.Food)},
	}
	if err := writeRows(f, summary, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(summary, "A", "A", 24)
	_ = f.SetColWidth(summary, "B", "B", 20)
	_ = f.SetCellStyle(summary, "A1", "B1", header)

	if len(report.Series) > 0 {
		const sheet = "Doanh thu"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		series := [][]any{{"Moc", "Doanh thu"}}
		for _, p := range report.Series {
			series = append(series, []any{p.Label, p.Revenue.InexactFloat64()})
		}
		if err := writeRows(f, sheet, series); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(sheet, "A1", "B1", header)
	}

	if len(report.TopProducts) > 0 {
		const sheet = "Top san pham"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		top := [][]any{{"ID", "San pham", "Loai", "So luong", "Doanh thu"}}
		for _, p := range report.TopProducts {
			top = append(top, []any{p.ProductID, p.Name, p.Category, p.Quantity, p.Revenue.InexactFloat64()})
		}
		if err := writeRows(f, sheet, top); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(sheet, "B", "B", 28)
		_ = f.SetCellStyle(sheet, "A1", "E1", header)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, values := range rows {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func bestSellerName(c dto.CategorySummary) string {
	if c.BestSeller == nil {
		return "-"
	}
	return c.BestSeller.Name
}
