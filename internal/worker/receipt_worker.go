package worker

// receipt_worker.go
// Renders an invoice receipt to PDF and hands it to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"cafebook/internal/infra"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID uint   `json:"invoice_id"`
	ToEmail   string `json:"to_email"`
}

// InvoiceFinder is the part of repository.InvoiceRepository the worker needs.
type InvoiceFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	invoices       InvoiceFinder
	emails         EmailEnqueuer
	pdfStoragePath string
}

func NewReceiptWorker(invoices InvoiceFinder, emails EmailEnqueuer, pdfStoragePath string) *ReceiptWorker {
	return &ReceiptWorker{invoices: invoices, emails: emails, pdfStoragePath: pdfStoragePath}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("receipt_worker: invalid payload: %w", err))
	}

	inv, err := w.invoices.FindByID(ctx, payload.InvoiceID)
	if repository.IsNotFound(err) {
		return Permanent(fmt.Errorf("receipt_worker: invoice %d not found", payload.InvoiceID))
	}
	if err != nil {
		return fmt.Errorf("receipt_worker: load invoice %d: %w", payload.InvoiceID, err)
	}

	pdfPath, err := infra.SaveInvoicePDF(inv, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Uint("invoice_id", inv.ID).Msg("receipt_worker: PDF generated")

	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail:    payload.ToEmail,
		Subject:    fmt.Sprintf("Hóa đơn CafeBook #%d", inv.ID),
		Body:       fmt.Sprintf("Cảm ơn quý khách. Hóa đơn #%d đính kèm.\nTổng cộng: %s VND", inv.ID, inv.Total().StringFixed(0)),
		Attachment: pdfPath,
	})
}
