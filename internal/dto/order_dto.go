package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceFilter is bound from query string of GET /v1/invoices.
type InvoiceFilter struct {
	Date       string `form:"date"` // YYYY-MM-DD in the shop's timezone; empty = all
	EmployeeID uint   `form:"employee_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LineItemRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
	Note      *string `json:"note"       validate:"omitempty,max=255"`
	VoucherID *uint   `json:"voucher_id" validate:"omitempty,min=1"`
}

// CreateInvoiceRequest opens an empty invoice. EmployeeID defaults to the
// authenticated employee when zero.
type CreateInvoiceRequest struct {
	EmployeeID uint `json:"employee_id"`
}

type AppendLinesRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderRequest opens an invoice and appends its lines in one step.
type CreateOrderRequest struct {
	EmployeeID uint              `json:"employee_id"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReceiptEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceLineResponse struct {
	LineNo          int             `json:"line_no"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VoucherID       *uint           `json:"voucher_id"`
	DiscountPercent int             `json:"discount_percent"`
	Note            *string         `json:"note"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type InvoiceResponse struct {
	ID           uint                  `json:"id"`
	EmployeeID   uint                  `json:"employee_id"`
	EmployeeName string                `json:"employee_name,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	Lines        []InvoiceLineResponse `json:"lines"`
	Total        decimal.Decimal       `json:"total"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
