package repository

import (
	"context"
	"time"

	"cafebook/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleRow is one invoice line joined with its invoice time and product.
type SaleRow struct {
	InvoiceID   uint
	LineNo      int
	CreatedAt   time.Time
	ProductID   uint
	ProductName string
	Category    string
	Price       decimal.Decimal
	Quantity    int
}

type StatisticsRepository interface {
	CountInvoices(ctx context.Context, from, to time.Time) (int64, error)
	SalesBetween(ctx context.Context, from, to time.Time) ([]SaleRow, error)
}

type statisticsRepo struct{ db *gorm.DB }

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository { return &statisticsRepo{db: db} }

func (r *statisticsRepo) CountInvoices(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}

// SalesBetween returns every line of invoices created in [from, to), ordered
// by invoice then line number. Aggregation tie-breaks rely on this order.
func (r *statisticsRepo) SalesBetween(ctx context.Context, from, to time.Time) ([]SaleRow, error) {
	var rows []SaleRow
	err := r.db.WithContext(ctx).
		Table("invoice_lines AS l").
		Select(`l.invoice_id, l.line_no, i.created_at, l.product_id,
			p.name AS product_name, p.category, p.price, l.quantity`).
		Joins("JOIN invoices i ON i.id = l.invoice_id").
		Joins("JOIN products p ON p.id = l.product_id").
		Where("i.created_at >= ? AND i.created_at < ?", from.UTC(), to.UTC()).
		Order("l.invoice_id, l.line_no").
		Scan(&rows).Error
	return rows, err
}
