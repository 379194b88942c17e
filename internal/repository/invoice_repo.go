package repository

import (
	"context"
	"time"

	"cafebook/internal/model"

	"gorm.io/gorm"
)

// InvoiceListFilter is the resolved form of dto.InvoiceFilter.
type InvoiceListFilter struct {
	From, To   *time.Time // [From, To)
	EmployeeID uint
	Page       int
	Limit      int
}

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	ReserveLineNumbers(ctx context.Context, tx *gorm.DB, invoiceID uint, n int) (first int, err error)
	CreateLines(ctx context.Context, tx *gorm.DB, lines []model.InvoiceLine) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Employee", "Lines").Create(inv).Error
}

// ReserveLineNumbers bumps the invoice's counter by n and returns the first
// reserved number; the batch owns [first, first+n). The UPDATE takes the row
// lock, so concurrent reservations on one invoice are serialized until the
// surrounding transaction ends. Returns gorm.ErrRecordNotFound when the
// invoice does not exist.
func (r *invoiceRepo) ReserveLineNumbers(ctx context.Context, tx *gorm.DB, invoiceID uint, n int) (int, error) {
	db := conn(r.db, tx).WithContext(ctx)

	res := db.Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		UpdateColumn("last_line_no", gorm.Expr("last_line_no + ?", n))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var last int
	if err := db.Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		Pluck("last_line_no", &last).Error; err != nil {
		return 0, err
	}
	return last - n + 1, nil
}

func (r *invoiceRepo) CreateLines(ctx context.Context, tx *gorm.DB, lines []model.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Omit("Product", "Voucher").Create(&lines).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Preload("Lines.Product").
		Preload("Lines.Voucher").
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var (
		invoices []model.Invoice
		total    int64
	)
	offset, limit := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", filter.To.UTC())
	}
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Employee").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Preload("Lines.Product").
		Preload("Lines.Voucher").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	return invoices, total, err
}
