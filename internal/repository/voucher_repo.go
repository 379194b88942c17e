package repository

import (
	"context"

	"cafebook/internal/model"

	"gorm.io/gorm"
)

type VoucherRepository interface {
	Create(ctx context.Context, v *model.Voucher) error
	FindByID(ctx context.Context, id uint) (*model.Voucher, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]model.Voucher, error)
	List(ctx context.Context, category string) ([]model.Voucher, error)
	Update(ctx context.Context, v *model.Voucher) error
	Delete(ctx context.Context, id uint) error
}

type voucherRepo struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) VoucherRepository { return &voucherRepo{db: db} }

func (r *voucherRepo) Create(ctx context.Context, v *model.Voucher) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *voucherRepo) FindByID(ctx context.Context, id uint) (*model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).First(&v, id).Error
	return &v, err
}

func (r *voucherRepo) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]model.Voucher, error) {
	out := make(map[uint]model.Voucher, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var vouchers []model.Voucher
	if err := conn(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&vouchers).Error; err != nil {
		return nil, err
	}
	for _, v := range vouchers {
		out[v.ID] = v
	}
	return out, nil
}

func (r *voucherRepo) List(ctx context.Context, category string) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("starts_at DESC").Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepo) Update(ctx context.Context, v *model.Voucher) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// Delete removes the voucher and detaches it from any invoice lines.
func (r *voucherRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.InvoiceLine{}).
			Where("voucher_id = ?", id).
			Update("voucher_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Voucher{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
