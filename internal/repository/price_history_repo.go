package repository

import (
	"context"

	"cafebook/internal/model"

	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.PriceChange) error
	ListByProduct(ctx context.Context, productID uint, page, limit int) ([]model.PriceChange, int64, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) Create(ctx context.Context, tx *gorm.DB, c *model.PriceChange) error {
	return conn(r.db, tx).WithContext(ctx).Create(c).Error
}

// ListByProduct returns one page of price changes for a product, newest first.
func (r *priceHistoryRepo) ListByProduct(ctx context.Context, productID uint, page, limit int) ([]model.PriceChange, int64, error) {
	offset, limit := paginate(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceChange{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceChange
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Preload("Employee").
		Find(&rows).Error
	return rows, total, err
}
