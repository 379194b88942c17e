package repository

import (
	"context"

	"cafebook/internal/dto"
	"cafebook/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.Product) error
	DB() *gorm.DB
	SoftDelete(ctx context.Context, id uint) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

// FindByIDs loads the given products in one query, keyed by id. Missing ids
// are simply absent from the map.
func (r *productRepo) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := conn(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)
	offset, limit := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("name").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return conn(r.db, tx).WithContext(ctx).Save(p).Error
}

// SoftDelete deactivates a product; invoice lines keep referencing it.
func (r *productRepo) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
