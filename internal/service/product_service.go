package service

import (
	"context"
	"strconv"

	"cafebook/internal/apierror"
	"cafebook/internal/auth"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uint) error
	PriceHistory(ctx context.Context, id uint, filter dto.PriceHistoryFilter) (*dto.PriceHistoryResponse, error)
}

// Cache is satisfied by *infra.JSONCache.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

type productService struct {
	repo    repository.ProductRepository
	history repository.PriceHistoryRepository
	cache   Cache
}

// NewProductService wires the product catalog. Detail reads go through
// cache; every write evicts the entry. Cache errors are logged, never
// returned. Price edits are recorded in history in the same transaction.
func NewProductService(repo repository.ProductRepository, history repository.PriceHistoryRepository, cache Cache) ProductService {
	return &productService{repo: repo, history: history, cache: cache}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.IsNegative() {
		return nil, apierror.Invalid(apierror.NegativeQuantity, "price", "Giá sản phẩm không được âm")
	}
	p := &model.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Active:   true,
		ImageURL: req.ImageURL,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên sản phẩm đã tồn tại")
		}
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	key := strconv.FormatUint(uint64(id), 10)
	var cached dto.ProductResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Uint("product_id", id).Msg("product cache read failed")
	}
	if hit {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityProduct, id)
	}
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn().Err(err).Uint("product_id", id).Msg("product cache write failed")
	}
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = toProductResponse(&products[i])
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityProduct, id)
	}
	if err != nil {
		return nil, err
	}

	before := p.Price
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.Invalid(apierror.NegativeQuantity, "price", "Giá sản phẩm không được âm")
		}
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		if p.Price.Equal(before) {
			return nil
		}
		change := &model.PriceChange{ProductID: p.ID, PriceBefore: before, PriceAfter: p.Price}
		if claims, ok := auth.FromContext(ctx); ok && claims.EmployeeID != 0 {
			change.ChangedBy = &claims.EmployeeID
		}
		return s.history.Create(ctx, tx, change)
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên sản phẩm đã tồn tại")
		}
		return nil, err
	}
	if !p.Price.Equal(before) {
		log.Info().Uint("product_id", id).Str("from", before.String()).Str("to", p.Price.String()).Msg("product price changed")
	}
	s.evict(ctx, id)
	resp := toProductResponse(p)
	return &resp, nil
}

// Deactivate hides a product from sale; existing invoice lines keep it.
func (s *productService) Deactivate(ctx context.Context, id uint) error {
	err := s.repo.SoftDelete(ctx, id)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityProduct, id)
	}
	if err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

// PriceHistory lists recorded price edits for a product, newest first.
func (s *productService) PriceHistory(ctx context.Context, id uint, filter dto.PriceHistoryFilter) (*dto.PriceHistoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.EntityProduct, id)
		}
		return nil, err
	}
	rows, total, err := s.history.ListByProduct(ctx, id, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PriceChangeResponse, len(rows))
	for i, r := range rows {
		data[i] = dto.PriceChangeResponse{
			ID:          r.ID,
			ProductID:   r.ProductID,
			PriceBefore: r.PriceBefore,
			PriceAfter:  r.PriceAfter,
			ChangedBy:   r.ChangedBy,
			CreatedAt:   r.CreatedAt,
		}
		if r.Employee != nil {
			name := r.Employee.Name
			data[i].ChangedByName = &name
		}
	}
	return &dto.PriceHistoryResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) evict(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, strconv.FormatUint(uint64(id), 10)); err != nil {
		log.Warn().Err(err).Uint("product_id", id).Msg("product cache evict failed")
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Active:   p.Active,
		ImageURL: p.ImageURL,
	}
}
