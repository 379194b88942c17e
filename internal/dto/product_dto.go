package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductFilter is bound from query string of GET /v1/products.
type ProductFilter struct {
	Category string `form:"category" validate:"omitempty,oneof=drink food"`
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Name     string          `json:"name"      validate:"required,min=1,max=255"`
	Price    decimal.Decimal `json:"price"     validate:"min=0"`
	Category string          `json:"category"  validate:"required,oneof=drink food"`
	Active   *bool           `json:"active"`
	ImageURL *string         `json:"image_url" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name"      validate:"omitempty,min=1,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Category *string          `json:"category"  validate:"omitempty,oneof=drink food"`
	Active   *bool            `json:"active"`
	ImageURL *string          `json:"image_url" validate:"omitempty,url"`
}

type ProductResponse struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Active   bool            `json:"active"`
	ImageURL *string         `json:"image_url"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Vouchers ────────────────────────────────────────────────────────────────

type VoucherRequest struct {
	Name     string    `json:"name"      validate:"required,min=1,max=100"`
	Category string    `json:"category"  validate:"required,oneof=drink food"`
	Percent  int       `json:"percent"   validate:"required"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at"   validate:"required"`
}

type VoucherResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Percent  int       `json:"percent"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
