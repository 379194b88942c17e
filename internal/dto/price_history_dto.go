package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryFilter is bound from query string of GET /v1/products/:id/price-history.
type PriceHistoryFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

type PriceChangeResponse struct {
	ID            uint            `json:"id"`
	ProductID     uint            `json:"product_id"`
	PriceBefore   decimal.Decimal `json:"price_before"`
	PriceAfter    decimal.Decimal `json:"price_after"`
	ChangedBy     *uint           `json:"changed_by,omitempty"`
	ChangedByName *string         `json:"changed_by_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PriceHistoryResponse struct {
	Data  []PriceChangeResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
