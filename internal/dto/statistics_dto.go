package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatisticsQuery is bound from GET /v1/statistics.
type StatisticsQuery struct {
	Type string `form:"type" validate:"required,oneof=day week month"`
	Date string `form:"date"` // YYYY-MM-DD; empty = today
}

type ProductSales struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CategorySummary struct {
	Category   string          `json:"category"`
	ItemsSold  int             `json:"items_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	BestSeller *ProductSales   `json:"best_seller"`
}

type SeriesPoint struct {
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StatisticsResponse struct {
	Type         string          `json:"type"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"` // exclusive
	InvoiceCount int64           `json:"invoice_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	ItemsSold    int             `json:"items_sold"`
	Drink        CategorySummary `json:"drink"`
	Food         CategorySummary `json:"food"`
	Series       []SeriesPoint   `json:"series,omitempty"`
	TopProducts  []ProductSales  `json:"top_products,omitempty"`
}
