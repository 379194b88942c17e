package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceChange records one product price edit. Rows are append-only.
type PriceChange struct {
	ID          uint            `gorm:"primaryKey"`
	ProductID   uint            `gorm:"not null;index"`
	PriceBefore decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceAfter  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ChangedBy   *uint           `gorm:"index"` // employee id; nil when not made over HTTP
	CreatedAt   time.Time       `gorm:"index"`

	Employee *Employee `gorm:"foreignKey:ChangedBy"`
}
