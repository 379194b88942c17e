package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryDrink = "drink"
	CategoryFood  = "food"
)

// Product is a sellable menu item. Category feeds the reporting buckets.
type Product struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	Category  string          `gorm:"type:varchar(50);not null;index"`
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
