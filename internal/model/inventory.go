package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NameKey columns hold the lower-cased name so uniqueness is
// case-insensitive on every driver.

type Ingredient struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	NameKey     string          `gorm:"uniqueIndex;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'kg'"`
	ImportPrice int64           `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

type Book struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"not null"`
	TitleKey string `gorm:"uniqueIndex;not null"`
	Author   *string
	Quantity int `gorm:"not null;default:0"`

	Genres []Genre `gorm:"many2many:book_genres;"`
}

type Genre struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
	NameKey string `gorm:"uniqueIndex;not null"`
}
