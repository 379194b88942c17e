package model

import "time"

// Voucher grants Percent off products of Category during [StartsAt, EndsAt).
type Voucher struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Category  string    `gorm:"type:varchar(50);not null"`
	Percent   int       `gorm:"not null"`
	StartsAt  time.Time `gorm:"not null"`
	EndsAt    time.Time `gorm:"not null"`
	CreatedAt time.Time
}
