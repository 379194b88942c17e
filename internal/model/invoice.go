package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the order header. LastLineNo is the per-invoice counter from
// which line numbers are reserved; it only ever grows.
type Invoice struct {
	ID         uint      `gorm:"primaryKey"`
	EmployeeID uint      `gorm:"not null;index"`
	LastLineNo int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"index"`

	Employee Employee      `gorm:"foreignKey:EmployeeID"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID"`
}

// InvoiceLine is identified by (InvoiceID, LineNo). LineNo starts at 1.
type InvoiceLine struct {
	InvoiceID uint    `gorm:"primaryKey;autoIncrement:false"`
	LineNo    int     `gorm:"primaryKey;autoIncrement:false"`
	ProductID uint    `gorm:"not null;index"`
	Quantity  int     `gorm:"not null"`
	Note      *string `gorm:"type:varchar(255)"`
	VoucherID *uint   `gorm:"index"`

	Product Product  `gorm:"foreignKey:ProductID"`
	Voucher *Voucher `gorm:"foreignKey:VoucherID"`
}

var hundred = decimal.NewFromInt(100)

// Total is quantity × unit price, less the voucher percentage when one is
// attached. Product (and Voucher, if any) must be loaded.
func (l InvoiceLine) Total() decimal.Decimal {
	gross := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if l.Voucher == nil {
		return gross
	}
	return gross.Mul(decimal.NewFromInt(int64(100 - l.Voucher.Percent))).Div(hundred)
}

// Total sums the line totals.
func (inv Invoice) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range inv.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}
