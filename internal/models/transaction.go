package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single posting against an account. Amount is
// always positive; its effect on the balance is signed by the category's
// type (income adds, expense subtracts).
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	UserID          uint            `gorm:"index;not null"`
	AccountID       uint            `gorm:"index;not null"`
	CategoryID      uint            `gorm:"index;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Description     string          `gorm:"size:255"`
	TransactionDate time.Time       `gorm:"type:date;index;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Account  Account  `gorm:"constraint:OnDelete:RESTRICT"`
	Category Category `gorm:"constraint:OnDelete:RESTRICT"`
}

// SignedAmount returns the balance effect of amount under the given
// category type.
func SignedAmount(amount decimal.Decimal, t CategoryType) decimal.Decimal {
	if t == CategoryTypeIncome {
		return amount
	}
	return amount.Neg()
}
