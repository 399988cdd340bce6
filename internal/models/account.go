package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK_ACCOUNT"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeOther      AccountType = "OTHER"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCreditCard,
		AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account represents a financial account belonging to a user.
//
// Invariant: CurrentBalance == InitialBalance + the signed sum of every
// transaction referencing this account. Type, Currency and InitialBalance
// are immutable after creation; CurrentBalance is only ever written by the
// ledger engine.
type Account struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"index;not null"`
	Name           string          `gorm:"size:100;not null"`
	Type           AccountType     `gorm:"size:50;not null"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Currency       string          `gorm:"size:10;not null"` // ISO 4217 code
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
