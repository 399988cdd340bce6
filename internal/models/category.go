package models

import "time"

// CategoryType tells whether transactions in a category add to or subtract
// from an account balance.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// DefaultCategoryName is the name of the categories created for every new
// user, one per category type.
const DefaultCategoryName = "Uncategorized"

// Category represents an income/expense category. (UserID, Name, Type) is
// unique; Type is immutable after creation.
type Category struct {
	ID        uint         `gorm:"primaryKey"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_categories_owner_name_type"`
	Name      string       `gorm:"size:100;not null;uniqueIndex:idx_categories_owner_name_type"`
	Type      CategoryType `gorm:"size:16;not null;uniqueIndex:idx_categories_owner_name_type"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
