package service

import (
	"strings"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/models"

	"gorm.io/gorm"
)

// TransactionFilter is one optional criterion of a transaction search.
// Filters are independent; composeFilters folds any combination of them
// into a single ANDed predicate at the storage boundary.
type TransactionFilter interface {
	apply(q *gorm.DB) *gorm.DB
}

// DateRange keeps transactions dated within [Start, End], both inclusive.
// A nil bound imposes no constraint on that side.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (f DateRange) apply(q *gorm.DB) *gorm.DB {
	if f.Start != nil {
		q = q.Where("transactions.transaction_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("transactions.transaction_date <= ?", *f.End)
	}
	return q
}

// AccountEquals keeps transactions posted against one account.
type AccountEquals uint

func (f AccountEquals) apply(q *gorm.DB) *gorm.DB {
	return q.Where("transactions.account_id = ?", uint(f))
}

// CategoryEquals keeps transactions in one category.
type CategoryEquals uint

func (f CategoryEquals) apply(q *gorm.DB) *gorm.DB {
	return q.Where("transactions.category_id = ?", uint(f))
}

// TypeEquals keeps transactions whose category has the given type. The
// type lives on the category, not the transaction, so this filter needs
// the categories join.
type TypeEquals models.CategoryType

func (f TypeEquals) apply(q *gorm.DB) *gorm.DB {
	return q.Where("categories.type = ?", string(f))
}

// DescriptionContains keeps transactions whose description contains the
// given text, case-insensitively.
type DescriptionContains string

func (f DescriptionContains) apply(q *gorm.DB) *gorm.DB {
	needle := "%" + strings.ToLower(string(f)) + "%"
	return q.Where("LOWER(transactions.description) LIKE ?", needle)
}

// composeFilters builds the combined transaction predicate. The owner
// restriction is applied first and unconditionally; each present filter
// then narrows the result set.
func composeFilters(db *gorm.DB, userID uint, filters []TransactionFilter) *gorm.DB {
	q := db.Model(&models.Transaction{}).
		Where("transactions.user_id = ?", userID)

	for _, f := range filters {
		if _, ok := f.(TypeEquals); ok {
			q = q.Joins("JOIN categories ON categories.id = transactions.category_id")
			break
		}
	}
	for _, f := range filters {
		q = f.apply(q)
	}
	return q
}
