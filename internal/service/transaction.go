package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionService is the ledger engine: transaction CRUD that keeps
// every account's current balance in exact agreement with the signed sum
// of the transactions posted against it. Each mutation runs as one
// database transaction spanning the transaction row and the one or two
// account rows it touches; either everything commits or nothing does.
type TransactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// TransactionInput carries the caller-supplied transaction fields.
type TransactionInput struct {
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	AccountID       uint
	CategoryID      uint
}

func (in TransactionInput) validate() error {
	fields := map[string]string{}
	if !in.Amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	}
	if len(in.Description) > 255 {
		fields["description"] = "description can be up to 255 characters long"
	}
	if in.TransactionDate.IsZero() {
		fields["transactionDate"] = "transaction date cannot be null"
	} else if in.TransactionDate.After(endOfToday()) {
		fields["transactionDate"] = "transaction date cannot be in the future"
	}
	if in.AccountID == 0 {
		fields["accountId"] = "account ID cannot be null"
	}
	if in.CategoryID == 0 {
		fields["categoryId"] = "category ID cannot be null"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func endOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
}

func writeBalance(tx *gorm.DB, account *models.Account) error {
	err := tx.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("current_balance", account.CurrentBalance).Error
	if err != nil {
		return fmt.Errorf("update balance of account %d: %w", account.ID, err)
	}
	return nil
}

// Create posts a new transaction: the signed amount is added to the
// account balance and both rows are persisted in one unit of work.
func (s *TransactionService) Create(ctx context.Context, email string, in TransactionInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := resolveOwner(tx, email)
		if err != nil {
			return err
		}
		account, err := accountOf(lockForUpdate(tx), in.AccountID, user.ID)
		if err != nil {
			return err
		}
		category, err := categoryOf(tx, in.CategoryID, user.ID)
		if err != nil {
			return err
		}

		account.CurrentBalance = account.CurrentBalance.Add(
			models.SignedAmount(in.Amount, category.Type))

		created = models.Transaction{
			UserID:          user.ID,
			AccountID:       account.ID,
			CategoryID:      category.ID,
			Amount:          in.Amount,
			Description:     in.Description,
			TransactionDate: in.TransactionDate,
		}
		if err := tx.Omit(clause.Associations).Create(&created).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := writeBalance(tx, account); err != nil {
			return err
		}

		created.Account = *account
		created.Category = *category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites a transaction and moves the balance effect accordingly.
// The old signed delta is reverted from the old account, the new one is
// applied to the target account, and when both are the same account the
// two deltas net against a single in-memory value so no intermediate
// reverted-only balance is ever persisted.
func (s *TransactionService) Update(ctx context.Context, email string, id uint, in TransactionInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := resolveOwner(tx, email)
		if err != nil {
			return err
		}
		trx, err := transactionOf(tx, id, user.ID)
		if err != nil {
			return err
		}

		oldAccount, target, err := lockAccountPair(tx, trx.AccountID, in.AccountID, user.ID)
		if err != nil {
			return err
		}
		oldAccount.CurrentBalance = oldAccount.CurrentBalance.Sub(
			models.SignedAmount(trx.Amount, trx.Category.Type))

		if target != oldAccount {
			// the old account will not be touched again in this unit
			if err := writeBalance(tx, oldAccount); err != nil {
				return err
			}
		}
		category, err := categoryOf(tx, in.CategoryID, user.ID)
		if err != nil {
			return err
		}

		target.CurrentBalance = target.CurrentBalance.Add(
			models.SignedAmount(in.Amount, category.Type))

		err = tx.Model(&models.Transaction{}).
			Where("id = ?", trx.ID).
			Updates(map[string]any{
				"amount":           in.Amount,
				"description":      in.Description,
				"transaction_date": in.TransactionDate,
				"account_id":       target.ID,
				"category_id":      category.ID,
			}).Error
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := writeBalance(tx, target); err != nil {
			return err
		}

		updated = *trx
		updated.Amount = in.Amount
		updated.Description = in.Description
		updated.TransactionDate = in.TransactionDate
		updated.AccountID = target.ID
		updated.CategoryID = category.ID
		updated.Account = *target
		updated.Category = *category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a transaction and reverts its balance effect: a deleted
// income subtracts from the balance, a deleted expense adds back.
func (s *TransactionService) Delete(ctx context.Context, email string, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := resolveOwner(tx, email)
		if err != nil {
			return err
		}
		trx, err := transactionOf(tx, id, user.ID)
		if err != nil {
			return err
		}
		account, err := accountOf(lockForUpdate(tx), trx.AccountID, user.ID)
		if err != nil {
			return err
		}

		account.CurrentBalance = account.CurrentBalance.Sub(
			models.SignedAmount(trx.Amount, trx.Category.Type))

		if err := tx.Delete(&models.Transaction{}, trx.ID).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return writeBalance(tx, account)
	})
}

// GetByID returns the caller's transaction with its account and category.
func (s *TransactionService) GetByID(ctx context.Context, email string, id uint) (*models.Transaction, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	var trx models.Transaction
	err = s.db.WithContext(ctx).
		Preload("Account").Preload("Category").
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&trx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Transaction", "id", id)
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &trx, nil
}

// ListQuery describes a filtered, paginated transaction search.
type ListQuery struct {
	Filters  []TransactionFilter
	Page     int // 1-based
	PageSize int
	SortKey  string
	SortDesc bool
}

// TransactionPage is one page of a transaction search result.
type TransactionPage struct {
	Items       []models.Transaction
	TotalRows   int64
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// Sortable columns; anything else falls back to the default sort.
var sortColumns = map[string]string{
	"transactionDate":  "transactions.transaction_date",
	"transaction_date": "transactions.transaction_date",
	"amount":           "transactions.amount",
	"createdAt":        "transactions.created_at",
	"created_at":       "transactions.created_at",
}

func orderClause(key string, desc bool) string {
	col, ok := sortColumns[key]
	if !ok {
		return "transactions.transaction_date DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// List runs a filtered, paginated search over the caller's transactions.
// The canonical default sort is transaction date descending.
func (s *TransactionService) List(ctx context.Context, email string, q ListQuery) (*TransactionPage, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}

	var total int64
	err = composeFilters(s.db.WithContext(ctx), user.ID, q.Filters).Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	var items []models.Transaction
	err = composeFilters(s.db.WithContext(ctx), user.ID, q.Filters).
		Select("transactions.*"). // keep joined category columns out of the scan
		Order(orderClause(q.SortKey, q.SortDesc)).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Preload("Account").Preload("Category").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(q.PageSize)))
	}
	return &TransactionPage{
		Items:       items,
		TotalRows:   total,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		PageSize:    q.PageSize,
	}, nil
}

// ListAll runs a filtered search without pagination, sorted by transaction
// date descending. Used by the export surface.
func (s *TransactionService) ListAll(ctx context.Context, email string, filters []TransactionFilter) ([]models.Transaction, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	var items []models.Transaction
	err = composeFilters(s.db.WithContext(ctx), user.ID, filters).
		Select("transactions.*").
		Order("transactions.transaction_date DESC").
		Preload("Account").Preload("Category").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// Summary holds a user's income/expense totals. Totals are zero, never
// absent, when no transactions of a type exist.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
}

// GetSummary computes the totals as one grouped-sum query in the storage
// layer rather than loading the transaction set into memory.
func (s *TransactionService) GetSummary(ctx context.Context, email string) (*Summary, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	var row struct {
		TotalIncome   decimal.Decimal
		TotalExpenses decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN categories.type = ? THEN transactions.amount ELSE 0 END), 0) AS total_income, "+
				"COALESCE(SUM(CASE WHEN categories.type = ? THEN transactions.amount ELSE 0 END), 0) AS total_expenses",
			models.CategoryTypeIncome, models.CategoryTypeExpense).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", user.ID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("transaction summary: %w", err)
	}
	return &Summary{TotalIncome: row.TotalIncome, TotalExpenses: row.TotalExpenses}, nil
}
