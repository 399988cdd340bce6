package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountService implements account CRUD. It never touches CurrentBalance
// beyond seeding it from the initial balance; after creation only the
// ledger engine writes that column.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// AccountInput carries the caller-supplied account fields.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
	Currency       string
}

func (in AccountInput) validate() error {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 || len(name) > 100 {
		fields["name"] = "account name must be between 2 and 100 characters"
	}
	if !in.Type.Valid() {
		fields["type"] = "account type must be one of CASH, BANK_ACCOUNT, CREDIT_CARD, INVESTMENT, OTHER"
	}
	if in.InitialBalance.IsNegative() {
		fields["initialBalance"] = "initial balance must be zero or positive"
	}
	if !validCurrency(in.Currency) {
		fields["currency"] = "currency code must be 3 letters (e.g. ARS, USD)"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Create stores a new account for the caller. The current balance starts
// equal to the initial balance.
func (s *AccountService) Create(ctx context.Context, email string, in AccountInput) (*models.Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		UserID:         user.ID,
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
		Currency:       strings.ToUpper(in.Currency),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// List returns every account owned by the caller.
func (s *AccountService) List(ctx context.Context, email string) ([]models.Account, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	var accounts []models.Account
	err = s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// GetByID returns the caller's account with the given id.
func (s *AccountService) GetByID(ctx context.Context, email string, id uint) (*models.Account, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	return accountOf(s.db.WithContext(ctx), id, user.ID)
}

// Update renames an account. Type, currency and initial balance are
// immutable after creation, and the current balance belongs to the ledger
// engine, so the name is the only field written here.
func (s *AccountService) Update(ctx context.Context, email string, id uint, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return nil, apperr.ValidationField("name", "account name must be between 2 and 100 characters")
	}

	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	account, err := accountOf(s.db.WithContext(ctx), id, user.ID)
	if err != nil {
		return nil, err
	}

	account.Name = name
	err = s.db.WithContext(ctx).Model(account).Update("name", name).Error
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// Delete removes an account. Deletion is refused while transactions still
// reference it; dropping them implicitly would silently rewrite history.
func (s *AccountService) Delete(ctx context.Context, email string, id uint) error {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return err
	}
	account, err := accountOf(s.db.WithContext(ctx), id, user.ID)
	if err != nil {
		return err
	}

	var refs int64
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("account_id = ?", account.ID).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("count account transactions: %w", err)
	}
	if refs > 0 {
		return apperr.ValidationField("id", "account has transactions and cannot be deleted")
	}

	if err := s.db.WithContext(ctx).Delete(account).Error; err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
