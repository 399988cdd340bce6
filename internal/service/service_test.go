package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return &user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, name, balance string) *models.Account {
	t.Helper()
	account := models.Account{
		UserID:         userID,
		Name:           name,
		Type:           models.AccountTypeBank,
		InitialBalance: dec(balance),
		CurrentBalance: dec(balance),
		Currency:       "USD",
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return &account
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, name string, ct models.CategoryType) *models.Category {
	t.Helper()
	category := models.Category{UserID: userID, Name: name, Type: ct}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return &category
}

func reloadAccount(t *testing.T, db *gorm.DB, id uint) *models.Account {
	t.Helper()
	var account models.Account
	if err := db.First(&account, id).Error; err != nil {
		t.Fatalf("reload account %d: %v", id, err)
	}
	return &account
}

func wantBalance(t *testing.T, db *gorm.DB, accountID uint, want string) {
	t.Helper()
	account := reloadAccount(t, db, accountID)
	if !account.CurrentBalance.Equal(dec(want)) {
		t.Fatalf("account %d balance = %s, want %s", accountID, account.CurrentBalance, want)
	}
}

// assertLedgerInvariant recomputes initialBalance + the signed sum of the
// account's transactions and checks it matches the stored balance exactly.
func assertLedgerInvariant(t *testing.T, db *gorm.DB, accountID uint) {
	t.Helper()
	account := reloadAccount(t, db, accountID)

	var transactions []models.Transaction
	err := db.Preload("Category").Where("account_id = ?", accountID).Find(&transactions).Error
	if err != nil {
		t.Fatalf("load transactions of account %d: %v", accountID, err)
	}

	sum := account.InitialBalance
	for i := range transactions {
		sum = sum.Add(models.SignedAmount(transactions[i].Amount, transactions[i].Category.Type))
	}
	if !account.CurrentBalance.Equal(sum) {
		t.Fatalf("ledger invariant broken for account %d: balance %s, initial+signed sum %s",
			accountID, account.CurrentBalance, sum)
	}
}

func wantNotFound(t *testing.T, err error) *apperr.NotFoundError {
	t.Helper()
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	return nf
}

func wantValidation(t *testing.T, err error) *apperr.ValidationError {
	t.Helper()
	var val *apperr.ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	return val
}

func wantDuplicate(t *testing.T, err error) {
	t.Helper()
	var dup *apperr.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want DuplicateError", err)
	}
}
