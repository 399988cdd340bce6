package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCreateTransaction_IncomeIncreasesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)

	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("200"),
		Description:     "Monthly salary",
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !trx.Amount.Equal(dec("200")) {
		t.Errorf("amount = %s, want 200", trx.Amount)
	}
	if trx.Category.Type != models.CategoryTypeIncome {
		t.Errorf("category type = %s, want INCOME", trx.Category.Type)
	}
	if !trx.Account.CurrentBalance.Equal(dec("1200")) {
		t.Errorf("returned balance = %s, want 1200", trx.Account.CurrentBalance)
	}
	wantBalance(t, db, account.ID, "1200")
	assertLedgerInvariant(t, db, account.ID)
}

func TestCreateTransaction_ExpenseDecreasesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	_, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("200"),
		TransactionDate: date("2024-03-02"),
		AccountID:       account.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantBalance(t, db, account.ID, "800")
	assertLedgerInvariant(t, db, account.ID)
}

func TestCreateTransaction_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)

	valid := TransactionInput{
		Amount:          dec("10"),
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	}

	tests := []struct {
		name    string
		mutate  func(in *TransactionInput)
		field   string
	}{
		{"zero amount", func(in *TransactionInput) { in.Amount = dec("0") }, "amount"},
		{"negative amount", func(in *TransactionInput) { in.Amount = dec("-5") }, "amount"},
		{"future date", func(in *TransactionInput) {
			in.TransactionDate = time.Now().UTC().AddDate(0, 0, 2)
		}, "transactionDate"},
		{"zero date", func(in *TransactionInput) { in.TransactionDate = time.Time{} }, "transactionDate"},
		{"missing account", func(in *TransactionInput) { in.AccountID = 0 }, "accountId"},
		{"missing category", func(in *TransactionInput) { in.CategoryID = 0 }, "categoryId"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), user.Email, in)
			val := wantValidation(t, err)
			if _, ok := val.Fields[tc.field]; !ok {
				t.Errorf("field errors = %v, want entry for %q", val.Fields, tc.field)
			}
		})
	}

	// nothing was posted, balance untouched
	wantBalance(t, db, account.ID, "1000")
}

func TestCreateTransaction_ForeignEntitiesAreNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	owner := seedUser(t, db, "ana@example.com")
	other := seedUser(t, db, "bob@example.com")
	ownAccount := seedAccount(t, db, owner.ID, "Checking", "1000")
	ownCategory := seedCategory(t, db, owner.ID, "Salary", models.CategoryTypeIncome)
	foreignAccount := seedAccount(t, db, other.ID, "Bob's", "50")
	foreignCategory := seedCategory(t, db, other.ID, "Bob's salary", models.CategoryTypeIncome)

	in := TransactionInput{
		Amount:          dec("10"),
		TransactionDate: date("2024-03-01"),
		AccountID:       foreignAccount.ID,
		CategoryID:      ownCategory.ID,
	}
	_, err := svc.Create(context.Background(), owner.Email, in)
	foreignErr := wantNotFound(t, err)

	in.AccountID = 99999
	_, err = svc.Create(context.Background(), owner.Email, in)
	missingErr := wantNotFound(t, err)

	// a foreign account and a nonexistent one answer identically in kind
	if foreignErr.Resource != missingErr.Resource || foreignErr.Field != missingErr.Field {
		t.Errorf("foreign = %v, missing = %v; want indistinguishable", foreignErr, missingErr)
	}

	in.AccountID = ownAccount.ID
	in.CategoryID = foreignCategory.ID
	_, err = svc.Create(context.Background(), owner.Email, in)
	wantNotFound(t, err)

	// neither balance moved
	wantBalance(t, db, ownAccount.ID, "1000")
	wantBalance(t, db, foreignAccount.ID, "50")
}

func TestCreateTransaction_ConcurrentPostsKeepInvariant(t *testing.T) {
	// a file-backed database with several connections so the units really
	// run concurrently, unlike the single-connection in-memory harness
	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)
	err = db.AutoMigrate(&models.User{}, &models.Account{}, &models.Category{}, &models.Transaction{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), user.Email, TransactionInput{
				Amount:          dec("10"),
				TransactionDate: date("2024-03-01"),
				AccountID:       account.ID,
				CategoryID:      income.ID,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// contended units may abort wholesale; every committed one must have
	// moved the balance exactly once
	var posted int64
	for err := range results {
		if err == nil {
			posted++
		}
	}
	if posted == 0 {
		t.Fatal("every concurrent post aborted")
	}

	want := dec("1000").Add(dec("10").Mul(decimal.NewFromInt(posted)))
	balance := reloadAccount(t, db, account.ID).CurrentBalance
	if !balance.Equal(want) {
		t.Errorf("balance = %s after %d committed posts, want %s", balance, posted, want)
	}
	assertLedgerInvariant(t, db, account.ID)
}

func TestDeleteTransaction_RestoresBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("123.45"),
		TransactionDate: date("2024-03-03"),
		AccountID:       account.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantBalance(t, db, account.ID, "876.55")

	if err := svc.Delete(context.Background(), user.Email, trx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	wantBalance(t, db, account.ID, "1000")
	assertLedgerInvariant(t, db, account.ID)

	_, err = svc.GetByID(context.Background(), user.Email, trx.ID)
	wantNotFound(t, err)
}

func TestUpdateTransaction_AmountOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)

	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("200"),
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantBalance(t, db, account.ID, "1200")

	// 200 -> 150 income moves the balance by exactly -50
	updated, err := svc.Update(context.Background(), user.Email, trx.ID, TransactionInput{
		Amount:          dec("150"),
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Amount.Equal(dec("150")) {
		t.Errorf("amount = %s, want 150", updated.Amount)
	}
	wantBalance(t, db, account.ID, "1150")
	assertLedgerInvariant(t, db, account.ID)
}

func TestUpdateTransaction_MovesBetweenAccounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	// account X carries a posted 100 expense: 600 initial, 500 current
	accountX := seedAccount(t, db, user.ID, "X", "600")
	accountY := seedAccount(t, db, user.ID, "Y", "300")
	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-02-10"),
		AccountID:       accountX.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantBalance(t, db, accountX.ID, "500")

	updated, err := svc.Update(context.Background(), user.Email, trx.ID, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-02-10"),
		AccountID:       accountY.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.AccountID != accountY.ID {
		t.Errorf("account = %d, want %d", updated.AccountID, accountY.ID)
	}
	wantBalance(t, db, accountX.ID, "600")
	wantBalance(t, db, accountY.ID, "200")
	assertLedgerInvariant(t, db, accountX.ID)
	assertLedgerInvariant(t, db, accountY.ID)
}

func TestUpdateTransaction_MovesToEarlierAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	// the move target was created first, so its id is the lower of the two
	accountY := seedAccount(t, db, user.ID, "Y", "300")
	accountX := seedAccount(t, db, user.ID, "X", "600")
	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-02-10"),
		AccountID:       accountX.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantBalance(t, db, accountX.ID, "500")

	updated, err := svc.Update(context.Background(), user.Email, trx.ID, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-02-10"),
		AccountID:       accountY.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.AccountID != accountY.ID {
		t.Errorf("account = %d, want %d", updated.AccountID, accountY.ID)
	}
	wantBalance(t, db, accountX.ID, "600")
	wantBalance(t, db, accountY.ID, "200")
	assertLedgerInvariant(t, db, accountX.ID)
	assertLedgerInvariant(t, db, accountY.ID)
}

func TestUpdateTransaction_CategoryTypeFlipsSign(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-03-05"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantBalance(t, db, account.ID, "1100")

	_, err = svc.Update(context.Background(), user.Email, trx.ID, TransactionInput{
		Amount:          dec("100"),
		TransactionDate: date("2024-03-05"),
		AccountID:       account.ID,
		CategoryID:      expense.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	wantBalance(t, db, account.ID, "900")
	assertLedgerInvariant(t, db, account.ID)
}

func TestUpdateTransaction_ForeignTargetLeavesBalancesUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	other := seedUser(t, db, "bob@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)
	foreignAccount := seedAccount(t, db, other.ID, "Bob's", "50")

	trx, err := svc.Create(context.Background(), user.Email, TransactionInput{
		Amount:          dec("200"),
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// the unit aborts after the revert step; nothing may be visible
	_, err = svc.Update(context.Background(), user.Email, trx.ID, TransactionInput{
		Amount:          dec("200"),
		TransactionDate: date("2024-03-01"),
		AccountID:       foreignAccount.ID,
		CategoryID:      income.ID,
	})
	wantNotFound(t, err)

	wantBalance(t, db, account.ID, "1200")
	wantBalance(t, db, foreignAccount.ID, "50")
	assertLedgerInvariant(t, db, account.ID)
}

func TestGetSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")
	account := seedAccount(t, db, user.ID, "Checking", "1000")
	income := seedCategory(t, db, user.ID, "Salary", models.CategoryTypeIncome)
	expense := seedCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

	post := func(amount string, categoryID uint) {
		t.Helper()
		_, err := svc.Create(context.Background(), user.Email, TransactionInput{
			Amount:          dec(amount),
			TransactionDate: date("2024-03-01"),
			AccountID:       account.ID,
			CategoryID:      categoryID,
		})
		if err != nil {
			t.Fatalf("create %s: %v", amount, err)
		}
	}
	post("100", income.ID)
	post("30", expense.ID)
	post("20", expense.ID)

	summary, err := svc.GetSummary(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalIncome.Equal(dec("100")) {
		t.Errorf("total income = %s, want 100", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(dec("50")) {
		t.Errorf("total expenses = %s, want 50", summary.TotalExpenses)
	}
}

func TestGetSummary_EmptyIsZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	user := seedUser(t, db, "ana@example.com")

	summary, err := svc.GetSummary(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalIncome.IsZero() || !summary.TotalExpenses.IsZero() {
		t.Errorf("summary = {%s, %s}, want {0, 0}", summary.TotalIncome, summary.TotalExpenses)
	}
}

func TestGetByID_CrossUserIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db)
	owner := seedUser(t, db, "ana@example.com")
	other := seedUser(t, db, "bob@example.com")
	account := seedAccount(t, db, owner.ID, "Checking", "1000")
	income := seedCategory(t, db, owner.ID, "Salary", models.CategoryTypeIncome)

	trx, err := svc.Create(context.Background(), owner.Email, TransactionInput{
		Amount:          dec("10"),
		TransactionDate: date("2024-03-01"),
		AccountID:       account.ID,
		CategoryID:      income.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	existing := wantNotFound(t, func() error {
		_, err := svc.GetByID(context.Background(), other.Email, trx.ID)
		return err
	}())
	missing := wantNotFound(t, func() error {
		_, err := svc.GetByID(context.Background(), other.Email, 99999)
		return err
	}())
	if existing.Resource != missing.Resource || existing.Field != missing.Field {
		t.Errorf("cross-user = %v, missing = %v; want indistinguishable", existing, missing)
	}
}
