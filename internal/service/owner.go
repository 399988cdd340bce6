package service

import (
	"errors"
	"fmt"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The ownership guard: every service resolves its caller through
// resolveOwner and reaches entities only through the scoped lookups below.
// A row that exists but belongs to another user is reported exactly like a
// missing row.

// resolveOwner maps the caller identity (an email) to the owning user row.
func resolveOwner(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", "email", email)
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	return &user, nil
}

// accountOf returns the account with the given id if it belongs to userID.
func accountOf(tx *gorm.DB, id, userID uint) (*models.Account, error) {
	var account models.Account
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Account", "id", id)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// categoryOf returns the category with the given id if it belongs to userID.
func categoryOf(tx *gorm.DB, id, userID uint) (*models.Category, error) {
	var category models.Category
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Category", "id", id)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// transactionOf returns the transaction with the given id if it belongs to
// userID, with its category loaded (the category type signs the amount).
func transactionOf(tx *gorm.DB, id, userID uint) (*models.Transaction, error) {
	var trx models.Transaction
	err := tx.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&trx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Transaction", "id", id)
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &trx, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE so concurrent ledger mutations
// against the same account serialize on the row. SQLite rejects the clause
// and serializes writers on its own, so it is applied only on Postgres.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockAccountPair locks oldID and newID for the caller, lowest id first so
// two units moving a transaction in opposite directions cannot deadlock.
// When both ids name the same account, old and target are the same struct.
func lockAccountPair(tx *gorm.DB, oldID, newID, userID uint) (old, target *models.Account, err error) {
	if oldID == newID {
		old, err = accountOf(lockForUpdate(tx), oldID, userID)
		return old, old, err
	}

	firstID, secondID := oldID, newID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := accountOf(lockForUpdate(tx), firstID, userID)
	if err != nil {
		return nil, nil, err
	}
	second, err := accountOf(lockForUpdate(tx), secondID, userID)
	if err != nil {
		return nil, nil, err
	}
	if firstID == oldID {
		return first, second, nil
	}
	return second, first, nil
}
