package handler

import (
	"time"

	"github.com/Facumerino03/Finquik-back/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type userResponse struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type accountResponse struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	CurrentBalance decimal.Decimal    `json:"currentBalance"`
	Currency       string             `json:"currency"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		Currency:       a.Currency,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type categoryResponse struct {
	ID   uint                `json:"id"`
	Name string              `json:"name"`
	Type models.CategoryType `json:"type"`
}

func toCategoryResponse(cat *models.Category) categoryResponse {
	return categoryResponse{ID: cat.ID, Name: cat.Name, Type: cat.Type}
}

type transactionResponse struct {
	ID              uint             `json:"id"`
	Amount          decimal.Decimal  `json:"amount"`
	Description     string           `json:"description"`
	TransactionDate string           `json:"transactionDate"`
	CreatedAt       time.Time        `json:"createdAt"`
	Account         accountResponse  `json:"account"`
	Category        categoryResponse `json:"category"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:              t.ID,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		CreatedAt:       t.CreatedAt,
		Account:         toAccountResponse(&t.Account),
		Category:        toCategoryResponse(&t.Category),
	}
}

type summaryResponse struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}
