package handler

import (
	"net/http"
	"strconv"

	"github.com/Facumerino03/Finquik-back/internal/models"
	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler serves account CRUD.
type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

type accountReq struct {
	Name           string             `json:"name" binding:"required"`
	Type           models.AccountType `json:"type" binding:"required"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	Currency       string             `json:"currency" binding:"required"`
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.Accounts.Create(c.Request.Context(), callerEmail(c), service.AccountInput{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Accounts.List(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	account, err := h.Accounts.GetByID(c.Request.Context(), callerEmail(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

type accountUpdateReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req accountUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.Accounts.Update(c.Request.Context(), callerEmail(c), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Accounts.Delete(c.Request.Context(), callerEmail(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, answering 400 on garbage.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondFieldErrors(c, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
