package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/models"
	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler serves transaction CRUD, search and the summary.
type TransactionHandler struct {
	Transactions *service.TransactionService
	PageSize     int // configured default when the client sends none
}

func NewTransactionHandler(transactions *service.TransactionService, pageSize int) *TransactionHandler {
	return &TransactionHandler{Transactions: transactions, PageSize: pageSize}
}

type transactionReq struct {
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description" binding:"max=255"`
	TransactionDate string          `json:"transactionDate" binding:"required"`
	AccountID       uint            `json:"accountId" binding:"required"`
	CategoryID      uint            `json:"categoryId" binding:"required"`
}

func (r transactionReq) toInput(c *gin.Context) (service.TransactionInput, bool) {
	date, err := time.ParseInLocation(dateLayout, r.TransactionDate, time.UTC)
	if err != nil {
		respondFieldErrors(c, map[string]string{
			"transactionDate": "must be a date in YYYY-MM-DD format",
		})
		return service.TransactionInput{}, false
	}
	return service.TransactionInput{
		Amount:          r.Amount,
		Description:     r.Description,
		TransactionDate: date,
		AccountID:       r.AccountID,
		CategoryID:      r.CategoryID,
	}, true
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, ok := req.toInput(c)
	if !ok {
		return
	}

	trx, err := h.Transactions.Create(c.Request.Context(), callerEmail(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(trx))
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, ok := req.toInput(c)
	if !ok {
		return
	}

	trx, err := h.Transactions.Update(c.Request.Context(), callerEmail(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(trx))
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Transactions.Delete(c.Request.Context(), callerEmail(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	trx, err := h.Transactions.GetByID(c.Request.Context(), callerEmail(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(trx))
}

// List answers the filtered, paginated transaction search.
func (h *TransactionHandler) List(c *gin.Context) {
	filters, ok := parseFilters(c)
	if !ok {
		return
	}
	params := parsePageParams(c, h.PageSize)

	page, err := h.Transactions.List(c.Request.Context(), callerEmail(c), service.ListQuery{
		Filters:  filters,
		Page:     params.Page,
		PageSize: params.PageSize,
		SortKey:  params.SortKey,
		SortDesc: params.SortDesc,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]transactionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toTransactionResponse(&page.Items[i]))
	}
	c.JSON(http.StatusOK, paginatedResponse{
		Data:        items,
		TotalRows:   page.TotalRows,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	})
}

func (h *TransactionHandler) Summary(c *gin.Context) {
	summary, err := h.Transactions.GetSummary(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		TotalIncome:   summary.TotalIncome,
		TotalExpenses: summary.TotalExpenses,
	})
}

// parseFilters builds the filter list from the optional query parameters:
// startDate, endDate, accountId, categoryId, type, description.
func parseFilters(c *gin.Context) ([]service.TransactionFilter, bool) {
	var filters []service.TransactionFilter

	var dr service.DateRange
	if s := c.Query("startDate"); s != "" {
		start, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			respondFieldErrors(c, map[string]string{"startDate": "must be a date in YYYY-MM-DD format"})
			return nil, false
		}
		dr.Start = &start
	}
	if s := c.Query("endDate"); s != "" {
		end, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			respondFieldErrors(c, map[string]string{"endDate": "must be a date in YYYY-MM-DD format"})
			return nil, false
		}
		dr.End = &end
	}
	if dr.Start != nil || dr.End != nil {
		filters = append(filters, dr)
	}

	if s := c.Query("accountId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondFieldErrors(c, map[string]string{"accountId": "must be a positive integer"})
			return nil, false
		}
		filters = append(filters, service.AccountEquals(id))
	}
	if s := c.Query("categoryId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondFieldErrors(c, map[string]string{"categoryId": "must be a positive integer"})
			return nil, false
		}
		filters = append(filters, service.CategoryEquals(id))
	}
	if s := c.Query("type"); s != "" {
		t := models.CategoryType(s)
		if !t.Valid() {
			respondFieldErrors(c, map[string]string{"type": "must be INCOME or EXPENSE"})
			return nil, false
		}
		filters = append(filters, service.TypeEquals(t))
	}
	if s := c.Query("description"); s != "" {
		filters = append(filters, service.DescriptionContains(s))
	}
	return filters, true
}
