package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/models"
	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler streams the caller's transactions as CSV or XLSX. The
// same filter parameters as the list endpoint apply; pagination does not.
type ExportHandler struct {
	Transactions *service.TransactionService
}

func NewExportHandler(transactions *service.TransactionService) *ExportHandler {
	return &ExportHandler{Transactions: transactions}
}

var exportHeader = []string{"Date", "Description", "Category", "Type", "Amount", "Account", "Currency"}

func exportRow(t *models.Transaction) []string {
	return []string{
		t.TransactionDate.Format(dateLayout),
		t.Description,
		t.Category.Name,
		string(t.Category.Type),
		t.Amount.StringFixed(2),
		t.Account.Name,
		t.Account.Currency,
	}
}

// Export handles GET /api/transactions/export?format=csv|xlsx.
func (h *ExportHandler) Export(c *gin.Context) {
	filters, ok := parseFilters(c)
	if !ok {
		return
	}

	transactions, err := h.Transactions.ListAll(c.Request.Context(), callerEmail(c), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		h.writeCSV(c, transactions)
	case "xlsx":
		h.writeXLSX(c, transactions)
	default:
		respondFieldErrors(c, map[string]string{"format": "must be csv or xlsx"})
	}
}

func (h *ExportHandler) writeCSV(c *gin.Context, transactions []models.Transaction) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write(exportHeader)
	for i := range transactions {
		w.Write(exportRow(&transactions[i]))
	}
}

func (h *ExportHandler) writeXLSX(c *gin.Context, transactions []models.Transaction) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row := range transactions {
		for col, value := range exportRow(&transactions[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		respondError(c, fmt.Errorf("write xlsx: %w", err))
	}
}
