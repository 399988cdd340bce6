package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginatedResponse is the envelope of every paginated list endpoint.
type paginatedResponse struct {
	Data        any   `json:"data"`
	TotalRows   int64 `json:"totalRows"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

type pageParams struct {
	Page     int
	PageSize int
	SortKey  string
	SortDesc bool
}

// parsePageParams reads "page", "pageSize" and "sort" query parameters.
// defaultSize is the configured page size, applied when the client sends
// none. sort has the form "key" or "key,desc"; the default is transaction
// date descending, applied by the service when the key is empty or unknown.
func parsePageParams(c *gin.Context, defaultSize int) pageParams {
	if defaultSize <= 0 || defaultSize > maxPageSize {
		defaultSize = defaultPageSize
	}

	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	switch {
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	case pageSize <= 0:
		pageSize = defaultSize
	}

	params := pageParams{Page: page, PageSize: pageSize, SortDesc: true}
	if sort := c.Query("sort"); sort != "" {
		parts := strings.SplitN(sort, ",", 2)
		params.SortKey = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			params.SortDesc = strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
		}
	}
	return params
}
