package handler

import (
	"net/http"

	"github.com/Facumerino03/Finquik-back/internal/models"
	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves category CRUD.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type categoryReq struct {
	Name string              `json:"name" binding:"required,max=100"`
	Type models.CategoryType `json:"type" binding:"required"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.Categories.Create(c.Request.Context(), callerEmail(c), service.CategoryInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// List returns the caller's categories, optionally filtered with ?type=.
func (h *CategoryHandler) List(c *gin.Context) {
	t := models.CategoryType(c.Query("type"))

	categories, err := h.Categories.List(c.Request.Context(), callerEmail(c), t)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, toCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	category, err := h.Categories.GetByID(c.Request.Context(), callerEmail(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}

type categoryUpdateReq struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req categoryUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.Categories.Update(c.Request.Context(), callerEmail(c), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Categories.Delete(c.Request.Context(), callerEmail(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
