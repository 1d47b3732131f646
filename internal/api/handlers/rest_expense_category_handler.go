package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestExpenseCategoryHandler handles REST requests for expense categories.
type RestExpenseCategoryHandler struct {
	categoryService services.IExpenseCategoryService
}

// NewRestExpenseCategoryHandler creates a new RestExpenseCategoryHandler.
func NewRestExpenseCategoryHandler(categoryService services.IExpenseCategoryService) *RestExpenseCategoryHandler {
	return &RestExpenseCategoryHandler{categoryService: categoryService}
}

type createExpenseCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type updateExpenseCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateExpenseCategory handles POST /v1/expense-category
func (h *RestExpenseCategoryHandler) CreateExpenseCategory(c *gin.Context) {
	var req createExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// QueryExpenseCategories handles GET /v1/expense-category
func (h *RestExpenseCategoryHandler) QueryExpenseCategories(c *gin.Context) {
	page, err := h.categoryService.Query(c.Request.Context(), c.Query("name"), pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetExpenseCategoryByID handles GET /v1/expense-category/:id
func (h *RestExpenseCategoryHandler) GetExpenseCategoryByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	category, err := h.categoryService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateExpenseCategory handles PATCH /v1/expense-category/:id
func (h *RestExpenseCategoryHandler) UpdateExpenseCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteExpenseCategory handles DELETE /v1/expense-category/:id
func (h *RestExpenseCategoryHandler) DeleteExpenseCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestExpenseCategoryRoutes(r *gin.Engine, handler *RestExpenseCategoryHandler) {
	r.POST("/v1/expense-category", handler.CreateExpenseCategory)
	r.GET("/v1/expense-category", handler.QueryExpenseCategories)
	r.GET("/v1/expense-category/:id", handler.GetExpenseCategoryByID)
	r.PATCH("/v1/expense-category/:id", handler.UpdateExpenseCategory)
	r.DELETE("/v1/expense-category/:id", handler.DeleteExpenseCategory)
}
