package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestProductHandler handles REST requests for products.
type RestProductHandler struct {
	productService services.IProductService
}

// NewRestProductHandler creates a new RestProductHandler.
func NewRestProductHandler(productService services.IProductService) *RestProductHandler {
	return &RestProductHandler{productService: productService}
}

type createProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	VendorID    string `json:"vendor_id" binding:"required"`
	ClientID    string `json:"client_id" binding:"required"`
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateProduct handles POST /v1/product
func (h *RestProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vendorID, err := primitive.ObjectIDFromHex(req.VendorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID format"})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}

	product, err := h.productService.Create(c.Request.Context(), services.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		VendorID:    vendorID,
		ClientID:    clientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// QueryProducts handles GET /v1/product
func (h *RestProductHandler) QueryProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Name:     c.Query("name"),
		ClientID: queryObjectID(c, "client"),
		VendorID: queryObjectID(c, "vendor"),
	}
	page, err := h.productService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProductByID handles GET /v1/product/:id
func (h *RestProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := h.productService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PATCH /v1/product/:id
func (h *RestProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, services.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /v1/product/:id
func (h *RestProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestProductRoutes(r *gin.Engine, handler *RestProductHandler) {
	r.POST("/v1/product", handler.CreateProduct)
	r.GET("/v1/product", handler.QueryProducts)
	r.GET("/v1/product/:id", handler.GetProductByID)
	r.PATCH("/v1/product/:id", handler.UpdateProduct)
	r.DELETE("/v1/product/:id", handler.DeleteProduct)
}
