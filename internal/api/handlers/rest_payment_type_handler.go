package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestPaymentTypeHandler handles REST requests for payment types.
type RestPaymentTypeHandler struct {
	paymentTypeService services.IPaymentTypeService
}

// NewRestPaymentTypeHandler creates a new RestPaymentTypeHandler.
func NewRestPaymentTypeHandler(paymentTypeService services.IPaymentTypeService) *RestPaymentTypeHandler {
	return &RestPaymentTypeHandler{paymentTypeService: paymentTypeService}
}

type createPaymentTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	Details  string `json:"details" binding:"required"`
	Type     string `json:"type" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
}

type updatePaymentTypeRequest struct {
	Name    *string `json:"name"`
	Details *string `json:"details"`
	Type    *string `json:"type"`
}

// CreatePaymentType handles POST /v1/payment-type
func (h *RestPaymentTypeHandler) CreatePaymentType(c *gin.Context) {
	var req createPaymentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}

	pt, err := h.paymentTypeService.Create(c.Request.Context(), services.CreatePaymentTypeInput{
		Name:     req.Name,
		Details:  req.Details,
		Type:     models.PaymentTypeKind(req.Type),
		ClientID: clientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pt)
}

// QueryPaymentTypes handles GET /v1/payment-type
func (h *RestPaymentTypeHandler) QueryPaymentTypes(c *gin.Context) {
	filter := services.PaymentTypeFilter{
		Name:     c.Query("name"),
		Type:     models.PaymentTypeKind(c.Query("type")),
		ClientID: queryObjectID(c, "client"),
	}
	page, err := h.paymentTypeService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPaymentTypeByID handles GET /v1/payment-type/:id
func (h *RestPaymentTypeHandler) GetPaymentTypeByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	pt, err := h.paymentTypeService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

// UpdatePaymentType handles PATCH /v1/payment-type/:id
func (h *RestPaymentTypeHandler) UpdatePaymentType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updatePaymentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kind *models.PaymentTypeKind
	if req.Type != nil {
		k := models.PaymentTypeKind(*req.Type)
		kind = &k
	}
	pt, err := h.paymentTypeService.Update(c.Request.Context(), id, services.UpdatePaymentTypeInput{
		Name:    req.Name,
		Details: req.Details,
		Type:    kind,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

// DeletePaymentType handles DELETE /v1/payment-type/:id
func (h *RestPaymentTypeHandler) DeletePaymentType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.paymentTypeService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestPaymentTypeRoutes(r *gin.Engine, handler *RestPaymentTypeHandler) {
	r.POST("/v1/payment-type", handler.CreatePaymentType)
	r.GET("/v1/payment-type", handler.QueryPaymentTypes)
	r.GET("/v1/payment-type/:id", handler.GetPaymentTypeByID)
	r.PATCH("/v1/payment-type/:id", handler.UpdatePaymentType)
	r.DELETE("/v1/payment-type/:id", handler.DeletePaymentType)
}
