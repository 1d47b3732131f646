package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestVendorHandler handles REST requests for vendors.
type RestVendorHandler struct {
	vendorService services.IVendorService
}

// NewRestVendorHandler creates a new RestVendorHandler.
func NewRestVendorHandler(vendorService services.IVendorService) *RestVendorHandler {
	return &RestVendorHandler{vendorService: vendorService}
}

type createVendorRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	PhoneNumber string   `json:"phone_number"`
	NetTerms    string   `json:"net_terms"`
	Notes       string   `json:"notes"`
	Street1     string   `json:"street1"`
	Street2     string   `json:"street2"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zip_code"`
	ClientID    string   `json:"client_id" binding:"required"`
	Attachments []string `json:"attachments"`
}

type updateVendorRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	NetTerms    *string `json:"net_terms"`
	Notes       *string `json:"notes"`
	Street1     *string `json:"street1"`
	Street2     *string `json:"street2"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	ZipCode     *string `json:"zip_code"`
}

// CreateVendor handles POST /v1/vendor
func (h *RestVendorHandler) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), services.CreateVendorInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		NetTerms:    req.NetTerms,
		Notes:       req.Notes,
		Street1:     req.Street1,
		Street2:     req.Street2,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		ClientID:    clientID,
		Attachments: parseIDList(req.Attachments),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// QueryVendors handles GET /v1/vendor
func (h *RestVendorHandler) QueryVendors(c *gin.Context) {
	filter := services.VendorFilter{
		Name:     c.Query("name"),
		ClientID: queryObjectID(c, "client"),
	}
	page, err := h.vendorService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetVendorByID handles GET /v1/vendor/:id
func (h *RestVendorHandler) GetVendorByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	vendor, err := h.vendorService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// UpdateVendor handles PATCH /v1/vendor/:id
func (h *RestVendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.vendorService.Update(c.Request.Context(), id, services.UpdateVendorInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		NetTerms:    req.NetTerms,
		Notes:       req.Notes,
		Street1:     req.Street1,
		Street2:     req.Street2,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// DeleteVendor handles DELETE /v1/vendor/:id
func (h *RestVendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.vendorService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestVendorRoutes(r *gin.Engine, handler *RestVendorHandler) {
	r.POST("/v1/vendor", handler.CreateVendor)
	r.GET("/v1/vendor", handler.QueryVendors)
	r.GET("/v1/vendor/:id", handler.GetVendorByID)
	r.PATCH("/v1/vendor/:id", handler.UpdateVendor)
	r.DELETE("/v1/vendor/:id", handler.DeleteVendor)
}
