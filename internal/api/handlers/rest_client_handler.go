package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestClientHandler handles REST requests for clients.
type RestClientHandler struct {
	clientService services.IClientService
}

// NewRestClientHandler creates a new RestClientHandler.
func NewRestClientHandler(clientService services.IClientService) *RestClientHandler {
	return &RestClientHandler{clientService: clientService}
}

type createClientRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email" binding:"required,email"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
}

type updateClientRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Street1     *string `json:"street1"`
	Street2     *string `json:"street2"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	ZipCode     *string `json:"zip_code"`
}

// CreateClient handles POST /v1/client
func (h *RestClientHandler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), services.CreateClientInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
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
	c.JSON(http.StatusCreated, client)
}

// QueryClients handles GET /v1/client
func (h *RestClientHandler) QueryClients(c *gin.Context) {
	filter := services.ClientFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
	}
	page, err := h.clientService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetClientByID handles GET /v1/client/:id
func (h *RestClientHandler) GetClientByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	client, err := h.clientService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles PATCH /v1/client/:id
func (h *RestClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, services.UpdateClientInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
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
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /v1/client/:id
func (h *RestClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestClientRoutes(r *gin.Engine, handler *RestClientHandler) {
	r.POST("/v1/client", handler.CreateClient)
	r.GET("/v1/client", handler.QueryClients)
	r.GET("/v1/client/:id", handler.GetClientByID)
	r.PATCH("/v1/client/:id", handler.UpdateClient)
	r.DELETE("/v1/client/:id", handler.DeleteClient)
}
