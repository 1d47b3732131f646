package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestPurchaseOrderHandler handles REST requests for purchase orders.
// Create and Update accept multipart form data so order documents can be
// uploaded in the same request; the items field carries a JSON array.
type RestPurchaseOrderHandler struct {
	poService         services.IPurchaseOrderService
	attachmentService services.IAttachmentService
}

// NewRestPurchaseOrderHandler creates a new RestPurchaseOrderHandler.
func NewRestPurchaseOrderHandler(poService services.IPurchaseOrderService, attachmentService services.IAttachmentService) *RestPurchaseOrderHandler {
	return &RestPurchaseOrderHandler{poService: poService, attachmentService: attachmentService}
}

type lineItemPayload struct {
	ProductID   string  `json:"product"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// parseLineItems decodes the items form field.
func parseLineItems(raw string) ([]services.LineItemInput, bool) {
	var payload []lineItemPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	items := make([]services.LineItemInput, 0, len(payload))
	for _, p := range payload {
		productID, err := primitive.ObjectIDFromHex(p.ProductID)
		if err != nil {
			return nil, false
		}
		items = append(items, services.LineItemInput{
			ProductID:   productID,
			Description: p.Description,
			Quantity:    p.Quantity,
			Rate:        p.Rate,
		})
	}
	return items, true
}

// uploadFormAttachments stores any uploaded files and returns their IDs.
func uploadFormAttachments(c *gin.Context, attachmentService services.IAttachmentService) ([]primitive.ObjectID, error) {
	files := formFiles(c, "files")
	if len(files) == 0 {
		return nil, nil
	}
	attachments, err := attachmentService.Save(c.Request.Context(), files)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(attachments))
	for _, a := range attachments {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// CreatePurchaseOrder handles POST /v1/purchase-order
func (h *RestPurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	vendorID, err := primitive.ObjectIDFromHex(c.PostForm("vendor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID format"})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.PostForm("client"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}
	createdBy, err := primitive.ObjectIDFromHex(c.PostForm("created_by"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid created_by ID format"})
		return
	}
	items, ok := parseLineItems(c.PostForm("items"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items format"})
		return
	}
	totalAmount, err := strconv.ParseFloat(c.PostForm("total_amount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total_amount"})
		return
	}
	shippingCost, _ := strconv.ParseFloat(c.DefaultPostForm("shipping_cost", "0"), 64)
	tax, _ := strconv.ParseFloat(c.DefaultPostForm("tax", "0"), 64)

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}

	po, err := h.poService.Create(c.Request.Context(), services.CreatePurchaseOrderInput{
		VendorID:     vendorID,
		ClientID:     clientID,
		Items:        items,
		TotalAmount:  totalAmount,
		CreatedBy:    createdBy,
		Notes:        c.PostForm("notes"),
		ShippingCost: shippingCost,
		Tax:          tax,
		Attachments:  attachmentIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

// QueryPurchaseOrders handles GET /v1/purchase-order
func (h *RestPurchaseOrderHandler) QueryPurchaseOrders(c *gin.Context) {
	filter := services.PurchaseOrderFilter{
		ClientID: queryObjectID(c, "client"),
		VendorID: queryObjectID(c, "vendor"),
		Status:   models.PurchaseOrderStatus(c.Query("status")),
	}
	page, err := h.poService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPurchaseOrderByID handles GET /v1/purchase-order/:id
func (h *RestPurchaseOrderHandler) GetPurchaseOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.poService.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdatePurchaseOrder handles PATCH /v1/purchase-order/:id
func (h *RestPurchaseOrderHandler) UpdatePurchaseOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	in := services.UpdatePurchaseOrderInput{
		DropAttachments: parseIDList(c.PostFormArray("deleted_files")),
	}
	if raw, exists := c.GetPostForm("items"); exists {
		items, ok := parseLineItems(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items format"})
			return
		}
		in.Items = items
	}
	if notes, exists := c.GetPostForm("notes"); exists {
		in.Notes = &notes
	}
	if raw, exists := c.GetPostForm("shipping_cost"); exists {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			in.ShippingCost = &v
		}
	}
	if raw, exists := c.GetPostForm("tax"); exists {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			in.Tax = &v
		}
	}

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}
	in.AddAttachments = attachmentIDs

	po, err := h.poService.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// DeletePurchaseOrder handles DELETE /v1/purchase-order/:id
func (h *RestPurchaseOrderHandler) DeletePurchaseOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.poService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestPurchaseOrderRoutes(r *gin.Engine, handler *RestPurchaseOrderHandler) {
	r.POST("/v1/purchase-order", handler.CreatePurchaseOrder)
	r.GET("/v1/purchase-order", handler.QueryPurchaseOrders)
	r.GET("/v1/purchase-order/:id", handler.GetPurchaseOrderByID)
	r.PATCH("/v1/purchase-order/:id", handler.UpdatePurchaseOrder)
	r.DELETE("/v1/purchase-order/:id", handler.DeletePurchaseOrder)
}
