package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestBillHandler handles REST requests for bills. Create and Update
// accept multipart form data so invoices can be uploaded alongside.
type RestBillHandler struct {
	billService       services.IBillService
	attachmentService services.IAttachmentService
}

// NewRestBillHandler creates a new RestBillHandler.
func NewRestBillHandler(billService services.IBillService, attachmentService services.IAttachmentService) *RestBillHandler {
	return &RestBillHandler{billService: billService, attachmentService: attachmentService}
}

// CreateBill handles POST /v1/bill
func (h *RestBillHandler) CreateBill(c *gin.Context) {
	poID, err := primitive.ObjectIDFromHex(c.PostForm("purchase_order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase order ID format"})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.PostForm("client"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}
	billAmount, err := strconv.ParseFloat(c.PostForm("bill_amount"), 64)
	if err != nil || billAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill_amount"})
		return
	}
	dueDate, err := time.Parse("2006-01-02", c.PostForm("due_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
		return
	}

	var categoryID *primitive.ObjectID
	if raw := c.PostForm("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
			return
		}
		categoryID = &id
	}

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}

	bill, err := h.billService.Create(c.Request.Context(), services.CreateBillInput{
		PurchaseOrderID: poID,
		ClientID:        clientID,
		BillAmount:      billAmount,
		DueDate:         dueDate,
		CategoryID:      categoryID,
		Attachments:     attachmentIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// QueryBills handles GET /v1/bill
func (h *RestBillHandler) QueryBills(c *gin.Context) {
	filter := services.BillFilter{
		ClientID:        queryObjectID(c, "client"),
		PurchaseOrderID: queryObjectID(c, "purchase_order"),
		Status:          models.BillStatus(c.Query("status")),
		MinAmount:       queryFloat(c, "min_amount"),
		MaxAmount:       queryFloat(c, "max_amount"),
	}
	page, err := h.billService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetBillByID handles GET /v1/bill/:id
func (h *RestBillHandler) GetBillByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.billService.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetBillRemaining handles GET /v1/bill/:id/remaining
func (h *RestBillHandler) GetBillRemaining(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	balance, err := h.billService.CalculateRemaining(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// UpdateBill handles PATCH /v1/bill/:id
func (h *RestBillHandler) UpdateBill(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	in := services.UpdateBillInput{
		DropAttachments: parseIDList(c.PostFormArray("deleted_files")),
	}
	if raw, exists := c.GetPostForm("purchase_order"); exists {
		poID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase order ID format"})
			return
		}
		in.PurchaseOrderID = &poID
	}
	if raw, exists := c.GetPostForm("bill_amount"); exists {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill_amount"})
			return
		}
		in.BillAmount = &v
	}
	if raw, exists := c.GetPostForm("due_date"); exists {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
			return
		}
		in.DueDate = &d
	}
	if raw, exists := c.GetPostForm("category"); exists {
		catID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
			return
		}
		in.CategoryID = &catID
	}

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}
	in.AddAttachments = attachmentIDs

	bill, err := h.billService.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// DeleteBill handles DELETE /v1/bill/:id
func (h *RestBillHandler) DeleteBill(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.billService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestBillRoutes(r *gin.Engine, handler *RestBillHandler) {
	r.POST("/v1/bill", handler.CreateBill)
	r.GET("/v1/bill", handler.QueryBills)
	r.GET("/v1/bill/:id", handler.GetBillByID)
	r.GET("/v1/bill/:id/remaining", handler.GetBillRemaining)
	r.PATCH("/v1/bill/:id", handler.UpdateBill)
	r.DELETE("/v1/bill/:id", handler.DeleteBill)
}
