package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
	"github.com/Simple-Accounting-Tools/papa-service/internal/tasks"
)

// RestPaymentHandler handles REST requests for payments. A successful
// create enqueues the confirmation email task; enqueue failures are logged
// and never fail the request.
type RestPaymentHandler struct {
	paymentService    services.IPaymentService
	attachmentService services.IAttachmentService
	taskClient        ITaskClient
}

// NewRestPaymentHandler creates a new RestPaymentHandler.
func NewRestPaymentHandler(paymentService services.IPaymentService, attachmentService services.IAttachmentService, taskClient ITaskClient) *RestPaymentHandler {
	return &RestPaymentHandler{
		paymentService:    paymentService,
		attachmentService: attachmentService,
		taskClient:        taskClient,
	}
}

type bulkPaymentRequest struct {
	Payments []bulkPaymentEntry `json:"payments" binding:"required,min=1"`
}

type bulkPaymentEntry struct {
	BillID        string  `json:"bill_id" binding:"required"`
	ClientID      string  `json:"client_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	PaymentTypeID string  `json:"payment_type_id"`
	PaymentDate   string  `json:"payment_date"`
	Notes         string  `json:"notes"`
}

func (e *bulkPaymentEntry) toInput() (services.CreatePaymentInput, error) {
	billID, err := primitive.ObjectIDFromHex(e.BillID)
	if err != nil {
		return services.CreatePaymentInput{}, err
	}
	clientID, err := primitive.ObjectIDFromHex(e.ClientID)
	if err != nil {
		return services.CreatePaymentInput{}, err
	}
	in := services.CreatePaymentInput{
		BillID:        billID,
		ClientID:      clientID,
		Amount:        e.Amount,
		PaymentMethod: models.PaymentMethod(e.PaymentMethod),
		Notes:         e.Notes,
	}
	if e.PaymentTypeID != "" {
		ptID, err := primitive.ObjectIDFromHex(e.PaymentTypeID)
		if err != nil {
			return services.CreatePaymentInput{}, err
		}
		in.PaymentTypeID = &ptID
	}
	if e.PaymentDate != "" {
		d, err := time.Parse("2006-01-02", e.PaymentDate)
		if err != nil {
			return services.CreatePaymentInput{}, err
		}
		in.PaymentDate = d
	}
	return in, nil
}

// enqueueConfirmation enqueues the confirmation email for a recorded payment.
func (h *RestPaymentHandler) enqueueConfirmation(c *gin.Context, payment *models.Payment) {
	task, err := tasks.NewPaymentConfirmationTask(payment.ID)
	if err != nil {
		log.Printf("Failed to build confirmation task for payment %s: %v", payment.ID.Hex(), err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("Failed to enqueue confirmation task for payment %s: %v", payment.ID.Hex(), err)
	}
}

// CreatePayment handles POST /v1/payment (multipart form data).
func (h *RestPaymentHandler) CreatePayment(c *gin.Context) {
	billID, err := primitive.ObjectIDFromHex(c.PostForm("bill"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill ID format"})
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.PostForm("client"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	in := services.CreatePaymentInput{
		BillID:        billID,
		ClientID:      clientID,
		Amount:        amount,
		PaymentMethod: models.PaymentMethod(c.PostForm("payment_method")),
		Notes:         c.PostForm("notes"),
	}
	if raw := c.PostForm("payment_type"); raw != "" {
		ptID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type ID format"})
			return
		}
		in.PaymentTypeID = &ptID
	}
	if raw := c.PostForm("payment_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_date, expected YYYY-MM-DD"})
			return
		}
		in.PaymentDate = d
	}

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}
	in.Attachments = attachmentIDs

	payment, err := h.paymentService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.enqueueConfirmation(c, payment)
	c.JSON(http.StatusCreated, payment)
}

// CreateBulkPayments handles POST /v1/payment/bulk. Payments are applied
// in order; a failure stops processing and reports what was created.
func (h *RestPaymentHandler) CreateBulkPayments(c *gin.Context) {
	var req bulkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ins := make([]services.CreatePaymentInput, 0, len(req.Payments))
	for _, entry := range req.Payments {
		in, err := entry.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment entry: " + err.Error()})
			return
		}
		ins = append(ins, in)
	}

	created, err := h.paymentService.CreateMany(c.Request.Context(), ins)
	for _, payment := range created {
		h.enqueueConfirmation(c, payment)
	}
	if err != nil {
		status := apperr.StatusOf(err)
		message := "Internal server error"
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		// Report partial success alongside the failure
		c.JSON(status, gin.H{"error": message, "created": created})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// QueryPayments handles GET /v1/payment
func (h *RestPaymentHandler) QueryPayments(c *gin.Context) {
	filter := services.PaymentFilter{
		ClientID:      queryObjectID(c, "client"),
		BillID:        queryObjectID(c, "bill"),
		PaymentMethod: models.PaymentMethod(c.Query("payment_method")),
		MinAmount:     queryFloat(c, "min_amount"),
		MaxAmount:     queryFloat(c, "max_amount"),
	}
	page, err := h.paymentService.Query(c.Request.Context(), filter, pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPaymentByID handles GET /v1/payment/:id
func (h *RestPaymentHandler) GetPaymentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.paymentService.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdatePayment handles PATCH /v1/payment/:id
func (h *RestPaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	in := services.UpdatePaymentInput{
		DropAttachments: parseIDList(c.PostFormArray("deleted_files")),
	}
	if raw, exists := c.GetPostForm("amount"); exists {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		in.Amount = &v
	}
	if raw, exists := c.GetPostForm("payment_method"); exists {
		m := models.PaymentMethod(raw)
		in.PaymentMethod = &m
	}
	if raw, exists := c.GetPostForm("payment_type"); exists {
		ptID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type ID format"})
			return
		}
		in.PaymentTypeID = &ptID
	}
	if raw, exists := c.GetPostForm("payment_date"); exists {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_date, expected YYYY-MM-DD"})
			return
		}
		in.PaymentDate = &d
	}
	if notes, exists := c.GetPostForm("notes"); exists {
		in.Notes = &notes
	}

	attachmentIDs, err := uploadFormAttachments(c, h.attachmentService)
	if err != nil {
		respondError(c, err)
		return
	}
	in.AddAttachments = attachmentIDs

	payment, err := h.paymentService.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment handles DELETE /v1/payment/:id
func (h *RestPaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestPaymentRoutes(r *gin.Engine, handler *RestPaymentHandler) {
	r.POST("/v1/payment", handler.CreatePayment)
	r.POST("/v1/payment/bulk", handler.CreateBulkPayments)
	r.GET("/v1/payment", handler.QueryPayments)
	r.GET("/v1/payment/:id", handler.GetPaymentByID)
	r.PATCH("/v1/payment/:id", handler.UpdatePayment)
	r.DELETE("/v1/payment/:id", handler.DeletePayment)
}
