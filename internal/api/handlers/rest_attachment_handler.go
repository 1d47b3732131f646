package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// RestAttachmentHandler handles REST requests for standalone attachment
// uploads.
type RestAttachmentHandler struct {
	attachmentService services.IAttachmentService
}

// NewRestAttachmentHandler creates a new RestAttachmentHandler.
func NewRestAttachmentHandler(attachmentService services.IAttachmentService) *RestAttachmentHandler {
	return &RestAttachmentHandler{attachmentService: attachmentService}
}

// UploadAttachments handles POST /v1/attachment
func (h *RestAttachmentHandler) UploadAttachments(c *gin.Context) {
	files := formFiles(c, "files")
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	attachments, err := h.attachmentService.Save(c.Request.Context(), files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attachments": attachments})
}

// QueryAttachments handles GET /v1/attachment
func (h *RestAttachmentHandler) QueryAttachments(c *gin.Context) {
	page, err := h.attachmentService.Query(c.Request.Context(), pageOptionsFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetAttachmentByID handles GET /v1/attachment/:id
func (h *RestAttachmentHandler) GetAttachmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	attachment, err := h.attachmentService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

// DeleteAttachment handles DELETE /v1/attachment/:id
func (h *RestAttachmentHandler) DeleteAttachment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.attachmentService.Delete(c.Request.Context(), []primitive.ObjectID{id}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func RegisterRestAttachmentRoutes(r *gin.Engine, handler *RestAttachmentHandler) {
	r.POST("/v1/attachment", handler.UploadAttachments)
	r.GET("/v1/attachment", handler.QueryAttachments)
	r.GET("/v1/attachment/:id", handler.GetAttachmentByID)
	r.DELETE("/v1/attachment/:id", handler.DeleteAttachment)
}
