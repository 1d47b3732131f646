package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Simple-Accounting-Tools/papa-service/internal/extract"
)

// RestFileReaderHandler proxies PDF extraction requests to the filereader
// service.
type RestFileReaderHandler struct {
	fileReader extract.IFileReader
}

// NewRestFileReaderHandler creates a new RestFileReaderHandler.
func NewRestFileReaderHandler(fileReader extract.IFileReader) *RestFileReaderHandler {
	return &RestFileReaderHandler{fileReader: fileReader}
}

// ExtractPDF handles POST /v1/filereader/extract
func (h *RestFileReaderHandler) ExtractPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	result, err := h.fileReader.ExtractPDF(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

func RegisterRestFileReaderRoutes(r *gin.Engine, handler *RestFileReaderHandler) {
	r.POST("/v1/filereader/extract", handler.ExtractPDF)
}
