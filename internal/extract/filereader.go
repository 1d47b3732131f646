package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
)

// IFileReader defines the interface for the external document extraction
// service. The service parses PDFs into structured text; its response is
// passed through to the caller untouched.
type IFileReader interface {
	ExtractPDF(ctx context.Context, filename string, data []byte) (json.RawMessage, error)
}

// fileReaderClient implements IFileReader over HTTP.
type fileReaderClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewFileReaderClient creates a new extraction service client.
func NewFileReaderClient(cfg *config.Config) IFileReader {
	return &fileReaderClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second}, // Extraction can be slow on large PDFs
	}
}

// ExtractPDF sends a PDF to the extraction service and returns the parsed
// result. Any upstream failure surfaces as a BadGateway error.
func (c *fileReaderClient) ExtractPDF(ctx context.Context, filename string, data []byte) (json.RawMessage, error) {
	if c.cfg.FileReaderURL == "" {
		return nil, apperr.Internal("FileReader service URL not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}

	url := c.cfg.FileReaderURL + "/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling FileReader service: %v", err)
		return nil, apperr.BadGateway(fmt.Sprintf("Error extracting PDF: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.BadGateway(fmt.Sprintf("Error extracting PDF: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("FileReader service returned status %d: %s", resp.StatusCode, string(body))
		return nil, apperr.BadGateway(fmt.Sprintf("Error extracting PDF: %s", string(body)))
	}

	return json.RawMessage(body), nil
}
