package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
)

// ITaskClient is the slice of asynq.Client the handlers need for enqueuing
// background work. Satisfied by *asynq.Client.
type ITaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// respondError writes the JSON error response for a service error using the
// shared status mapping. Unclassified errors surface as a generic 500.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	message := "Internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if status == http.StatusNotFound {
		message = "Not found"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": message})
}

// parseIDParam parses the :id path parameter. On failure it writes the 400
// response and reports false.
func parseIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryObjectID parses an optional ObjectID query parameter, returning the
// zero value when absent or malformed.
func queryObjectID(c *gin.Context, name string) primitive.ObjectID {
	raw := c.Query(name)
	if raw == "" {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// pageOptionsFromQuery reads the shared pagination parameters.
func pageOptionsFromQuery(c *gin.Context) db.PageOptions {
	opts := db.PageOptions{SortBy: c.Query("sort_by")}
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil {
		opts.Limit = limit
	}
	if page, err := strconv.ParseInt(c.Query("page"), 10, 64); err == nil {
		opts.Page = page
	}
	return opts
}

// formFiles returns the uploaded files for a multipart field, or nil when
// the request has no multipart body.
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// parseIDList parses a slice of hex IDs, skipping malformed entries.
func parseIDList(raw []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		if id, err := primitive.ObjectIDFromHex(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
