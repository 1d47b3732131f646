package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/api/handlers"
	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

func setupClientHandler() (*gin.Engine, *MockClientService) {
	gin.SetMode(gin.TestMode)
	mockClientSvc := new(MockClientService)
	handler := handlers.NewRestClientHandler(mockClientSvc)

	r := gin.New()
	handlers.RegisterRestClientRoutes(r, handler)
	return r, mockClientSvc
}

func TestRestClientHandler_CreateClient_Success(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	created := &models.Client{
		Base:  models.NewBase(),
		Name:  "Acme Corp",
		Email: "billing@acme.test",
		City:  "Portland",
	}
	mockClientSvc.On("Create", mock.Anything, mock.MatchedBy(func(in services.CreateClientInput) bool {
		return in.Name == "Acme Corp" && in.Email == "billing@acme.test"
	})).Return(created, nil)

	reqBody := []byte(`{"name": "Acme Corp", "email": "billing@acme.test", "city": "Portland"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/client", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.Client
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "Acme Corp", resp.Name)
	mockClientSvc.AssertExpectations(t)
}

func TestRestClientHandler_CreateClient_DuplicateEmail(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	mockClientSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperr.Conflict("Client with this email already exists"))

	reqBody := []byte(`{"name": "Acme Corp", "email": "billing@acme.test"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/client", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Client with this email already exists", resp["error"])
	mockClientSvc.AssertExpectations(t)
}

func TestRestClientHandler_CreateClient_InvalidBody(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	// Missing required email
	reqBody := []byte(`{"name": "Acme Corp"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/client", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockClientSvc.AssertNotCalled(t, "Create")
}

func TestRestClientHandler_QueryClients_PaginationParams(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	page := &db.Page[models.Client]{
		Results:      []models.Client{},
		Page:         2,
		Limit:        5,
		TotalPages:   3,
		TotalResults: 12,
	}
	mockClientSvc.On("Query", mock.Anything, mock.Anything, mock.MatchedBy(func(opts db.PageOptions) bool {
		return opts.Limit == 5 && opts.Page == 2 && opts.SortBy == "name:asc"
	})).Return(page, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/client?limit=5&page=2&sort_by=name:asc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp db.Page[models.Client]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Page)
	assert.Equal(t, int64(5), resp.Limit)
	mockClientSvc.AssertExpectations(t)
}

func TestRestClientHandler_GetClientByID_NotFound(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	clientID := primitive.NewObjectID()
	mockClientSvc.On("FindByID", mock.Anything, clientID).Return(nil, apperr.NotFound("Client not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/client/"+clientID.Hex(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Client not found", resp["error"])
	mockClientSvc.AssertExpectations(t)
}

func TestRestClientHandler_GetClientByID_MalformedID(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/client/not-an-id", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockClientSvc.AssertNotCalled(t, "FindByID")
}

func TestRestClientHandler_UpdateClient_Success(t *testing.T) {
	r, mockClientSvc := setupClientHandler()

	clientID := primitive.NewObjectID()
	updated := &models.Client{
		Base: models.Base{ID: clientID},
		Name: "Acme Holdings",
	}
	mockClientSvc.On("Update", mock.Anything, clientID, mock.MatchedBy(func(in services.UpdateClientInput) bool {
		return in.Name != nil && *in.Name == "Acme Holdings" && in.Email == nil
	})).Return(updated, nil)

	reqBody := []byte(`{"name": "Acme Holdings"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/v1/client/"+clientID.Hex(), bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.Client
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Holdings", resp.Name)
	mockClientSvc.AssertExpectations(t)
}
