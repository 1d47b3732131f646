package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/api/handlers"
	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

func setupPaymentHandler() (*gin.Engine, *MockPaymentService, *MockAttachmentService, *MockTaskClient) {
	gin.SetMode(gin.TestMode)
	mockPaymentSvc := new(MockPaymentService)
	mockAttachmentSvc := new(MockAttachmentService)
	mockTaskClient := new(MockTaskClient)
	handler := handlers.NewRestPaymentHandler(mockPaymentSvc, mockAttachmentSvc, mockTaskClient)

	r := gin.New()
	handlers.RegisterRestPaymentRoutes(r, handler)
	return r, mockPaymentSvc, mockAttachmentSvc, mockTaskClient
}

// paymentForm builds a multipart body with the given fields and no files.
func paymentForm(fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	_ = writer.Close()
	return body, writer.FormDataContentType()
}

func TestRestPaymentHandler_CreatePayment_Success(t *testing.T) {
	r, mockPaymentSvc, _, mockTaskClient := setupPaymentHandler()

	billID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()
	created := &models.Payment{
		Base:          models.NewBase(),
		BillID:        billID,
		ClientID:      clientID,
		Amount:        196,
		Discount:      4,
		PaymentMethod: models.PaymentMethodCard,
	}
	mockPaymentSvc.On("Create", mock.Anything, mock.MatchedBy(func(in services.CreatePaymentInput) bool {
		return in.BillID == billID && in.Amount == 200 && in.PaymentMethod == models.PaymentMethodCard
	})).Return(created, nil)
	mockTaskClient.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, nil)

	body, contentType := paymentForm(map[string]string{
		"bill":           billID.Hex(),
		"client":         clientID.Hex(),
		"amount":         "200",
		"payment_method": "card",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.Payment
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, 196.0, resp.Amount)
	assert.Equal(t, 4.0, resp.Discount)
	mockPaymentSvc.AssertExpectations(t)
	mockTaskClient.AssertExpectations(t)
}

func TestRestPaymentHandler_CreatePayment_SettledBillForbidden(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	mockPaymentSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperr.Forbidden("Bill does not have any due amount"))

	body, contentType := paymentForm(map[string]string{
		"bill":           primitive.NewObjectID().Hex(),
		"client":         primitive.NewObjectID().Hex(),
		"amount":         "50",
		"payment_method": "card",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bill does not have any due amount", resp["error"])
	mockPaymentSvc.AssertExpectations(t)
}

func TestRestPaymentHandler_CreatePayment_OverpaymentForbidden(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	mockPaymentSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperr.Forbidden("Payment amount cannot exceed 200"))

	body, contentType := paymentForm(map[string]string{
		"bill":           primitive.NewObjectID().Hex(),
		"client":         primitive.NewObjectID().Hex(),
		"amount":         "500",
		"payment_method": "card",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Payment amount cannot exceed 200", resp["error"])
}

func TestRestPaymentHandler_CreatePayment_InvalidBillID(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	body, contentType := paymentForm(map[string]string{
		"bill":           "not-an-id",
		"client":         primitive.NewObjectID().Hex(),
		"amount":         "50",
		"payment_method": "card",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPaymentSvc.AssertNotCalled(t, "Create")
}

func TestRestPaymentHandler_CreatePayment_InvalidAmount(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	body, contentType := paymentForm(map[string]string{
		"bill":           primitive.NewObjectID().Hex(),
		"client":         primitive.NewObjectID().Hex(),
		"amount":         "-10",
		"payment_method": "card",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid amount", resp["error"])
	mockPaymentSvc.AssertNotCalled(t, "Create")
}

func TestRestPaymentHandler_CreateBulkPayments_PartialFailure(t *testing.T) {
	r, mockPaymentSvc, _, mockTaskClient := setupPaymentHandler()

	billA := primitive.NewObjectID()
	billB := primitive.NewObjectID()
	clientID := primitive.NewObjectID()

	firstCreated := &models.Payment{
		Base:          models.NewBase(),
		BillID:        billA,
		ClientID:      clientID,
		Amount:        100,
		PaymentMethod: models.PaymentMethodCheck,
	}
	mockPaymentSvc.On("CreateMany", mock.Anything, mock.MatchedBy(func(ins []services.CreatePaymentInput) bool {
		return len(ins) == 2 && ins[0].BillID == billA && ins[1].BillID == billB
	})).Return([]*models.Payment{firstCreated}, apperr.Forbidden("Bill does not have any due amount"))
	mockTaskClient.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, nil).Once()

	reqBody, _ := json.Marshal(map[string]interface{}{
		"payments": []map[string]interface{}{
			{"bill_id": billA.Hex(), "client_id": clientID.Hex(), "amount": 100, "payment_method": "check"},
			{"bill_id": billB.Hex(), "client_id": clientID.Hex(), "amount": 50, "payment_method": "check"},
		},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment/bulk", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bill does not have any due amount", resp["error"])
	createdList, ok := resp["created"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, createdList, 1)
	mockPaymentSvc.AssertExpectations(t)
	mockTaskClient.AssertExpectations(t)
}

func TestRestPaymentHandler_CreateBulkPayments_EmptyRejected(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/payment/bulk", bytes.NewReader([]byte(`{"payments": []}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockPaymentSvc.AssertNotCalled(t, "CreateMany")
}

func TestRestPaymentHandler_GetPaymentByID_NotFound(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	paymentID := primitive.NewObjectID()
	mockPaymentSvc.On("GetDetail", mock.Anything, paymentID).Return(nil, apperr.NotFound("Payment not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/payment/"+paymentID.Hex(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Payment not found", resp["error"])
	mockPaymentSvc.AssertExpectations(t)
}

func TestRestPaymentHandler_DeletePayment_Success(t *testing.T) {
	r, mockPaymentSvc, _, _ := setupPaymentHandler()

	paymentID := primitive.NewObjectID()
	mockPaymentSvc.On("Delete", mock.Anything, paymentID).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/v1/payment/"+paymentID.Hex(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockPaymentSvc.AssertExpectations(t)
}
