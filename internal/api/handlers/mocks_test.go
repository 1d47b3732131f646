package handlers_test

import (
	"context"
	"mime/multipart"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// --- Mocks for service interfaces used by handler tests ---

// MockClientService implements services.IClientService
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, in services.CreateClientInput) (*models.Client, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Query(ctx context.Context, filter services.ClientFilter, opts db.PageOptions) (*db.Page[models.Client], error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Page[models.Client]), args.Error(1)
}

func (m *MockClientService) FindByID(ctx context.Context, clientID primitive.ObjectID) (*models.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, clientID primitive.ObjectID, in services.UpdateClientInput) (*models.Client, error) {
	args := m.Called(ctx, clientID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, clientID primitive.ObjectID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// MockPaymentService implements services.IPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Create(ctx context.Context, in services.CreatePaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) CreateMany(ctx context.Context, ins []services.CreatePaymentInput) ([]*models.Payment, error) {
	args := m.Called(ctx, ins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentService) Query(ctx context.Context, filter services.PaymentFilter, opts db.PageOptions) (*db.Page[models.Payment], error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Page[models.Payment]), args.Error(1)
}

func (m *MockPaymentService) FindByID(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) GetDetail(ctx context.Context, paymentID primitive.ObjectID) (*services.PaymentDetail, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentDetail), args.Error(1)
}

func (m *MockPaymentService) Update(ctx context.Context, paymentID primitive.ObjectID, in services.UpdatePaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, paymentID primitive.ObjectID) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// MockAttachmentService implements services.IAttachmentService
type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Save(ctx context.Context, files []*multipart.FileHeader) ([]models.Attachment, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, ids []primitive.ObjectID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockAttachmentService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockAttachmentService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Attachment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Query(ctx context.Context, opts db.PageOptions) (*db.Page[models.Attachment], error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Page[models.Attachment]), args.Error(1)
}

// MockTaskClient implements handlers.ITaskClient
type MockTaskClient struct {
	mock.Mock
}

func (m *MockTaskClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
