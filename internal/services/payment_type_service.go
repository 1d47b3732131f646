package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
)

// IPaymentTypeService defines the interface for payment type operations.
type IPaymentTypeService interface {
	Create(ctx context.Context, in CreatePaymentTypeInput) (*models.PaymentType, error)
	Query(ctx context.Context, filter PaymentTypeFilter, opts db.PageOptions) (*db.Page[models.PaymentType], error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentType, error)
	Update(ctx context.Context, id primitive.ObjectID, in UpdatePaymentTypeInput) (*models.PaymentType, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

const paymentTypesCollection = "payment_types"

// CreatePaymentTypeInput carries the fields accepted at creation.
type CreatePaymentTypeInput struct {
	Name     string
	Details  string // Full card or account number
	Type     models.PaymentTypeKind
	ClientID primitive.ObjectID
}

// UpdatePaymentTypeInput is the allow-listed set of updatable fields.
type UpdatePaymentTypeInput struct {
	Name    *string
	Details *string
	Type    *models.PaymentTypeKind
}

// PaymentTypeFilter narrows payment type list queries.
type PaymentTypeFilter struct {
	Name     string // Case-insensitive substring match
	Type     models.PaymentTypeKind
	ClientID primitive.ObjectID
}

// paymentTypeService implements IPaymentTypeService.
type paymentTypeService struct {
	db            *mongo.Database
	clientService IClientService
}

// NewPaymentTypeService creates a new PaymentTypeService.
func NewPaymentTypeService(database *mongo.Database, clientService IClientService) IPaymentTypeService {
	return &paymentTypeService{db: database, clientService: clientService}
}

// Create inserts a new payment type for an existing client.
func (s *paymentTypeService) Create(ctx context.Context, in CreatePaymentTypeInput) (*models.PaymentType, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if !models.ValidPaymentTypeKind(in.Type) {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid payment type: %s", in.Type))
	}

	paymentType := &models.PaymentType{
		Base:     models.NewBase(),
		Name:     in.Name,
		Details:  in.Details,
		Type:     in.Type,
		ClientID: in.ClientID,
	}
	if _, err := s.db.Collection(paymentTypesCollection).InsertOne(ctx, paymentType); err != nil {
		return nil, fmt.Errorf("failed to insert payment type: %w", err)
	}
	return paymentType, nil
}

// Query returns a page of payment types matching the filter.
func (s *paymentTypeService) Query(ctx context.Context, filter PaymentTypeFilter, opts db.PageOptions) (*db.Page[models.PaymentType], error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Name, Options: "i"}}
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	return db.Paginate[models.PaymentType](ctx, s.db.Collection(paymentTypesCollection), query, opts)
}

// FindByID fetches a payment type by ID.
func (s *paymentTypeService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentType, error) {
	var paymentType models.PaymentType
	err := s.db.Collection(paymentTypesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&paymentType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Payment type not found")
		}
		return nil, fmt.Errorf("error finding payment type %s: %w", id.Hex(), err)
	}
	return &paymentType, nil
}

// Update applies the allow-listed changes and returns the updated document.
func (s *paymentTypeService) Update(ctx context.Context, id primitive.ObjectID, in UpdatePaymentTypeInput) (*models.PaymentType, error) {
	if in.Type != nil && !models.ValidPaymentTypeKind(*in.Type) {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid payment type: %s", *in.Type))
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "name", in.Name)
	setIfPresent(set, "details", in.Details)
	setIfPresent(set, "type", in.Type)

	var updated models.PaymentType
	err := s.db.Collection(paymentTypesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Payment type not found")
		}
		return nil, fmt.Errorf("failed to update payment type %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a payment type.
func (s *paymentTypeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.db.Collection(paymentTypesCollection).FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Payment type not found")
		}
		return fmt.Errorf("failed to delete payment type %s: %w", id.Hex(), err)
	}
	return nil
}
