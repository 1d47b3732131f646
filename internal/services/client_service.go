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

// IClientService defines the interface for client operations.
type IClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*models.Client, error)
	Query(ctx context.Context, filter ClientFilter, opts db.PageOptions) (*db.Page[models.Client], error)
	FindByID(ctx context.Context, clientID primitive.ObjectID) (*models.Client, error)
	Update(ctx context.Context, clientID primitive.ObjectID, in UpdateClientInput) (*models.Client, error)
	Delete(ctx context.Context, clientID primitive.ObjectID) error
}

const clientsCollection = "clients"

// CreateClientInput carries the fields accepted at client creation.
type CreateClientInput struct {
	Name        string
	ContactName string
	PhoneNumber string
	Email       string
	Street1     string
	Street2     string
	City        string
	State       string
	ZipCode     string
}

// UpdateClientInput is the allow-listed set of updatable client fields.
// Nil pointers mean "leave unchanged".
type UpdateClientInput struct {
	Name        *string
	ContactName *string
	PhoneNumber *string
	Email       *string
	Street1     *string
	Street2     *string
	City        *string
	State       *string
	ZipCode     *string
}

// ClientFilter narrows client list queries.
type ClientFilter struct {
	Name  string // Case-insensitive substring match
	Email string
}

// clientService implements IClientService.
type clientService struct {
	db *mongo.Database
}

// NewClientService creates a new ClientService.
func NewClientService(database *mongo.Database) IClientService {
	return &clientService{db: database}
}

// Create inserts a new client after checking email uniqueness.
func (s *clientService) Create(ctx context.Context, in CreateClientInput) (*models.Client, error) {
	collection := s.db.Collection(clientsCollection)

	err := collection.FindOne(ctx, bson.M{"email": in.Email}).Err()
	if err == nil {
		return nil, apperr.Conflict("Client with this email already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check client email uniqueness: %w", err)
	}

	client := &models.Client{
		Base:        models.NewBase(),
		Name:        in.Name,
		ContactName: in.ContactName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Street1:     in.Street1,
		Street2:     in.Street2,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
	}
	if _, err := collection.InsertOne(ctx, client); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, apperr.Conflict("Client with this email already exists")
		}
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}
	return client, nil
}

// Query returns a page of clients matching the filter.
func (s *clientService) Query(ctx context.Context, filter ClientFilter, opts db.PageOptions) (*db.Page[models.Client], error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Name, Options: "i"}}
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	return db.Paginate[models.Client](ctx, s.db.Collection(clientsCollection), query, opts)
}

// FindByID fetches a client by ID.
func (s *clientService) FindByID(ctx context.Context, clientID primitive.ObjectID) (*models.Client, error) {
	var client models.Client
	err := s.db.Collection(clientsCollection).FindOne(ctx, bson.M{"_id": clientID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, fmt.Errorf("error finding client %s: %w", clientID.Hex(), err)
	}
	return &client, nil
}

// Update applies the allow-listed changes and returns the updated client.
func (s *clientService) Update(ctx context.Context, clientID primitive.ObjectID, in UpdateClientInput) (*models.Client, error) {
	collection := s.db.Collection(clientsCollection)

	current, err := s.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		dupErr := collection.FindOne(ctx, bson.M{"email": *in.Email}).Err()
		if dupErr == nil {
			return nil, apperr.Conflict("Client with this email already exists")
		}
		if !errors.Is(dupErr, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to check client email uniqueness: %w", dupErr)
		}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "name", in.Name)
	setIfPresent(set, "contact_name", in.ContactName)
	setIfPresent(set, "phone_number", in.PhoneNumber)
	setIfPresent(set, "email", in.Email)
	setIfPresent(set, "street1", in.Street1)
	setIfPresent(set, "street2", in.Street2)
	setIfPresent(set, "city", in.City)
	setIfPresent(set, "state", in.State)
	setIfPresent(set, "zip_code", in.ZipCode)

	var updated models.Client
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": clientID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, fmt.Errorf("failed to update client %s: %w", clientID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a client.
func (s *clientService) Delete(ctx context.Context, clientID primitive.ObjectID) error {
	err := s.db.Collection(clientsCollection).FindOneAndDelete(ctx, bson.M{"_id": clientID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Client not found")
		}
		return fmt.Errorf("failed to delete client %s: %w", clientID.Hex(), err)
	}
	return nil
}

// setIfPresent adds a field to a $set document when the pointer is non-nil.
func setIfPresent[T any](set bson.M, key string, value *T) {
	if value != nil {
		set[key] = *value
	}
}
