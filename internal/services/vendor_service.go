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

// IVendorService defines the interface for vendor operations.
type IVendorService interface {
	Create(ctx context.Context, in CreateVendorInput) (*models.Vendor, error)
	Query(ctx context.Context, filter VendorFilter, opts db.PageOptions) (*db.Page[models.Vendor], error)
	FindByID(ctx context.Context, vendorID primitive.ObjectID) (*models.Vendor, error)
	Update(ctx context.Context, vendorID primitive.ObjectID, in UpdateVendorInput) (*models.Vendor, error)
	Delete(ctx context.Context, vendorID primitive.ObjectID) error
}

const vendorsCollection = "vendors"

// CreateVendorInput carries the fields accepted at vendor creation.
type CreateVendorInput struct {
	Name        string
	Email       string
	PhoneNumber string
	NetTerms    string
	Notes       string
	Street1     string
	Street2     string
	City        string
	State       string
	ZipCode     string
	ClientID    primitive.ObjectID
	Attachments []primitive.ObjectID
}

// UpdateVendorInput is the allow-listed set of updatable vendor fields.
type UpdateVendorInput struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	NetTerms    *string
	Notes       *string
	Street1     *string
	Street2     *string
	City        *string
	State       *string
	ZipCode     *string
}

// VendorFilter narrows vendor list queries.
type VendorFilter struct {
	Name     string // Case-insensitive substring match
	ClientID primitive.ObjectID
}

// vendorService implements IVendorService.
type vendorService struct {
	db            *mongo.Database
	clientService IClientService
}

// NewVendorService creates a new VendorService.
func NewVendorService(database *mongo.Database, clientService IClientService) IVendorService {
	return &vendorService{db: database, clientService: clientService}
}

// Create inserts a new vendor. The owning client must exist and the email
// must be unique within that client.
func (s *vendorService) Create(ctx context.Context, in CreateVendorInput) (*models.Vendor, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	collection := s.db.Collection(vendorsCollection)
	err := collection.FindOne(ctx, bson.M{"email": in.Email, "client_id": in.ClientID}).Err()
	if err == nil {
		return nil, apperr.Conflict("Vendor with this email already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check vendor email uniqueness: %w", err)
	}

	vendor := &models.Vendor{
		Base:        models.NewBase(),
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		NetTerms:    in.NetTerms,
		Notes:       in.Notes,
		Street1:     in.Street1,
		Street2:     in.Street2,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		ClientID:    in.ClientID,
		Attachments: in.Attachments,
	}
	if _, err := collection.InsertOne(ctx, vendor); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, apperr.Conflict("Vendor with this email already exists")
		}
		return nil, fmt.Errorf("failed to insert vendor: %w", err)
	}
	return vendor, nil
}

// Query returns a page of vendors matching the filter.
func (s *vendorService) Query(ctx context.Context, filter VendorFilter, opts db.PageOptions) (*db.Page[models.Vendor], error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Name, Options: "i"}}
	}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	return db.Paginate[models.Vendor](ctx, s.db.Collection(vendorsCollection), query, opts)
}

// FindByID fetches a vendor by ID.
func (s *vendorService) FindByID(ctx context.Context, vendorID primitive.ObjectID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.Collection(vendorsCollection).FindOne(ctx, bson.M{"_id": vendorID}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("error finding vendor %s: %w", vendorID.Hex(), err)
	}
	return &vendor, nil
}

// Update applies the allow-listed changes and returns the updated vendor.
// Prevents email collisions within the owning client.
func (s *vendorService) Update(ctx context.Context, vendorID primitive.ObjectID, in UpdateVendorInput) (*models.Vendor, error) {
	collection := s.db.Collection(vendorsCollection)

	current, err := s.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		dupErr := collection.FindOne(ctx, bson.M{"email": *in.Email, "client_id": current.ClientID}).Err()
		if dupErr == nil {
			return nil, apperr.Conflict("Vendor with this email already exists")
		}
		if !errors.Is(dupErr, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to check vendor email uniqueness: %w", dupErr)
		}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "name", in.Name)
	setIfPresent(set, "email", in.Email)
	setIfPresent(set, "phone_number", in.PhoneNumber)
	setIfPresent(set, "net_terms", in.NetTerms)
	setIfPresent(set, "notes", in.Notes)
	setIfPresent(set, "street1", in.Street1)
	setIfPresent(set, "street2", in.Street2)
	setIfPresent(set, "city", in.City)
	setIfPresent(set, "state", in.State)
	setIfPresent(set, "zip_code", in.ZipCode)

	var updated models.Vendor
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": vendorID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("failed to update vendor %s: %w", vendorID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a vendor.
func (s *vendorService) Delete(ctx context.Context, vendorID primitive.ObjectID) error {
	err := s.db.Collection(vendorsCollection).FindOneAndDelete(ctx, bson.M{"_id": vendorID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Vendor not found")
		}
		return fmt.Errorf("failed to delete vendor %s: %w", vendorID.Hex(), err)
	}
	return nil
}
