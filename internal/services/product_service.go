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

// IProductService defines the interface for product operations.
type IProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*models.Product, error)
	Query(ctx context.Context, filter ProductFilter, opts db.PageOptions) (*db.Page[models.Product], error)
	FindByID(ctx context.Context, productID primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, productID primitive.ObjectID, in UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, productID primitive.ObjectID) error
}

const productsCollection = "products"

// CreateProductInput carries the fields accepted at product creation.
type CreateProductInput struct {
	Name        string
	Description string
	VendorID    primitive.ObjectID
	ClientID    primitive.ObjectID
}

// UpdateProductInput is the allow-listed set of updatable product fields.
type UpdateProductInput struct {
	Name        *string
	Description *string
}

// ProductFilter narrows product list queries.
type ProductFilter struct {
	Name     string // Case-insensitive substring match
	ClientID primitive.ObjectID
	VendorID primitive.ObjectID
}

// productService implements IProductService.
type productService struct {
	db            *mongo.Database
	clientService IClientService
	vendorService IVendorService
}

// NewProductService creates a new ProductService.
func NewProductService(database *mongo.Database, clientService IClientService, vendorService IVendorService) IProductService {
	return &productService{db: database, clientService: clientService, vendorService: vendorService}
}

// Create inserts a new product. Both the owning client and the supplying
// vendor must exist.
func (s *productService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if _, err := s.vendorService.FindByID(ctx, in.VendorID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Base:        models.NewBase(),
		Name:        in.Name,
		Description: in.Description,
		VendorID:    in.VendorID,
		ClientID:    in.ClientID,
	}
	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

// Query returns a page of products matching the filter.
func (s *productService) Query(ctx context.Context, filter ProductFilter, opts db.PageOptions) (*db.Page[models.Product], error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Name, Options: "i"}}
	}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	if !filter.VendorID.IsZero() {
		query["vendor_id"] = filter.VendorID
	}
	return db.Paginate[models.Product](ctx, s.db.Collection(productsCollection), query, opts)
}

// FindByID fetches a product by ID.
func (s *productService) FindByID(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, fmt.Errorf("error finding product %s: %w", productID.Hex(), err)
	}
	return &product, nil
}

// Update applies the allow-listed changes and returns the updated product.
func (s *productService) Update(ctx context.Context, productID primitive.ObjectID, in UpdateProductInput) (*models.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "name", in.Name)
	setIfPresent(set, "description", in.Description)

	var updated models.Product
	err := s.db.Collection(productsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, fmt.Errorf("failed to update product %s: %w", productID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, productID primitive.ObjectID) error {
	err := s.db.Collection(productsCollection).FindOneAndDelete(ctx, bson.M{"_id": productID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Product not found")
		}
		return fmt.Errorf("failed to delete product %s: %w", productID.Hex(), err)
	}
	return nil
}
