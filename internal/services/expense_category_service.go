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

// IExpenseCategoryService defines the interface for expense category operations.
type IExpenseCategoryService interface {
	Create(ctx context.Context, name, description string) (*models.ExpenseCategory, error)
	Query(ctx context.Context, name string, opts db.PageOptions) (*db.Page[models.ExpenseCategory], error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExpenseCategory, error)
	Update(ctx context.Context, id primitive.ObjectID, name, description *string) (*models.ExpenseCategory, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

const expenseCategoriesCollection = "expense_categories"

// expenseCategoryService implements IExpenseCategoryService.
type expenseCategoryService struct {
	db *mongo.Database
}

// NewExpenseCategoryService creates a new ExpenseCategoryService.
func NewExpenseCategoryService(database *mongo.Database) IExpenseCategoryService {
	return &expenseCategoryService{db: database}
}

// Create inserts a new category. Names are unique.
func (s *expenseCategoryService) Create(ctx context.Context, name, description string) (*models.ExpenseCategory, error) {
	collection := s.db.Collection(expenseCategoriesCollection)

	err := collection.FindOne(ctx, bson.M{"name": name}).Err()
	if err == nil {
		return nil, apperr.Conflict("Expense category with this name already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check category name uniqueness: %w", err)
	}

	category := &models.ExpenseCategory{
		Base:        models.NewBase(),
		Name:        name,
		Description: description,
	}
	if _, err := collection.InsertOne(ctx, category); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, apperr.Conflict("Expense category with this name already exists")
		}
		return nil, fmt.Errorf("failed to insert expense category: %w", err)
	}
	return category, nil
}

// Query returns a page of categories, optionally filtered by name.
func (s *expenseCategoryService) Query(ctx context.Context, name string, opts db.PageOptions) (*db.Page[models.ExpenseCategory], error) {
	query := bson.M{}
	if name != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: name, Options: "i"}}
	}
	return db.Paginate[models.ExpenseCategory](ctx, s.db.Collection(expenseCategoriesCollection), query, opts)
}

// FindByID fetches a category by ID.
func (s *expenseCategoryService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	err := s.db.Collection(expenseCategoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Expense category not found")
		}
		return nil, fmt.Errorf("error finding expense category %s: %w", id.Hex(), err)
	}
	return &category, nil
}

// Update applies name/description changes and returns the updated category.
func (s *expenseCategoryService) Update(ctx context.Context, id primitive.ObjectID, name, description *string) (*models.ExpenseCategory, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "name", name)
	setIfPresent(set, "description", description)

	var updated models.ExpenseCategory
	err := s.db.Collection(expenseCategoriesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Expense category not found")
		}
		return nil, fmt.Errorf("failed to update expense category %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a category.
func (s *expenseCategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.db.Collection(expenseCategoriesCollection).FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Expense category not found")
		}
		return fmt.Errorf("failed to delete expense category %s: %w", id.Hex(), err)
	}
	return nil
}
