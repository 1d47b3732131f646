package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
)

// IPurchaseOrderService defines the interface for purchase order operations,
// including the status roll-up that aggregates the paid bills recorded
// against an order.
type IPurchaseOrderService interface {
	Create(ctx context.Context, in CreatePurchaseOrderInput) (*models.PurchaseOrder, error)
	Query(ctx context.Context, filter PurchaseOrderFilter, opts db.PageOptions) (*db.Page[models.PurchaseOrder], error)
	FindByID(ctx context.Context, poID primitive.ObjectID) (*models.PurchaseOrder, error)
	GetDetail(ctx context.Context, poID primitive.ObjectID) (*PurchaseOrderDetail, error)
	Update(ctx context.Context, poID primitive.ObjectID, in UpdatePurchaseOrderInput) (*models.PurchaseOrder, error)
	Delete(ctx context.Context, poID primitive.ObjectID) error
	UpdateStatus(ctx context.Context, poID primitive.ObjectID) (*models.PurchaseOrder, error)
}

const (
	purchaseOrdersCollection = "purchase_orders"
	billsCollection          = "bills"
)

// LineItemInput is one requested line on a purchase order. Amount is
// always recomputed server-side as Quantity * Rate.
type LineItemInput struct {
	ProductID   primitive.ObjectID `json:"product_id"`
	Description string             `json:"description"`
	Quantity    float64            `json:"quantity"`
	Rate        float64            `json:"rate"`
}

// CreatePurchaseOrderInput carries the fields accepted at PO creation.
type CreatePurchaseOrderInput struct {
	VendorID     primitive.ObjectID
	ClientID     primitive.ObjectID
	Items        []LineItemInput
	TotalAmount  float64
	CreatedBy    primitive.ObjectID
	Notes        string
	ShippingCost float64
	Tax          float64
	Attachments  []primitive.ObjectID
}

// UpdatePurchaseOrderInput is the allow-listed set of updatable PO fields.
// Status is deliberately absent: it is derived by UpdateStatus only.
type UpdatePurchaseOrderInput struct {
	Items           []LineItemInput // nil leaves items untouched
	Notes           *string
	ShippingCost    *float64
	Tax             *float64
	AddAttachments  []primitive.ObjectID
	DropAttachments []primitive.ObjectID
}

// PurchaseOrderFilter narrows PO list queries.
type PurchaseOrderFilter struct {
	ClientID primitive.ObjectID
	VendorID primitive.ObjectID
	Status   models.PurchaseOrderStatus
}

// PurchaseOrderDetail is a PO with its vendor and attachments populated.
type PurchaseOrderDetail struct {
	PurchaseOrder models.PurchaseOrder `json:"purchase_order"`
	Vendor        *models.Vendor       `json:"vendor,omitempty"`
	Attachments   []models.Attachment  `json:"attachments,omitempty"`
}

// purchaseOrderService implements IPurchaseOrderService.
type purchaseOrderService struct {
	db                *mongo.Database
	clientService     IClientService
	productService    IProductService
	vendorService     IVendorService
	attachmentService IAttachmentService
}

// NewPurchaseOrderService creates a new PurchaseOrderService.
func NewPurchaseOrderService(
	database *mongo.Database,
	clientService IClientService,
	productService IProductService,
	vendorService IVendorService,
	attachmentService IAttachmentService,
) IPurchaseOrderService {
	return &purchaseOrderService{
		db:                database,
		clientService:     clientService,
		productService:    productService,
		vendorService:     vendorService,
		attachmentService: attachmentService,
	}
}

// Create validates the client and every line item's product, computes item
// amounts, enforces the exact total match, and inserts the order with a
// freshly generated PO number. The number carries a unique index; on the
// rare collision the insert is retried with a new number.
func (s *purchaseOrderService) Create(ctx context.Context, in CreatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	items := make([]models.LineItem, 0, len(in.Items))
	calculatedTotal := 0.0
	for _, item := range in.Items {
		if _, err := s.productService.FindByID(ctx, item.ProductID); err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) && appErr.Status == 404 {
				return nil, apperr.NotFound(fmt.Sprintf("Product with ID %s not found", item.ProductID.Hex()))
			}
			return nil, err
		}
		amount := item.Quantity * item.Rate
		items = append(items, models.LineItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      amount,
		})
		calculatedTotal += amount
	}

	// Exact match, no rounding tolerance.
	if calculatedTotal != in.TotalAmount {
		return nil, apperr.BadRequest("Total amount mismatch")
	}

	collection := s.db.Collection(purchaseOrdersCollection)
	var po *models.PurchaseOrder

	operation := func() error {
		po = &models.PurchaseOrder{
			Base:         models.NewBase(),
			PONumber:     generatePONumber(),
			VendorID:     in.VendorID,
			ClientID:     in.ClientID,
			Items:        items,
			TotalAmount:  in.TotalAmount,
			TotalBilled:  0,
			Status:       models.POStatusOpen,
			CreatedBy:    in.CreatedBy,
			Notes:        in.Notes,
			ShippingCost: in.ShippingCost,
			Tax:          in.Tax,
			Attachments:  in.Attachments,
		}
		_, insertErr := collection.InsertOne(ctx, po)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert purchase order after retries: %w", err)
	}
	return po, nil
}

// Query returns a page of purchase orders matching the filter.
func (s *purchaseOrderService) Query(ctx context.Context, filter PurchaseOrderFilter, opts db.PageOptions) (*db.Page[models.PurchaseOrder], error) {
	query := bson.M{}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	if !filter.VendorID.IsZero() {
		query["vendor_id"] = filter.VendorID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return db.Paginate[models.PurchaseOrder](ctx, s.db.Collection(purchaseOrdersCollection), query, opts)
}

// FindByID fetches a purchase order by ID.
func (s *purchaseOrderService) FindByID(ctx context.Context, poID primitive.ObjectID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.db.Collection(purchaseOrdersCollection).FindOne(ctx, bson.M{"_id": poID}).Decode(&po)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Purchase Order not found")
		}
		return nil, fmt.Errorf("error finding purchase order %s: %w", poID.Hex(), err)
	}
	return &po, nil
}

// GetDetail fetches a PO with its vendor and attachment documents resolved.
func (s *purchaseOrderService) GetDetail(ctx context.Context, poID primitive.ObjectID) (*PurchaseOrderDetail, error) {
	po, err := s.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	detail := &PurchaseOrderDetail{PurchaseOrder: *po}

	if vendor, err := s.vendorService.FindByID(ctx, po.VendorID); err == nil {
		detail.Vendor = vendor
	}
	if len(po.Attachments) > 0 {
		attachments, err := s.attachmentService.FindByIDs(ctx, po.Attachments)
		if err != nil {
			return nil, err
		}
		detail.Attachments = attachments
	}
	return detail, nil
}

// Update replaces items and merges the allow-listed fields. Attachment
// changes drop removed references (deleting the stored objects) before
// appending new ones.
func (s *purchaseOrderService) Update(ctx context.Context, poID primitive.ObjectID, in UpdatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	po, err := s.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	attachments := po.Attachments
	if len(in.DropAttachments) > 0 {
		if err := s.attachmentService.Delete(ctx, in.DropAttachments); err != nil {
			return nil, err
		}
		attachments = withoutIDs(attachments, in.DropAttachments)
	}
	attachments = append(attachments, in.AddAttachments...)

	set := bson.M{
		"updated_at":  time.Now().UTC(),
		"attachments": attachments,
	}
	if in.Items != nil {
		items := make([]models.LineItem, 0, len(in.Items))
		for _, item := range in.Items {
			items = append(items, models.LineItem{
				ProductID:   item.ProductID,
				Description: item.Description,
				Quantity:    item.Quantity,
				Rate:        item.Rate,
				Amount:      item.Quantity * item.Rate,
			})
		}
		set["items"] = items
	}
	setIfPresent(set, "notes", in.Notes)
	setIfPresent(set, "shipping_cost", in.ShippingCost)
	setIfPresent(set, "tax", in.Tax)

	var updated models.PurchaseOrder
	err = s.db.Collection(purchaseOrdersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": poID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Purchase Order not found")
		}
		return nil, fmt.Errorf("failed to update purchase order %s: %w", poID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a purchase order. Bills referencing it are left in place;
// there is no cascading delete.
func (s *purchaseOrderService) Delete(ctx context.Context, poID primitive.ObjectID) error {
	err := s.db.Collection(purchaseOrdersCollection).FindOneAndDelete(ctx, bson.M{"_id": poID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Purchase Order not found")
		}
		return fmt.Errorf("failed to delete purchase order %s: %w", poID.Hex(), err)
	}
	return nil
}

// UpdateStatus recomputes the order's cumulative billed amount and lifecycle
// status from the bills in status "paid" that reference it. When no paid
// bills exist the order is left untouched and (nil, nil) is returned so
// callers can distinguish the no-op from an actual transition.
func (s *purchaseOrderService) UpdateStatus(ctx context.Context, poID primitive.ObjectID) (*models.PurchaseOrder, error) {
	po, err := s.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.db.Collection(billsCollection).Find(ctx, bson.M{
		"purchase_order_id": poID,
		"status":            models.BillStatusPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query paid bills for PO %s: %w", poID.Hex(), err)
	}
	defer cursor.Close(ctx)

	var paidBills []models.Bill
	if err := cursor.All(ctx, &paidBills); err != nil {
		return nil, fmt.Errorf("failed to decode paid bills for PO %s: %w", poID.Hex(), err)
	}
	if len(paidBills) == 0 {
		return nil, nil // No-op, status stays as-is
	}

	// Roll-up sums the original bill amounts, not the remaining balances.
	totalBilled := 0.0
	for _, bill := range paidBills {
		totalBilled += bill.BillAmount
	}

	status := models.POStatusOpen // Unreachable given the guard above, kept as the fallback branch
	switch {
	case totalBilled >= po.TotalAmount:
		status = models.POStatusFulfilled
	case totalBilled > 0:
		status = models.POStatusPartiallyReceived
	}

	var updated models.PurchaseOrder
	err = s.db.Collection(purchaseOrdersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": poID},
		bson.M{"$set": bson.M{
			"total_billed": totalBilled,
			"status":       status,
			"updated_at":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to persist status roll-up for PO %s: %w", poID.Hex(), err)
	}
	return &updated, nil
}

// generatePONumber produces the human-readable order identifier.
func generatePONumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

// withoutIDs filters the given references out of an ID list.
func withoutIDs(ids, drop []primitive.ObjectID) []primitive.ObjectID {
	dropSet := make(map[primitive.ObjectID]struct{}, len(drop))
	for _, id := range drop {
		dropSet[id] = struct{}{}
	}
	kept := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, gone := dropSet[id]; !gone {
			kept = append(kept, id)
		}
	}
	return kept
}
