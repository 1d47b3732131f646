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

// IBillService defines the interface for bill operations. Every mutation
// that can change a bill's paid state triggers the purchase order status
// roll-up afterwards.
type IBillService interface {
	Create(ctx context.Context, in CreateBillInput) (*models.Bill, error)
	Query(ctx context.Context, filter BillFilter, opts db.PageOptions) (*db.Page[models.Bill], error)
	FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error)
	GetDetail(ctx context.Context, billID primitive.ObjectID) (*BillDetail, error)
	Update(ctx context.Context, billID primitive.ObjectID, in UpdateBillInput) (*models.Bill, error)
	Delete(ctx context.Context, billID primitive.ObjectID) error
	CalculateRemaining(ctx context.Context, billID primitive.ObjectID) (*RemainingBalance, error)
	AppendPayment(ctx context.Context, billID, paymentID primitive.ObjectID, newRemaining float64, status models.BillStatus) (*models.Bill, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]models.Bill, error)
	MarkOverdueNotified(ctx context.Context, billIDs []primitive.ObjectID) error
}

// CreateBillInput carries the fields accepted at bill creation. The
// remaining balance always starts equal to the bill amount.
type CreateBillInput struct {
	PurchaseOrderID primitive.ObjectID
	ClientID        primitive.ObjectID
	BillAmount      float64
	DueDate         time.Time
	CategoryID      *primitive.ObjectID
	Attachments     []primitive.ObjectID
}

// UpdateBillInput is the allow-listed set of updatable bill fields.
// PurchaseOrderID is present only so the service can reject attempts to
// move a bill between orders.
type UpdateBillInput struct {
	PurchaseOrderID *primitive.ObjectID
	BillAmount      *float64
	DueDate         *time.Time
	CategoryID      *primitive.ObjectID
	AddAttachments  []primitive.ObjectID
	DropAttachments []primitive.ObjectID
}

// BillFilter narrows bill list queries.
type BillFilter struct {
	ClientID        primitive.ObjectID
	PurchaseOrderID primitive.ObjectID
	Status          models.BillStatus
	MinAmount       *float64
	MaxAmount       *float64
}

// BillDetail is a bill with its purchase order, category and attachments
// populated.
type BillDetail struct {
	Bill          models.Bill             `json:"bill"`
	PurchaseOrder *models.PurchaseOrder   `json:"purchase_order,omitempty"`
	Category      *models.ExpenseCategory `json:"category,omitempty"`
	Attachments   []models.Attachment     `json:"attachments,omitempty"`
}

// RemainingBalance reports how much of a bill is still due.
type RemainingBalance struct {
	BillID          primitive.ObjectID `json:"bill_id"`
	RemainingAmount float64            `json:"remaining_amount"`
	Status          models.BillStatus  `json:"status"`
}

// billService implements IBillService.
type billService struct {
	db                *mongo.Database
	clientService     IClientService
	poService         IPurchaseOrderService
	categoryService   IExpenseCategoryService
	attachmentService IAttachmentService
}

// NewBillService creates a new BillService.
func NewBillService(
	database *mongo.Database,
	clientService IClientService,
	poService IPurchaseOrderService,
	categoryService IExpenseCategoryService,
	attachmentService IAttachmentService,
) IBillService {
	return &billService{
		db:                database,
		clientService:     clientService,
		poService:         poService,
		categoryService:   categoryService,
		attachmentService: attachmentService,
	}
}

// Create validates the client and purchase order, inserts the bill as
// unpaid with the full amount remaining, and rolls the PO status up.
func (s *billService) Create(ctx context.Context, in CreateBillInput) (*models.Bill, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if _, err := s.poService.FindByID(ctx, in.PurchaseOrderID); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if _, err := s.categoryService.FindByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	bill := &models.Bill{
		Base:            models.NewBase(),
		PurchaseOrderID: in.PurchaseOrderID,
		ClientID:        in.ClientID,
		BillAmount:      in.BillAmount,
		RemainingAmount: in.BillAmount,
		DueDate:         in.DueDate,
		Status:          models.BillStatusUnpaid,
		CategoryID:      in.CategoryID,
		Payments:        []primitive.ObjectID{},
		Attachments:     in.Attachments,
	}
	if _, err := s.db.Collection(billsCollection).InsertOne(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to insert bill: %w", err)
	}

	if _, err := s.poService.UpdateStatus(ctx, in.PurchaseOrderID); err != nil {
		return nil, err
	}
	return bill, nil
}

// Query returns a page of bills matching the filter.
func (s *billService) Query(ctx context.Context, filter BillFilter, opts db.PageOptions) (*db.Page[models.Bill], error) {
	query := bson.M{}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	if !filter.PurchaseOrderID.IsZero() {
		query["purchase_order_id"] = filter.PurchaseOrderID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.MinAmount != nil || filter.MaxAmount != nil {
		amountRange := bson.M{}
		if filter.MinAmount != nil {
			amountRange["$gte"] = *filter.MinAmount
		}
		if filter.MaxAmount != nil {
			amountRange["$lte"] = *filter.MaxAmount
		}
		query["bill_amount"] = amountRange
	}
	return db.Paginate[models.Bill](ctx, s.db.Collection(billsCollection), query, opts)
}

// FindByID fetches a bill by ID.
func (s *billService) FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.Collection(billsCollection).FindOne(ctx, bson.M{"_id": billID}).Decode(&bill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Bill not found")
		}
		return nil, fmt.Errorf("error finding bill %s: %w", billID.Hex(), err)
	}
	return &bill, nil
}

// GetDetail fetches a bill with its referenced documents resolved.
func (s *billService) GetDetail(ctx context.Context, billID primitive.ObjectID) (*BillDetail, error) {
	bill, err := s.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	detail := &BillDetail{Bill: *bill}
	if po, err := s.poService.FindByID(ctx, bill.PurchaseOrderID); err == nil {
		detail.PurchaseOrder = po
	}
	if bill.CategoryID != nil {
		if category, err := s.categoryService.FindByID(ctx, *bill.CategoryID); err == nil {
			detail.Category = category
		}
	}
	if len(bill.Attachments) > 0 {
		attachments, err := s.attachmentService.FindByIDs(ctx, bill.Attachments)
		if err != nil {
			return nil, err
		}
		detail.Attachments = attachments
	}
	return detail, nil
}

// Update merges the allow-listed fields. Changing the bill amount resets
// the remaining balance to the new amount and the status to unpaid; moving
// the bill to another purchase order is rejected. The PO roll-up runs
// afterwards since the bill's paid state may have changed.
func (s *billService) Update(ctx context.Context, billID primitive.ObjectID, in UpdateBillInput) (*models.Bill, error) {
	bill, err := s.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if in.PurchaseOrderID != nil && *in.PurchaseOrderID != bill.PurchaseOrderID {
		return nil, apperr.BadRequest("Cannot change the associated purchase order")
	}
	if in.CategoryID != nil {
		if _, err := s.categoryService.FindByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	attachments := bill.Attachments
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
	if in.BillAmount != nil {
		set["bill_amount"] = *in.BillAmount
		set["remaining_amount"] = *in.BillAmount
		set["status"] = models.BillStatusUnpaid
	}
	setIfPresent(set, "due_date", in.DueDate)
	setIfPresent(set, "category_id", in.CategoryID)

	var updated models.Bill
	err = s.db.Collection(billsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": billID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Bill not found")
		}
		return nil, fmt.Errorf("failed to update bill %s: %w", billID.Hex(), err)
	}

	if _, err := s.poService.UpdateStatus(ctx, updated.PurchaseOrderID); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a bill and rolls the owning purchase order's status up.
// Payments recorded against the bill are left untouched.
func (s *billService) Delete(ctx context.Context, billID primitive.ObjectID) error {
	var bill models.Bill
	err := s.db.Collection(billsCollection).FindOneAndDelete(ctx, bson.M{"_id": billID}).Decode(&bill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Bill not found")
		}
		return fmt.Errorf("failed to delete bill %s: %w", billID.Hex(), err)
	}

	if _, err := s.poService.UpdateStatus(ctx, bill.PurchaseOrderID); err != nil {
		return err
	}
	return nil
}

// CalculateRemaining reports the bill's current balance as stored; it does
// not re-derive it from the payment history.
func (s *billService) CalculateRemaining(ctx context.Context, billID primitive.ObjectID) (*RemainingBalance, error) {
	bill, err := s.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	return &RemainingBalance{
		BillID:          bill.ID,
		RemainingAmount: bill.RemainingAmount,
		Status:          bill.Status,
	}, nil
}

// AppendPayment records a payment against the bill: the caller supplies the
// already-computed new balance and status, and the payment reference is
// pushed onto the bill's history. The PO roll-up runs afterwards.
func (s *billService) AppendPayment(ctx context.Context, billID, paymentID primitive.ObjectID, newRemaining float64, status models.BillStatus) (*models.Bill, error) {
	var updated models.Bill
	err := s.db.Collection(billsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": billID},
		bson.M{
			"$set": bson.M{
				"remaining_amount": newRemaining,
				"status":           status,
				"updated_at":       time.Now().UTC(),
			},
			"$push": bson.M{"payments": paymentID},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Bill not found")
		}
		return nil, fmt.Errorf("failed to apply payment to bill %s: %w", billID.Hex(), err)
	}

	if _, err := s.poService.UpdateStatus(ctx, updated.PurchaseOrderID); err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindOverdue returns unpaid or partially paid bills whose due date has
// passed and which have not yet been flagged by the overdue notifier.
func (s *billService) FindOverdue(ctx context.Context, asOf time.Time) ([]models.Bill, error) {
	cursor, err := s.db.Collection(billsCollection).Find(ctx, bson.M{
		"due_date":         bson.M{"$lt": asOf},
		"status":           bson.M{"$in": bson.A{models.BillStatusUnpaid, models.BillStatusPartiallyPaid}},
		"overdue_notified": bson.M{"$ne": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue bills: %w", err)
	}
	defer cursor.Close(ctx)

	var bills []models.Bill
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("failed to decode overdue bills: %w", err)
	}
	return bills, nil
}

// MarkOverdueNotified flags the given bills so the notifier does not send
// for them again.
func (s *billService) MarkOverdueNotified(ctx context.Context, billIDs []primitive.ObjectID) error {
	if len(billIDs) == 0 {
		return nil
	}
	_, err := s.db.Collection(billsCollection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": billIDs}},
		bson.M{"$set": bson.M{"overdue_notified": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark bills overdue-notified: %w", err)
	}
	return nil
}
