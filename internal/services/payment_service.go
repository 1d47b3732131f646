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
	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
)

// IPaymentService defines the interface for payment operations. Create is
// the reconciliation entry point: it runs the discount evaluation, records
// the payment and pushes the new balance onto the bill.
type IPaymentService interface {
	Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error)
	CreateMany(ctx context.Context, ins []CreatePaymentInput) ([]*models.Payment, error)
	Query(ctx context.Context, filter PaymentFilter, opts db.PageOptions) (*db.Page[models.Payment], error)
	FindByID(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error)
	GetDetail(ctx context.Context, paymentID primitive.ObjectID) (*PaymentDetail, error)
	Update(ctx context.Context, paymentID primitive.ObjectID, in UpdatePaymentInput) (*models.Payment, error)
	Delete(ctx context.Context, paymentID primitive.ObjectID) error
}

const paymentsCollection = "payments"

// CreatePaymentInput carries the fields accepted when recording a payment.
// Amount is the gross amount tendered; the stored payment holds the net
// amount after any discount.
type CreatePaymentInput struct {
	BillID        primitive.ObjectID
	ClientID      primitive.ObjectID
	Amount        float64
	PaymentMethod models.PaymentMethod
	PaymentTypeID *primitive.ObjectID
	PaymentDate   time.Time
	Notes         string
	Attachments   []primitive.ObjectID
}

// UpdatePaymentInput is the allow-listed set of updatable payment fields.
// Changing the amount does not re-run the discount evaluation and does not
// touch the bill.
type UpdatePaymentInput struct {
	Amount          *float64
	PaymentMethod   *models.PaymentMethod
	PaymentTypeID   *primitive.ObjectID
	PaymentDate     *time.Time
	Notes           *string
	AddAttachments  []primitive.ObjectID
	DropAttachments []primitive.ObjectID
}

// PaymentFilter narrows payment list queries.
type PaymentFilter struct {
	ClientID      primitive.ObjectID
	BillID        primitive.ObjectID
	PaymentMethod models.PaymentMethod
	MinAmount     *float64
	MaxAmount     *float64
}

// PaymentDetail is a payment with its bill, payment type and attachments
// populated.
type PaymentDetail struct {
	Payment     models.Payment      `json:"payment"`
	Bill        *models.Bill        `json:"bill,omitempty"`
	PaymentType *models.PaymentType `json:"payment_type,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

// paymentService implements IPaymentService.
type paymentService struct {
	db                 *mongo.Database
	cfg                *config.Config
	clientService      IClientService
	billService        IBillService
	paymentTypeService IPaymentTypeService
	attachmentService  IAttachmentService
	now                func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	database *mongo.Database,
	cfg *config.Config,
	clientService IClientService,
	billService IBillService,
	paymentTypeService IPaymentTypeService,
	attachmentService IAttachmentService,
) IPaymentService {
	return &paymentService{
		db:                 database,
		cfg:                cfg,
		clientService:      clientService,
		billService:        billService,
		paymentTypeService: paymentTypeService,
		attachmentService:  attachmentService,
		now:                time.Now,
	}
}

// Create records a payment against a bill. The bill must have a positive
// remaining balance and the gross amount may not exceed it. An eligible
// early payment earns a discount, reducing the net amount actually stored;
// the bill's balance and status are then updated and the purchase order
// roll-up follows from there.
func (s *paymentService) Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if _, err := s.clientService.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid payment method: %s", in.PaymentMethod))
	}
	if in.PaymentTypeID != nil {
		if _, err := s.paymentTypeService.FindByID(ctx, *in.PaymentTypeID); err != nil {
			return nil, err
		}
	}

	bill, err := s.billService.FindByID(ctx, in.BillID)
	if err != nil {
		return nil, err
	}
	balance, err := s.billService.CalculateRemaining(ctx, in.BillID)
	if err != nil {
		return nil, err
	}

	if balance.RemainingAmount <= 0 {
		return nil, apperr.Forbidden("Bill does not have any due amount")
	}
	if in.Amount > balance.RemainingAmount {
		return nil, apperr.Forbidden(fmt.Sprintf("Payment amount cannot exceed %v", balance.RemainingAmount))
	}

	eval := EvaluateDiscount(bill, in.Amount, s.now(), s.cfg.DiscountWindowDays, s.cfg.DiscountRate)

	payment := &models.Payment{
		Base:          models.NewBase(),
		BillID:        in.BillID,
		ClientID:      in.ClientID,
		Amount:        eval.FinalAmount,
		Discount:      eval.Discount,
		PaymentMethod: in.PaymentMethod,
		PaymentTypeID: in.PaymentTypeID,
		Status:        eval.Status,
		PaymentDate:   in.PaymentDate,
		Notes:         in.Notes,
		Attachments:   in.Attachments,
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = s.now().UTC()
	}
	if _, err := s.db.Collection(paymentsCollection).InsertOne(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	// The balance drops by the net amount and the discount separately, so a
	// discounted full payment lands below zero. Established behavior that
	// downstream reporting depends on.
	newRemaining := balance.RemainingAmount - payment.Amount - payment.Discount
	if _, err := s.billService.AppendPayment(ctx, in.BillID, payment.ID, newRemaining, eval.Status); err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateMany records payments one at a time in input order. The first
// failure aborts the run; already-created payments stay in place and are
// returned alongside the error. There is no rollback.
func (s *paymentService) CreateMany(ctx context.Context, ins []CreatePaymentInput) ([]*models.Payment, error) {
	created := make([]*models.Payment, 0, len(ins))
	for _, in := range ins {
		payment, err := s.Create(ctx, in)
		if err != nil {
			return created, err
		}
		created = append(created, payment)
	}
	return created, nil
}

// Query returns a page of payments matching the filter.
func (s *paymentService) Query(ctx context.Context, filter PaymentFilter, opts db.PageOptions) (*db.Page[models.Payment], error) {
	query := bson.M{}
	if !filter.ClientID.IsZero() {
		query["client_id"] = filter.ClientID
	}
	if !filter.BillID.IsZero() {
		query["bill_id"] = filter.BillID
	}
	if filter.PaymentMethod != "" {
		query["payment_method"] = filter.PaymentMethod
	}
	if filter.MinAmount != nil || filter.MaxAmount != nil {
		amountRange := bson.M{}
		if filter.MinAmount != nil {
			amountRange["$gte"] = *filter.MinAmount
		}
		if filter.MaxAmount != nil {
			amountRange["$lte"] = *filter.MaxAmount
		}
		query["amount"] = amountRange
	}
	return db.Paginate[models.Payment](ctx, s.db.Collection(paymentsCollection), query, opts)
}

// FindByID fetches a payment by ID.
func (s *paymentService) FindByID(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Collection(paymentsCollection).FindOne(ctx, bson.M{"_id": paymentID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("error finding payment %s: %w", paymentID.Hex(), err)
	}
	return &payment, nil
}

// GetDetail fetches a payment with its referenced documents resolved.
func (s *paymentService) GetDetail(ctx context.Context, paymentID primitive.ObjectID) (*PaymentDetail, error) {
	payment, err := s.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	detail := &PaymentDetail{Payment: *payment}
	if bill, err := s.billService.FindByID(ctx, payment.BillID); err == nil {
		detail.Bill = bill
	}
	if payment.PaymentTypeID != nil {
		if pt, err := s.paymentTypeService.FindByID(ctx, *payment.PaymentTypeID); err == nil {
			detail.PaymentType = pt
		}
	}
	if len(payment.Attachments) > 0 {
		attachments, err := s.attachmentService.FindByIDs(ctx, payment.Attachments)
		if err != nil {
			return nil, err
		}
		detail.Attachments = attachments
	}
	return detail, nil
}

// Update merges the allow-listed fields onto the payment record only. The
// bill's balance, status and payment history are left exactly as the
// original Create left them; corrections go through delete-and-recreate.
func (s *paymentService) Update(ctx context.Context, paymentID primitive.ObjectID, in UpdatePaymentInput) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod != nil && !models.ValidPaymentMethod(*in.PaymentMethod) {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid payment method: %s", *in.PaymentMethod))
	}
	if in.PaymentTypeID != nil {
		if _, err := s.paymentTypeService.FindByID(ctx, *in.PaymentTypeID); err != nil {
			return nil, err
		}
	}

	attachments := payment.Attachments
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
	setIfPresent(set, "amount", in.Amount)
	setIfPresent(set, "payment_method", in.PaymentMethod)
	setIfPresent(set, "payment_type_id", in.PaymentTypeID)
	setIfPresent(set, "payment_date", in.PaymentDate)
	setIfPresent(set, "notes", in.Notes)

	var updated models.Payment
	err = s.db.Collection(paymentsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": paymentID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes the payment record. The bill keeps the balance reduction
// and the payment reference in its history; deletion does not reverse the
// reconciliation.
func (s *paymentService) Delete(ctx context.Context, paymentID primitive.ObjectID) error {
	err := s.db.Collection(paymentsCollection).FindOneAndDelete(ctx, bson.M{"_id": paymentID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Payment not found")
		}
		return fmt.Errorf("failed to delete payment %s: %w", paymentID.Hex(), err)
	}
	return nil
}
