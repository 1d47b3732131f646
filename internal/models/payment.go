package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodACH          PaymentMethod = "ach"
	PaymentMethodWireTransfer PaymentMethod = "wire_transfer"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCash,
		PaymentMethodCheck, PaymentMethodACH, PaymentMethodWireTransfer:
		return true
	}
	return false
}

// Payment is a recorded settlement (full or partial) against a bill.
// Amount is the net amount actually applied (gross minus discount) and
// Discount is what the early-payment rule granted; once created they are a
// permanent record of what was applied at that instant and are never
// recomputed.
type Payment struct {
	Base          `bson:",inline"`
	BillID        primitive.ObjectID   `bson:"bill_id" json:"bill_id"`
	ClientID      primitive.ObjectID   `bson:"client_id" json:"client_id"`
	Amount        float64              `bson:"amount" json:"amount"`
	Discount      float64              `bson:"discount" json:"discount"`
	PaymentMethod PaymentMethod        `bson:"payment_method" json:"payment_method"`
	PaymentTypeID *primitive.ObjectID  `bson:"payment_type_id,omitempty" json:"payment_type_id,omitempty"`
	Status        BillStatus           `bson:"status" json:"status"` // Owning bill's status at creation time
	PaymentDate   time.Time            `bson:"payment_date" json:"payment_date"`
	Notes         string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Attachments   []primitive.ObjectID `bson:"attachments,omitempty" json:"attachments,omitempty"`
}
