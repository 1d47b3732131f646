package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillStatus is the payment status of a bill.
type BillStatus string

const (
	BillStatusUnpaid        BillStatus = "unpaid"
	BillStatusPaid          BillStatus = "paid"
	BillStatusPartiallyPaid BillStatus = "partially-paid"
)

// Bill is an amount owed by a client against a purchase order. A bill is
// created only after its parent purchase order is confirmed to exist and is
// never re-parented.
//
// Invariant: RemainingAmount == BillAmount - sum of applied payment net
// amounts; Status is "paid" iff RemainingAmount <= 0.
type Bill struct {
	Base            `bson:",inline"`
	PurchaseOrderID primitive.ObjectID   `bson:"purchase_order_id" json:"purchase_order_id"`
	ClientID        primitive.ObjectID   `bson:"client_id" json:"client_id"`
	BillAmount      float64              `bson:"bill_amount" json:"bill_amount"`
	RemainingAmount float64              `bson:"remaining_amount" json:"remaining_amount"`
	DueDate         time.Time            `bson:"due_date" json:"due_date"`
	Status          BillStatus           `bson:"status" json:"status"`
	CategoryID      *primitive.ObjectID  `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Notes           string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Payments        []primitive.ObjectID `bson:"payments,omitempty" json:"payments,omitempty"`
	Attachments     []primitive.ObjectID `bson:"attachments,omitempty" json:"attachments,omitempty"`
	OverdueNotified bool                 `bson:"overdue_notified" json:"-"` // Guards against repeat reminder emails
}
