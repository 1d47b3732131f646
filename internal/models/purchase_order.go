package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseOrderStatus is the lifecycle status of a purchase order. It is
// always derived from the paid bills recorded against the order and never
// set directly by a caller.
type PurchaseOrderStatus string

const (
	POStatusOpen              PurchaseOrderStatus = "open"
	POStatusPartiallyReceived PurchaseOrderStatus = "partially-received"
	POStatusFulfilled         PurchaseOrderStatus = "fulfilled"
	POStatusClosed            PurchaseOrderStatus = "closed"
)

// LineItem is one ordered product on a purchase order.
// Amount is computed as Quantity * Rate at creation time.
type LineItem struct {
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    float64            `bson:"quantity" json:"quantity"`
	Rate        float64            `bson:"rate" json:"rate"`
	Amount      float64            `bson:"amount" json:"amount"`
}

// PurchaseOrder is a vendor order whose status aggregates the bills paid
// against it. TotalAmount must equal the sum of the item amounts exactly;
// TotalBilled is the roll-up of bill_amount over paid bills.
type PurchaseOrder struct {
	Base         `bson:",inline"`
	PONumber     string               `bson:"po_number" json:"po_number"` // Unique, generated at creation
	VendorID     primitive.ObjectID   `bson:"vendor_id" json:"vendor_id"`
	ClientID     primitive.ObjectID   `bson:"client_id" json:"client_id"`
	Items        []LineItem           `bson:"items" json:"items"`
	TotalAmount  float64              `bson:"total_amount" json:"total_amount"`
	TotalBilled  float64              `bson:"total_billed" json:"total_billed"`
	Status       PurchaseOrderStatus  `bson:"status" json:"status"`
	CreatedBy    primitive.ObjectID   `bson:"created_by,omitempty" json:"created_by,omitempty"`
	Notes        string               `bson:"notes,omitempty" json:"notes,omitempty"`
	ShippingCost float64              `bson:"shipping_cost" json:"shipping_cost"`
	Tax          float64              `bson:"tax" json:"tax"`
	Attachments  []primitive.ObjectID `bson:"attachments,omitempty" json:"attachments,omitempty"`
}
