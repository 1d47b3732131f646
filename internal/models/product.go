package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is an orderable item supplied by a vendor.
type Product struct {
	Base        `bson:",inline"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	VendorID    primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`
	ClientID    primitive.ObjectID `bson:"client_id" json:"client_id"`
}
