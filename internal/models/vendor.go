package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor is a supplier that purchase orders are placed with.
// Email is unique per client, not globally.
type Vendor struct {
	Base        `bson:",inline"`
	Name        string               `bson:"name" json:"name"`
	Email       string               `bson:"email" json:"email"`
	PhoneNumber string               `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	NetTerms    string               `bson:"net_terms,omitempty" json:"net_terms,omitempty"`
	Notes       string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Street1     string               `bson:"street1" json:"street1"`
	Street2     string               `bson:"street2,omitempty" json:"street2,omitempty"`
	City        string               `bson:"city" json:"city"`
	State       string               `bson:"state" json:"state"`
	ZipCode     string               `bson:"zip_code" json:"zip_code"`
	ClientID    primitive.ObjectID   `bson:"client_id" json:"client_id"`
	Attachments []primitive.ObjectID `bson:"attachments,omitempty" json:"attachments,omitempty"`
}
