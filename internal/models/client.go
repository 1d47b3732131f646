package models

// Client is a tenant of the back office: every vendor, product, purchase
// order, bill and payment belongs to exactly one client.
type Client struct {
	Base        `bson:",inline"`
	Name        string `bson:"name" json:"name"`
	ContactName string `bson:"contact_name" json:"contact_name"`
	PhoneNumber string `bson:"phone_number" json:"phone_number"`
	Email       string `bson:"email" json:"email"` // Unique across clients
	Street1     string `bson:"street1" json:"street1"`
	Street2     string `bson:"street2,omitempty" json:"street2,omitempty"`
	City        string `bson:"city" json:"city"`
	State       string `bson:"state" json:"state"`
	ZipCode     string `bson:"zip_code" json:"zip_code"`
}
