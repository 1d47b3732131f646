package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentTypeKind classifies a stored payment instrument.
type PaymentTypeKind string

const (
	PaymentTypeCreditCard  PaymentTypeKind = "credit_card"
	PaymentTypeDebitCard   PaymentTypeKind = "debit_card"
	PaymentTypeBankAccount PaymentTypeKind = "bank_account"
)

// ValidPaymentTypeKind reports whether k is one of the accepted kinds.
func ValidPaymentTypeKind(k PaymentTypeKind) bool {
	switch k {
	case PaymentTypeCreditCard, PaymentTypeDebitCard, PaymentTypeBankAccount:
		return true
	}
	return false
}

// PaymentType is a saved payment instrument belonging to a client.
// Details holds the full card or account number and is never serialized;
// JSON responses carry a masked display name and the last four digits only.
type PaymentType struct {
	Base     `bson:",inline"`
	Name     string             `bson:"name" json:"name"`
	Details  string             `bson:"details" json:"-"`
	Type     PaymentTypeKind    `bson:"type" json:"type"`
	ClientID primitive.ObjectID `bson:"client_id" json:"client_id"`
}

// LastFour returns the trailing four characters of the stored number.
func (pt *PaymentType) LastFour() string {
	if len(pt.Details) <= 4 {
		return pt.Details
	}
	return pt.Details[len(pt.Details)-4:]
}

// DisplayName renders the masked human-readable form of the instrument.
func (pt *PaymentType) DisplayName() string {
	lastFour := pt.LastFour()
	if strings.Contains(strings.ToLower(pt.Name), "bank") {
		return fmt.Sprintf("%s ****%s", pt.Name, lastFour)
	}
	return fmt.Sprintf("%s ending in %s", pt.Name, lastFour)
}

// MarshalJSON adds the masked display fields while keeping Details out of
// the payload.
func (pt PaymentType) MarshalJSON() ([]byte, error) {
	type alias PaymentType // Avoid recursing into this method
	return json.Marshal(struct {
		alias
		DisplayName      string `json:"display_name"`
		EndingCardNumber string `json:"ending_card_number"`
	}{
		alias:            alias(pt),
		DisplayName:      pt.DisplayName(),
		EndingCardNumber: pt.LastFour(),
	})
}
