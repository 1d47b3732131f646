package models

// ExpenseCategory labels bills for reporting. Names are unique.
type ExpenseCategory struct {
	Base        `bson:",inline"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}
