package services

import (
	"math"
	"time"

	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
)

// DiscountEvaluation is the outcome of applying the early-payment discount
// policy to a gross payment amount against a bill.
type DiscountEvaluation struct {
	Discount    float64
	FinalAmount float64
	Status      models.BillStatus
}

// EvaluateDiscount applies the early-payment policy: a payment made within
// windowDays of the bill's creation that covers the full remaining balance
// earns a discount of rate * the bill's original amount. Age is measured in
// whole elapsed days, so a bill is still "day 10" up to the last instant
// before day 11 begins.
//
// The resulting status is paid when the remaining balance net of the gross
// amount is zero or below, and unpaid otherwise; the discount itself does
// not factor into that check. Pure function, no I/O.
func EvaluateDiscount(bill *models.Bill, amount float64, now time.Time, windowDays int, rate float64) DiscountEvaluation {
	days := int(math.Floor(now.Sub(bill.CreatedAt).Hours() / 24))

	discount := 0.0
	if days <= windowDays && amount >= bill.RemainingAmount {
		discount = bill.BillAmount * rate
	}

	status := models.BillStatusUnpaid
	if bill.RemainingAmount-amount <= 0 {
		status = models.BillStatusPaid
	}

	return DiscountEvaluation{
		Discount:    discount,
		FinalAmount: amount - discount,
		Status:      status,
	}
}
