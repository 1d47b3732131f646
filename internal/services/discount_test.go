package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
)

func discountTestBill(billAmount, remaining float64, age time.Duration) *models.Bill {
	bill := &models.Bill{
		BillAmount:      billAmount,
		RemainingAmount: remaining,
	}
	bill.CreatedAt = time.Now().UTC().Add(-age)
	return bill
}

func TestEvaluateDiscount_FullPaymentWithinWindow(t *testing.T) {
	bill := discountTestBill(200, 200, 2*24*time.Hour)

	eval := EvaluateDiscount(bill, 200, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 4.0, eval.Discount)
	assert.Equal(t, 196.0, eval.FinalAmount)
	assert.Equal(t, models.BillStatusPaid, eval.Status)
}

func TestEvaluateDiscount_PartialPaymentNoDiscount(t *testing.T) {
	bill := discountTestBill(200, 200, 2*24*time.Hour)

	eval := EvaluateDiscount(bill, 100, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 0.0, eval.Discount)
	assert.Equal(t, 100.0, eval.FinalAmount)
	// A bill with money still owing stays unpaid; there is no intermediate
	// status in this workflow.
	assert.Equal(t, models.BillStatusUnpaid, eval.Status)
}

func TestEvaluateDiscount_OutsideWindowNoDiscount(t *testing.T) {
	bill := discountTestBill(200, 200, 11*24*time.Hour)

	eval := EvaluateDiscount(bill, 200, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 0.0, eval.Discount)
	assert.Equal(t, 200.0, eval.FinalAmount)
	// Full payment still settles the bill
	assert.Equal(t, models.BillStatusPaid, eval.Status)
}

func TestEvaluateDiscount_LastDayOfWindowStillEligible(t *testing.T) {
	// Just under 11 whole days elapsed counts as day 10
	bill := discountTestBill(500, 500, 10*24*time.Hour+23*time.Hour)

	eval := EvaluateDiscount(bill, 500, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 10.0, eval.Discount)
	assert.Equal(t, 490.0, eval.FinalAmount)
	assert.Equal(t, models.BillStatusPaid, eval.Status)
}

func TestEvaluateDiscount_CoversRemainderOnPartiallyPaidBill(t *testing.T) {
	// Discount is keyed to the original bill amount even when only the
	// remainder is being settled.
	bill := discountTestBill(200, 50, 24*time.Hour)

	eval := EvaluateDiscount(bill, 50, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 4.0, eval.Discount)
	assert.Equal(t, 46.0, eval.FinalAmount)
	assert.Equal(t, models.BillStatusPaid, eval.Status)
}

func TestEvaluateDiscount_AmountBelowRemainingNeverDiscounts(t *testing.T) {
	bill := discountTestBill(1000, 600, time.Hour)

	eval := EvaluateDiscount(bill, 599.99, time.Now().UTC(), 10, 0.02)

	assert.Equal(t, 0.0, eval.Discount)
	assert.Equal(t, 599.99, eval.FinalAmount)
	assert.Equal(t, models.BillStatusUnpaid, eval.Status)
}
