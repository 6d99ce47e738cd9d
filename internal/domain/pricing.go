package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPlatformFee is added once per checkout to the amount shown to the renter.
var DefaultPlatformFee = decimal.NewFromInt(10)

// DateOnly returns the calendar date of t as midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays counts the calendar days of a rental, both endpoints included.
func RentalDays(start, end time.Time) int {
	days := int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
	return days + 1
}

// DirectRentalTotal prices a direct request at the listing's daily rate.
func DirectRentalTotal(pricePerDay decimal.Decimal, start, end time.Time) decimal.Decimal {
	return pricePerDay.Mul(decimal.NewFromInt(int64(RentalDays(start, end))))
}

// CheckoutTotals summarizes the money shown to the renter after checkout.
type CheckoutTotals struct {
	Subtotal    decimal.Decimal
	PlatformFee decimal.Decimal
	Total       decimal.Decimal
}

// SumCheckout adds item prices and applies the fee once.
func SumCheckout(prices []decimal.Decimal, fee decimal.Decimal) CheckoutTotals {
	subtotal := decimal.Zero
	for _, p := range prices {
		subtotal = subtotal.Add(p)
	}
	return CheckoutTotals{
		Subtotal:    subtotal,
		PlatformFee: fee,
		Total:       subtotal.Add(fee),
	}
}
