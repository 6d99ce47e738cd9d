package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hulame/rental-service/internal/domain"
)

func TestRentalDays_InclusiveOfBothEnds(t *testing.T) {
	start := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, domain.RentalDays(start, start))
	assert.Equal(t, 3, domain.RentalDays(start, start.AddDate(0, 0, 2)))
	assert.Equal(t, 2, domain.RentalDays(start, time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)))
}

func TestDirectRentalTotal(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	total := domain.DirectRentalTotal(decimal.NewFromInt(100), start, end)

	assert.True(t, total.Equal(decimal.NewFromInt(300)), total.String())
}

func TestSumCheckout_AddsFeeOnce(t *testing.T) {
	prices := []decimal.Decimal{
		decimal.RequireFromString("150.50"),
		decimal.RequireFromString("49.50"),
	}

	totals := domain.SumCheckout(prices, domain.DefaultPlatformFee)

	assert.Equal(t, "200.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", totals.PlatformFee.StringFixed(2))
	assert.Equal(t, "210.00", totals.Total.StringFixed(2))
}

func TestDateOnly(t *testing.T) {
	got := domain.DateOnly(time.Date(2026, 7, 9, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 7, 9, 0, 0, 0, 0, time.UTC), got)
}
