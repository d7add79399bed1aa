package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled: {StatusCheckedIn, StatusCancelled},
		StatusCheckedIn: {StatusBilled, StatusCancelled},
		StatusBilled:    {StatusPaid, StatusCancelled},
	}
	all := []AppointmentStatus{StatusScheduled, StatusCheckedIn, StatusBilled, StatusPaid, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusBilled.Occupying())
	assert.False(t, StatusPaid.Occupying())
	assert.Equal(t, []AppointmentStatus{StatusScheduled, StatusCheckedIn, StatusBilled}, OccupyingStatuses())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AppointmentStatus("done").Valid())

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	appt := Appointment{ScheduledAt: at, Duration: 45}
	assert.Equal(t, at.Add(45*time.Minute), appt.EndsAt())
}

func TestInvoiceServiceLinesAndRevenue(t *testing.T) {
	inv := Invoice{Items: []InvoiceItem{
		{Kind: ItemService, Quantity: 2, TotalPrice: decimal.NewFromInt(60)},
		{Kind: ItemService, Quantity: 1, TotalPrice: decimal.NewFromInt(50)},
		{Kind: ItemProduct, Quantity: 3, TotalPrice: decimal.NewFromInt(36)},
	}}
	assert.Equal(t, 2, inv.ServiceLines())

	services, products := inv.Revenue()
	assert.True(t, decimal.NewFromInt(110).Equal(services))
	assert.True(t, decimal.NewFromInt(36).Equal(products))
}

func TestJSONBRoundTrip(t *testing.T) {
	hours := DefaultWorkingHours()
	v, err := hours.Value()
	require.NoError(t, err)

	var scanned JSONB
	require.NoError(t, scanned.Scan(v))
	assert.Len(t, scanned, 7)

	var empty JSONB
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Error(t, empty.Scan(42))
}
