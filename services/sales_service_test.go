package services

import (
	"testing"
	"time"

	"salonpro-suite/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payHaircut(t *testing.T, f *fixture, at time.Time) *PaymentResult {
	t.Helper()
	appt := f.book(t, at, f.haircut)
	_, err := f.appointments.CheckIn(f.ctx, f.salon.ID, appt.ID)
	require.NoError(t, err)
	_, err = f.appointments.Bill(f.ctx, f.salon.ID, appt.ID, BillInput{Discount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	result, err := f.appointments.Pay(f.ctx, f.salon.ID, appt.ID, PayInput{PaymentMethod: "cash"})
	require.NoError(t, err)
	return result
}

func TestDailySalesAccumulate(t *testing.T) {
	f := newFixture(t)
	payHaircut(t, f, time.Now().Add(time.Hour))
	payHaircut(t, f, time.Now().Add(3*time.Hour))

	rows, err := f.sales.List(f.ctx, f.salon.ID, time.Now().AddDate(0, 0, -1), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].InvoiceCount)
	assert.Equal(t, 2, rows[0].PointsAwarded)
	decimalEqual(t, 50, rows[0].TotalRevenue)
	decimalEqual(t, 10, rows[0].Discounts)

	totals := Totals(rows)
	assert.Equal(t, 2, totals.InvoiceCount)
	decimalEqual(t, 60, totals.ServiceRevenue)
}

func TestTotals(t *testing.T) {
	rows := []models.DailySale{
		{Day: "2024-03-01", InvoiceCount: 2, TotalRevenue: decimal.NewFromInt(100), PointsAwarded: 3},
		{Day: "2024-03-02", InvoiceCount: 1, TotalRevenue: decimal.RequireFromString("20.50"), PointsAwarded: 1},
	}
	totals := Totals(rows)
	assert.Equal(t, 3, totals.InvoiceCount)
	assert.Equal(t, 4, totals.PointsAwarded)
	assert.True(t, decimal.RequireFromString("120.5").Equal(totals.TotalRevenue))
	assert.True(t, totals.ProductRevenue.IsZero())
}

func TestIncentives(t *testing.T) {
	f := newFixture(t)
	payHaircut(t, f, time.Now().Add(time.Hour))
	payHaircut(t, f, time.Now().Add(3*time.Hour))

	from, to := time.Now().AddDate(0, 0, -1), time.Now().Add(time.Hour)
	own, err := f.incentives.ForStylist(f.ctx, f.salon.ID, f.stylist.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, own.Appointments)
	decimalEqual(t, 60, own.ServiceRevenue)
	decimalEqual(t, 6, own.Total)

	summary, err := f.incentives.Summary(f.ctx, f.salon.ID, from, to)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "Ravi", summary[0].Name)
	assert.Equal(t, 2, summary[0].Appointments)
	decimalEqual(t, 6, summary[0].Total)
}
