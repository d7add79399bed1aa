package services

import (
	"testing"

	"salonpro-suite/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveProcurement(t *testing.T) {
	f := newFixture(t)
	conditioner := models.Product{SalonID: f.salon.ID, Name: "Conditioner", SKU: "COND-01", Price: decimal.NewFromInt(15)}
	require.NoError(t, f.db.Create(&conditioner).Error)

	p, err := f.inventory.Receive(f.ctx, ProcurementInput{
		SalonID:  f.salon.ID,
		Supplier: "Beauty Wholesale",
		Items: []ProcurementItemInput{
			{ProductID: f.shampoo.ID, Quantity: 10, UnitCost: decimal.RequireFromString("4.50")},
			{ProductID: conditioner.ID, Quantity: 4, UnitCost: decimal.NewFromInt(6)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, p.Items, 2)
	decimalEqual(t, 69, p.TotalCost)

	var product models.Product
	f.reload(t, &product, f.shampoo.ID)
	assert.Equal(t, 15, product.Stock)
	assert.True(t, decimal.RequireFromString("4.5").Equal(product.Cost))

	movements, err := f.inventory.Movements(f.ctx, f.salon.ID, f.shampoo.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementProcurement, movements[0].Kind)
	assert.Equal(t, 10, movements[0].Quantity)
	assert.Equal(t, 15, movements[0].StockAfter)

	got, err := f.inventory.GetProcurement(f.ctx, f.salon.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beauty Wholesale", got.Supplier)
}

func TestReceiveProcurementRollsBackOnUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.Receive(f.ctx, ProcurementInput{
		SalonID:  f.salon.ID,
		Supplier: "Beauty Wholesale",
		Items: []ProcurementItemInput{
			{ProductID: f.shampoo.ID, Quantity: 10},
			{ProductID: f.haircut.ID, Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ErrNotFound)

	var product models.Product
	f.reload(t, &product, f.shampoo.ID)
	assert.Equal(t, 5, product.Stock)
}

func TestAdjustStock(t *testing.T) {
	f := newFixture(t)

	product, err := f.inventory.AdjustStock(f.ctx, f.salon.ID, f.shampoo.ID, -3, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 2, product.Stock)

	_, err = f.inventory.AdjustStock(f.ctx, f.salon.ID, f.shampoo.ID, -3, "damaged")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.inventory.AdjustStock(f.ctx, f.salon.ID, f.shampoo.ID, 0, "noop")
	assert.ErrorIs(t, err, ErrValidation)

	low, err := f.inventory.LowStock(f.ctx, f.salon.ID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, f.shampoo.ID, low[0].ID)
}
