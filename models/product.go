package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Base
	SalonID      uuid.UUID       `gorm:"type:uuid;index;not null;uniqueIndex:idx_salon_sku,priority:1" json:"salonId"`
	Name         string          `gorm:"not null" json:"name"`
	SKU          string          `gorm:"not null;uniqueIndex:idx_salon_sku,priority:2" json:"sku"`
	Unit         string          `gorm:"default:'pcs'" json:"unit"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	ReorderLevel int             `gorm:"not null;default:0" json:"reorderLevel"`
	IsActive     bool            `gorm:"default:true" json:"isActive"`
}

const (
	MovementProcurement = "procurement"
	MovementSale        = "sale"
	MovementReturn      = "return"
	MovementAdjustment  = "adjustment"
)

// StockMovement records every change to a product's stock.
type StockMovement struct {
	Base
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	ProductID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"productId"`
	Kind       string     `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity   int        `gorm:"not null" json:"quantity"`
	StockAfter int        `gorm:"not null" json:"stockAfter"`
	Reference  *uuid.UUID `gorm:"type:uuid;index" json:"reference"`
	Reason     string     `json:"reason"`
}
