package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySale aggregates paid invoices per salon and business day.
type DailySale struct {
	Base
	SalonID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_salon_day,priority:1" json:"salonId"`
	Day            string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_salon_day,priority:2" json:"day"` // YYYY-MM-DD
	InvoiceCount   int             `gorm:"not null;default:0" json:"invoiceCount"`
	ServiceRevenue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"serviceRevenue"`
	ProductRevenue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"productRevenue"`
	Discounts      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discounts"`
	TotalRevenue   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalRevenue"`
	PointsAwarded  int             `gorm:"not null;default:0" json:"pointsAwarded"`
}
