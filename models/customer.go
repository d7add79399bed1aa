package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	Base
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_salon_phone,priority:1" json:"salonId"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index" json:"createdByUserId"`

	Name          string          `gorm:"not null" json:"name"`
	Phone         string          `gorm:"not null;uniqueIndex:idx_salon_phone,priority:2" json:"phone"`
	Email         string          `json:"email"`
	Birthday      *time.Time      `json:"birthday"`
	Anniversary   *time.Time      `json:"anniversary"`
	Notes         string          `json:"notes"`
	LoyaltyPoints int             `gorm:"not null;default:0" json:"loyaltyPoints"`
	TotalVisits   int             `gorm:"default:0" json:"totalVisits"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"totalSpent"`
	LastVisit     *time.Time      `json:"lastVisit"`
	IsActive      bool            `gorm:"default:true" json:"isActive"`
}
