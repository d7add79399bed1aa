package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StylistStatus string

const (
	StylistAvailable StylistStatus = "available"
	StylistBusy      StylistStatus = "busy"
	StylistOff       StylistStatus = "off"
)

type Stylist struct {
	Base
	SalonID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	Name      string     `gorm:"not null" json:"name"`
	Phone     string     `json:"phone"`
	Specialty string     `json:"specialty"`
	// CommissionRate is a percentage of service revenue.
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commissionRate"`
	Status         StylistStatus   `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	// Set only while Status is busy.
	CurrentAppointmentID *uuid.UUID `gorm:"type:uuid" json:"currentAppointmentId"`
	IsActive             bool       `gorm:"default:true" json:"isActive"`
}
