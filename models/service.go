package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	Base
	SalonID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"salonId"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int             `json:"duration"` // in minutes
	Category    string          `gorm:"default:'General'" json:"category"`
	IsActive    bool            `gorm:"default:true" json:"isActive"`
}
