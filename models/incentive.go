package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Incentive is the commission a stylist earned on one paid appointment.
type Incentive struct {
	Base
	SalonID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"salonId"`
	StylistID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"stylistId"`
	AppointmentID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"appointmentId"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoiceId"`
	ServiceRevenue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"serviceRevenue"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commissionRate"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	EarnedAt       time.Time       `gorm:"index;not null" json:"earnedAt"`
}
