package models

import (
	"github.com/google/uuid"
)

const (
	LoyaltyEarn   = "earn"
	LoyaltyRedeem = "redeem"
	LoyaltyRefund = "refund"
	LoyaltyAdjust = "adjust"
)

// LoyaltyTransaction is one entry of a customer's points ledger. Points is
// signed; BalanceAfter is the customer balance once the entry is applied.
type LoyaltyTransaction struct {
	Base
	SalonID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointmentId"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type"`
	Points        int        `gorm:"not null" json:"points"`
	BalanceAfter  int        `gorm:"not null" json:"balanceAfter"`
	Note          string     `json:"note"`
}
