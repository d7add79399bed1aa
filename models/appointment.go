package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCheckedIn AppointmentStatus = "checked_in"
	StatusBilled    AppointmentStatus = "billed"
	StatusPaid      AppointmentStatus = "paid"
	StatusCancelled AppointmentStatus = "cancelled"
)

var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusBilled, StatusCancelled},
	StatusBilled:    {StatusPaid, StatusCancelled},
}

// CanTransitionTo reports whether a transition from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Occupying reports whether an appointment in this status blocks its stylist's calendar.
func (s AppointmentStatus) Occupying() bool {
	return s == StatusScheduled || s == StatusCheckedIn || s == StatusBilled
}

// OccupyingStatuses lists every status for which Occupying is true.
func OccupyingStatuses() []AppointmentStatus {
	var out []AppointmentStatus
	for _, s := range []AppointmentStatus{StatusScheduled, StatusCheckedIn, StatusBilled, StatusPaid, StatusCancelled} {
		if s.Occupying() {
			out = append(out, s)
		}
	}
	return out
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusBilled, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	SalonID         uuid.UUID         `gorm:"type:uuid;index;not null" json:"salonId"`
	CreatedByUserID uuid.UUID         `gorm:"type:uuid;index" json:"createdByUserId"`
	CustomerID      uuid.UUID         `gorm:"type:uuid;index;not null" json:"customerId"`
	StylistID       uuid.UUID         `gorm:"type:uuid;index;not null" json:"stylistId"`
	ScheduledAt     time.Time         `gorm:"index;not null" json:"scheduledAt"`
	Duration        int               `gorm:"not null" json:"duration"` // in minutes
	Status          AppointmentStatus `gorm:"type:varchar(20);index;not null;default:'scheduled'" json:"status"`
	Notes           string            `json:"notes"`
	CancelReason    string            `json:"cancelReason,omitempty"`

	CheckedInAt *time.Time `json:"checkedInAt"`
	BilledAt    *time.Time `json:"billedAt"`
	PaidAt      *time.Time `json:"paidAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
	RemindedAt  *time.Time `json:"remindedAt"`

	InvoiceID *uuid.UUID `gorm:"type:uuid" json:"invoiceId"`

	Customer Customer          `gorm:"foreignKey:CustomerID" json:"customer"`
	Stylist  Stylist           `gorm:"foreignKey:StylistID" json:"stylist"`
	Invoice  *Invoice          `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	Items    []AppointmentItem `gorm:"foreignKey:AppointmentID" json:"items"`
}

// EndsAt is the scheduled end of the appointment.
func (a Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.Duration) * time.Minute)
}

// AppointmentItem is a service booked on an appointment, priced when booked.
type AppointmentItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID       `gorm:"type:uuid;index;not null" json:"appointmentId"`
	ServiceID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"serviceId"`
	ServiceName   string          `gorm:"not null" json:"serviceName"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration      int             `json:"duration"`
}

func (i *AppointmentItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
