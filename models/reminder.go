package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderBirthday    = "birthday"
	ReminderAnniversary = "anniversary"
	ReminderAppointment = "appointment"
)

type ReminderTemplate struct {
	Base
	SalonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salon_reminder_type,priority:1" json:"salonId"`
	Type     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_salon_reminder_type,priority:2" json:"type"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	IsActive bool      `gorm:"default:true" json:"isActive"`
}

type ReminderLog struct {
	Base
	SalonID      uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	TemplateID   uuid.UUID `gorm:"type:uuid;index;not null" json:"templateId"`
	Type         string    `gorm:"type:varchar(20)" json:"type"` // birthday, anniversary, appointment
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt       time.Time `json:"sentAt"`
}
