package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base replaces gorm.Model for tables keyed by UUID.
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Initialize UUID before creating
func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// All lists every model the application migrates, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Salon{},
		&Permission{},
		&Role{},
		&User{},
		&Customer{},
		&Stylist{},
		&Service{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&Appointment{},
		&AppointmentItem{},
		&LoyaltyTransaction{},
		&Procurement{},
		&ProcurementItem{},
		&StockMovement{},
		&DailySale{},
		&Incentive{},
		&ReminderTemplate{},
		&ReminderLog{},
	}
}
