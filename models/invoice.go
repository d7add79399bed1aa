package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentVoid   = "void"
)

const (
	ItemService = "service"
	ItemProduct = "product"
)

type Invoice struct {
	Base
	SalonID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	CreatedByUserID uuid.UUID  `gorm:"type:uuid;index" json:"createdByUserId"`
	InvoiceNumber   string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	StylistID       uuid.UUID  `gorm:"type:uuid;index" json:"stylistId"`
	AppointmentID   *uuid.UUID `gorm:"type:uuid;index" json:"appointmentId"`
	InvoiceDate     time.Time  `gorm:"index" json:"invoiceDate"`

	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	LoyaltyDiscount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"loyaltyDiscount"`
	RedeemedPoints  int             `gorm:"not null;default:0" json:"redeemedPoints"`
	Tax             decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax"` // percent
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	PaymentStatus string          `gorm:"type:varchar(20);index;not null;default:'unpaid'" json:"paymentStatus"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paidAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	PaidAt        *time.Time      `json:"paidAt"`
	Notes         string          `json:"notes"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

// ServiceLines counts the service line items on the invoice.
func (inv Invoice) ServiceLines() int {
	n := 0
	for _, item := range inv.Items {
		if item.Kind == ItemService {
			n++
		}
	}
	return n
}

// Revenue splits the invoice subtotal into service and product revenue.
func (inv Invoice) Revenue() (services, products decimal.Decimal) {
	for _, item := range inv.Items {
		switch item.Kind {
		case ItemService:
			services = services.Add(item.TotalPrice)
		case ItemProduct:
			products = products.Add(item.TotalPrice)
		}
	}
	return services, products
}

type InvoiceItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoiceId"`
	Kind       string          `gorm:"type:varchar(20);not null" json:"kind"`
	ServiceID  *uuid.UUID      `gorm:"type:uuid;index" json:"serviceId,omitempty"`
	ProductID  *uuid.UUID      `gorm:"type:uuid;index" json:"productId,omitempty"`
	Name       string          `gorm:"not null" json:"name"`
	Quantity   int             `gorm:"default:1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
