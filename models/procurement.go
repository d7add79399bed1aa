package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Procurement struct {
	Base
	SalonID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"salonId"`
	CreatedByUserID uuid.UUID       `gorm:"type:uuid;index" json:"createdByUserId"`
	Supplier        string          `gorm:"not null" json:"supplier"`
	Reference       string          `json:"reference"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalCost"`
	ReceivedAt      time.Time       `gorm:"index" json:"receivedAt"`
	Notes           string          `json:"notes"`

	Items []ProcurementItem `gorm:"foreignKey:ProcurementID" json:"items"`
}

type ProcurementItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProcurementID uuid.UUID       `gorm:"type:uuid;index;not null" json:"procurementId"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"productId"`
	ProductName   string          `json:"productName"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitCost"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalCost"`
}

func (i *ProcurementItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
