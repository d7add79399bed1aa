package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

type Salon struct {
	Base
	Name                  string `gorm:"not null" json:"name"`
	Address               string `json:"address"`
	Phone                 string `json:"phone"`
	WorkingHours          JSONB  `gorm:"type:jsonb" json:"workingHours"`
	BirthdayReminders     bool   `gorm:"default:true" json:"birthdayReminders"`
	AnniversaryReminders  bool   `gorm:"default:true" json:"anniversaryReminders"`
	AppointmentReminders  bool   `gorm:"default:true" json:"appointmentReminders"`
	WhatsAppNotifications bool   `gorm:"default:false" json:"whatsAppNotifications"`
	SMSNotifications      bool   `gorm:"default:false" json:"smsNotifications"`
	IsActive              bool   `gorm:"default:true" json:"isActive"`

	// LoyaltyPointValue is the discount one redeemed point is worth.
	LoyaltyPointValue decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1" json:"loyaltyPointValue"`
}

// DefaultWorkingHours is applied to salons registered without explicit hours.
func DefaultWorkingHours() JSONB {
	return JSONB{
		"monday":    map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"tuesday":   map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"wednesday": map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"thursday":  map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"friday":    map[string]interface{}{"open": "09:00", "close": "20:00", "closed": false},
		"saturday":  map[string]interface{}{"open": "09:00", "close": "21:00", "closed": false},
		"sunday":    map[string]interface{}{"open": "10:00", "close": "19:00", "closed": true},
	}
}

// Custom JSONB type for working hours
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*j = JSONB{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, j)
}
