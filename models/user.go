package models

import (
	"time"

	"salonpro-suite/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Phone    string `gorm:"index" json:"phone"`

	SalonID uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	RoleID  uuid.UUID `gorm:"type:uuid;index;not null" json:"roleId"`

	Salon Salon `gorm:"foreignKey:SalonID" json:"-"`
	Role  Role  `gorm:"foreignKey:RoleID" json:"role"`

	LastLogin *time.Time `json:"lastLogin"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
}

// Hash the password on insert
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if err = u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
