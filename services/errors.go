package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("invalid input")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStylistBusy        = errors.New("stylist is busy")
	ErrStylistUnavailable = errors.New("stylist is not available")
	ErrScheduleConflict   = errors.New("stylist already has an appointment at that time")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrConflict           = errors.New("record was modified concurrently")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// notFound maps gorm.ErrRecordNotFound to ErrNotFound, naming the entity.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entityError{entity: entity, err: ErrNotFound}
	}
	return err
}

type entityError struct {
	entity string
	err    error
}

func (e *entityError) Error() string { return e.entity + " " + e.err.Error() }
func (e *entityError) Unwrap() error { return e.err }
