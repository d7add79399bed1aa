package services

import (
	"context"
	"fmt"

	"salonpro-suite/metrics"
	"salonpro-suite/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoyaltyService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLoyaltyService(db *gorm.DB, log *zap.Logger) *LoyaltyService {
	return &LoyaltyService{db: db, log: log}
}

// LoyaltyAccount is a customer's balance with its most recent ledger entries.
type LoyaltyAccount struct {
	CustomerID uuid.UUID                   `json:"customerId"`
	Balance    int                         `json:"balance"`
	Entries    []models.LoyaltyTransaction `json:"entries"`
}

// Account returns the balance and up to limit ledger entries, newest first.
func (s *LoyaltyService) Account(ctx context.Context, salonID, customerID uuid.UUID, limit int) (*LoyaltyAccount, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("salon_id = ? AND id = ?", salonID, customerID).
		First(&customer).Error; err != nil {
		return nil, notFound(err, "customer")
	}

	var entries []models.LoyaltyTransaction
	if err := s.db.WithContext(ctx).Where("salon_id = ? AND customer_id = ?", salonID, customerID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load loyalty ledger: %w", err)
	}

	return &LoyaltyAccount{CustomerID: customer.ID, Balance: customer.LoyaltyPoints, Entries: entries}, nil
}

// Adjust applies a manual signed correction to a customer's balance.
func (s *LoyaltyService) Adjust(ctx context.Context, salonID, customerID uuid.UUID, points int, note string) (*models.LoyaltyTransaction, error) {
	if points == 0 {
		return nil, fmt.Errorf("%w: points must not be zero", ErrValidation)
	}
	var entry *models.LoyaltyTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.apply(tx, salonID, customerID, points, models.LoyaltyAdjust, nil, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("loyalty points adjusted",
		zap.String("customer_id", customerID.String()),
		zap.Int("points", points),
		zap.Int("balance", entry.BalanceAfter))
	return entry, nil
}

// apply moves points on the customer balance and appends the ledger entry.
// Debits are guarded in the UPDATE so the balance can never go negative.
func (s *LoyaltyService) apply(tx *gorm.DB, salonID, customerID uuid.UUID, points int, kind string, appointmentID *uuid.UUID, note string) (*models.LoyaltyTransaction, error) {
	q := tx.Model(&models.Customer{}).Where("id = ? AND salon_id = ?", customerID, salonID)
	if points < 0 {
		q = q.Where("loyalty_points >= ?", -points)
	}
	res := q.Update("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update loyalty balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Customer{}).Where("id = ? AND salon_id = ?", customerID, salonID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &entityError{entity: "customer", err: ErrNotFound}
		}
		return nil, fmt.Errorf("%w: cannot deduct %d points", ErrInsufficientPoints, -points)
	}

	var balance int
	if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).
		Select("loyalty_points").Scan(&balance).Error; err != nil {
		return nil, err
	}

	entry := &models.LoyaltyTransaction{
		SalonID:       salonID,
		CustomerID:    customerID,
		AppointmentID: appointmentID,
		Type:          kind,
		Points:        points,
		BalanceAfter:  balance,
		Note:          note,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record loyalty transaction: %w", err)
	}

	abs := points
	if abs < 0 {
		abs = -abs
	}
	metrics.LoyaltyPointsTotal.WithLabelValues(kind).Add(float64(abs))
	return entry, nil
}
