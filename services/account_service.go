package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AccountService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAccountService(db *gorm.DB, log *zap.Logger) *AccountService {
	return &AccountService{db: db, log: log}
}

type RegisterInput struct {
	Email        string       `json:"email" binding:"required,email"`
	Phone        string       `json:"phone" binding:"required,phone"`
	Name         string       `json:"name" binding:"required"`
	Password     string       `json:"password" binding:"required,min=8"`
	SalonName    string       `json:"salonName" binding:"required"`
	SalonAddress string       `json:"salonAddress"`
	WorkingHours models.JSONB `json:"workingHours"`
}

// Register creates a salon with its system roles, default reminder templates
// and the owner account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = utils.CleanPhone(in.Phone)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ? OR phone = ?", in.Email, in.Phone).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("email or phone %w", ErrDuplicate)
		}

		salon := models.Salon{
			Name:                 in.SalonName,
			Address:              in.SalonAddress,
			Phone:                in.Phone,
			WorkingHours:         in.WorkingHours,
			BirthdayReminders:    true,
			AnniversaryReminders: true,
			AppointmentReminders: true,
			IsActive:             true,
			LoyaltyPointValue:    decimal.NewFromInt(1),
		}
		if salon.WorkingHours == nil {
			salon.WorkingHours = models.DefaultWorkingHours()
		}
		if err := tx.Create(&salon).Error; err != nil {
			return err
		}

		roles, err := createSystemRoles(tx, salon.ID)
		if err != nil {
			return err
		}
		if err := createDefaultReminderTemplates(tx, salon.ID); err != nil {
			return err
		}

		user = models.User{
			Email:    in.Email,
			Phone:    in.Phone,
			Name:     in.Name,
			Password: in.Password, // Will be hashed in BeforeCreate hook
			SalonID:  salon.ID,
			RoleID:   roles[models.RoleOwner].ID,
			IsActive: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("email %w", ErrDuplicate)
			}
			return err
		}
		user.Role = roles[models.RoleOwner]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("salon registered", zap.String("salon_id", user.SalonID.String()), zap.String("owner", user.Email))
	return &user, nil
}

// Authenticate checks credentials by email or phone and stamps the last login.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role.Permissions").
		Where("email = ? OR phone = ?", strings.ToLower(identifier), utils.CleanPhone(identifier)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		s.log.Warn("failed to stamp last login", zap.Error(err))
	}
	user.LastLogin = &now
	return &user, nil
}

// Profile loads a user with role and permissions.
func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role.Permissions").Preload("Salon").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func createSystemRoles(tx *gorm.DB, salonID uuid.UUID) (map[string]models.Role, error) {
	roles := make(map[string]models.Role, len(models.DefaultRolePermissions))
	for _, name := range []string{models.RoleOwner, models.RoleManager, models.RoleReceptionist, models.RoleStylist} {
		var perms []models.Permission
		if err := tx.Where("code IN ?", models.DefaultRolePermissions[name]).Find(&perms).Error; err != nil {
			return nil, err
		}
		role := models.Role{
			SalonID:     salonID,
			Name:        name,
			Description: "System role",
			IsSystem:    true,
			Permissions: perms,
		}
		if err := tx.Create(&role).Error; err != nil {
			return nil, err
		}
		roles[name] = role
	}
	return roles, nil
}

func createDefaultReminderTemplates(tx *gorm.DB, salonID uuid.UUID) error {
	defaultTemplates := []models.ReminderTemplate{
		{
			SalonID:  salonID,
			Type:     models.ReminderBirthday,
			Message:  "Hi [CustomerName], [SalonName] wishes you a very happy birthday! Enjoy 20% off on your next visit this month!",
			IsActive: true,
		},
		{
			SalonID:  salonID,
			Type:     models.ReminderAnniversary,
			Message:  "Hi [CustomerName], happy anniversary from [SalonName]! Thank you for being our valued customer. Here's 15% off your next service!",
			IsActive: true,
		},
		{
			SalonID:  salonID,
			Type:     models.ReminderAppointment,
			Message:  "Hi [CustomerName], this is a reminder of your appointment at [SalonName] with [Stylist] on [Time].",
			IsActive: true,
		},
	}
	return tx.Create(&defaultTemplates).Error
}
