package services

import (
	"context"
	"testing"

	"salonpro-suite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func registerInput() RegisterInput {
	return RegisterInput{
		Email:     "Owner@Glow.test ",
		Phone:     "+91 98000-00009",
		Name:      "Meera",
		Password:  "s3cret-pass",
		SalonName: "Glow Studio",
	}
}

func TestRegisterCreatesSalonWithDefaults(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db, zap.NewNop())
	ctx := context.Background()

	user, err := accounts.Register(ctx, registerInput())
	require.NoError(t, err)
	assert.Equal(t, "owner@glow.test", user.Email)
	assert.Equal(t, "+919800000009", user.Phone)
	assert.Equal(t, models.RoleOwner, user.Role.Name)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Where("salon_id = ? AND is_system = ?", user.SalonID, true).Count(&roles).Error)
	assert.EqualValues(t, 4, roles)

	var templates int64
	require.NoError(t, db.Model(&models.ReminderTemplate{}).Where("salon_id = ?", user.SalonID).Count(&templates).Error)
	assert.EqualValues(t, 3, templates)

	profile, err := accounts.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Glow Studio", profile.Salon.Name)
	assert.Equal(t, []string{models.PermAll}, profile.Role.Codes())

	_, err = accounts.Register(ctx, registerInput())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db, zap.NewNop())
	ctx := context.Background()
	_, err := accounts.Register(ctx, registerInput())
	require.NoError(t, err)

	user, err := accounts.Authenticate(ctx, "OWNER@glow.test", "s3cret-pass")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
	assert.NotEmpty(t, user.Role.Permissions)

	_, err = accounts.Authenticate(ctx, "+91 98000 00009", "s3cret-pass")
	require.NoError(t, err)

	_, err = accounts.Authenticate(ctx, "owner@glow.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Authenticate(ctx, "nobody@glow.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
