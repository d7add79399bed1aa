package services

import (
	"context"
	"testing"
	"time"

	"salonpro-suite/config"
	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection keeps the in-memory database alive for the whole test.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	ctx context.Context
	db  *gorm.DB

	salon    models.Salon
	customer models.Customer
	stylist  models.Stylist
	haircut  models.Service
	color    models.Service
	shampoo  models.Product

	loyalty      *LoyaltyService
	inventory    *InventoryService
	sales        *SalesService
	incentives   *IncentiveService
	appointments *AppointmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	f := &fixture{ctx: context.Background(), db: db}

	f.salon = models.Salon{Name: "Glow Studio", Phone: "+919800000000", LoyaltyPointValue: decimal.NewFromInt(1)}
	require.NoError(t, db.Create(&f.salon).Error)

	f.customer = models.Customer{SalonID: f.salon.ID, Name: "Asha", Phone: "+919800000001"}
	require.NoError(t, db.Create(&f.customer).Error)

	f.stylist = models.Stylist{
		SalonID:        f.salon.ID,
		Name:           "Ravi",
		CommissionRate: decimal.NewFromInt(10),
		Status:         models.StylistAvailable,
	}
	require.NoError(t, db.Create(&f.stylist).Error)

	f.haircut = models.Service{SalonID: f.salon.ID, Name: "Haircut", Price: decimal.NewFromInt(30), Duration: 30}
	f.color = models.Service{SalonID: f.salon.ID, Name: "Hair Color", Price: decimal.NewFromInt(50), Duration: 60}
	require.NoError(t, db.Create(&f.haircut).Error)
	require.NoError(t, db.Create(&f.color).Error)

	f.shampoo = models.Product{SalonID: f.salon.ID, Name: "Shampoo", SKU: "SHMP-01", Price: decimal.NewFromInt(12), Stock: 5, ReorderLevel: 2}
	require.NoError(t, db.Create(&f.shampoo).Error)

	f.loyalty = NewLoyaltyService(db, log)
	f.inventory = NewInventoryService(db, log)
	f.sales = NewSalesService(db)
	f.incentives = NewIncentiveService(db)
	f.appointments = NewAppointmentService(db, log, f.loyalty, f.inventory, f.sales, f.incentives)
	return f
}

// book schedules an appointment for the fixture customer and stylist.
func (f *fixture) book(t *testing.T, at time.Time, services ...models.Service) *models.Appointment {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	appt, err := f.appointments.Create(f.ctx, CreateAppointmentInput{
		SalonID:     f.salon.ID,
		CustomerID:  f.customer.ID,
		StylistID:   f.stylist.ID,
		ScheduledAt: at,
		ServiceIDs:  ids,
	})
	require.NoError(t, err)
	return appt
}

func (f *fixture) reload(t *testing.T, dest interface{}, id uuid.UUID) {
	t.Helper()
	require.NoError(t, f.db.First(dest, "id = ?", id).Error)
}

func (f *fixture) setPoints(t *testing.T, points int) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.customer.ID).
		Update("loyalty_points", points).Error)
}

func decimalEqual(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}
