package services

import (
	"context"
	"time"

	"salonpro-suite/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IncentiveService struct {
	db *gorm.DB
}

func NewIncentiveService(db *gorm.DB) *IncentiveService {
	return &IncentiveService{db: db}
}

// StylistIncentives lists a stylist's incentives over a period with totals.
type StylistIncentives struct {
	StylistID      uuid.UUID          `json:"stylistId"`
	Appointments   int                `json:"appointments"`
	ServiceRevenue decimal.Decimal    `json:"serviceRevenue"`
	Total          decimal.Decimal    `json:"total"`
	Entries        []models.Incentive `json:"entries"`
}

func (s *IncentiveService) ForStylist(ctx context.Context, salonID, stylistID uuid.UUID, from, to time.Time) (*StylistIncentives, error) {
	var stylist models.Stylist
	if err := s.db.WithContext(ctx).Where("salon_id = ? AND id = ?", salonID, stylistID).
		First(&stylist).Error; err != nil {
		return nil, notFound(err, "stylist")
	}

	var entries []models.Incentive
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND stylist_id = ? AND earned_at BETWEEN ? AND ?", salonID, stylistID, from, to).
		Order("earned_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	out := &StylistIncentives{StylistID: stylistID, Entries: entries}
	for _, e := range entries {
		out.Appointments++
		out.ServiceRevenue = out.ServiceRevenue.Add(e.ServiceRevenue)
		out.Total = out.Total.Add(e.Amount)
	}
	return out, nil
}

// IncentiveSummary is one stylist's row in the salon-wide summary.
type IncentiveSummary struct {
	StylistID      uuid.UUID       `json:"stylistId"`
	Name           string          `json:"name"`
	Appointments   int             `json:"appointments"`
	ServiceRevenue decimal.Decimal `json:"serviceRevenue"`
	Total          decimal.Decimal `json:"total"`
}

func (s *IncentiveService) Summary(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]IncentiveSummary, error) {
	var rows []IncentiveSummary
	err := s.db.WithContext(ctx).Table("incentives").
		Select("incentives.stylist_id, stylists.name, COUNT(incentives.id) as appointments, "+
			"SUM(incentives.service_revenue) as service_revenue, SUM(incentives.amount) as total").
		Joins("JOIN stylists ON stylists.id = incentives.stylist_id").
		Where("incentives.salon_id = ? AND incentives.earned_at BETWEEN ? AND ? AND incentives.deleted_at IS NULL", salonID, from, to).
		Group("incentives.stylist_id, stylists.name").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// record books the stylist's commission on the service revenue of a paid invoice.
func (s *IncentiveService) record(tx *gorm.DB, stylist *models.Stylist, appointmentID uuid.UUID, invoice *models.Invoice, earnedAt time.Time) (*models.Incentive, error) {
	serviceRevenue, _ := invoice.Revenue()
	amount := serviceRevenue.Mul(stylist.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
	incentive := &models.Incentive{
		SalonID:        invoice.SalonID,
		StylistID:      stylist.ID,
		AppointmentID:  appointmentID,
		InvoiceID:      invoice.ID,
		ServiceRevenue: serviceRevenue,
		CommissionRate: stylist.CommissionRate,
		Amount:         amount,
		EarnedAt:       earnedAt,
	}
	if err := tx.Create(incentive).Error; err != nil {
		return nil, err
	}
	return incentive, nil
}
