package services

import (
	"context"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SalesService struct {
	db *gorm.DB
}

func NewSalesService(db *gorm.DB) *SalesService {
	return &SalesService{db: db}
}

// List returns the daily sale rows between from and to inclusive.
func (s *SalesService) List(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.DailySale, error) {
	var rows []models.DailySale
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND day BETWEEN ? AND ?", salonID, utils.DayKey(from), utils.DayKey(to)).
		Order("day ASC").Find(&rows).Error
	return rows, err
}

// SalesTotals sums a range of daily sales.
type SalesTotals struct {
	InvoiceCount   int             `json:"invoiceCount"`
	ServiceRevenue decimal.Decimal `json:"serviceRevenue"`
	ProductRevenue decimal.Decimal `json:"productRevenue"`
	Discounts      decimal.Decimal `json:"discounts"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PointsAwarded  int             `json:"pointsAwarded"`
}

func Totals(rows []models.DailySale) SalesTotals {
	var t SalesTotals
	for _, r := range rows {
		t.InvoiceCount += r.InvoiceCount
		t.ServiceRevenue = t.ServiceRevenue.Add(r.ServiceRevenue)
		t.ProductRevenue = t.ProductRevenue.Add(r.ProductRevenue)
		t.Discounts = t.Discounts.Add(r.Discounts)
		t.TotalRevenue = t.TotalRevenue.Add(r.TotalRevenue)
		t.PointsAwarded += r.PointsAwarded
	}
	return t
}

// record adds a paid invoice to its day's sale row, creating the row on the
// first payment of the day.
func (s *SalesService) record(tx *gorm.DB, invoice *models.Invoice, day time.Time, points int) error {
	services, products := invoice.Revenue()
	discounts := invoice.Discount.Add(invoice.LoyaltyDiscount)
	row := models.DailySale{
		SalonID:        invoice.SalonID,
		Day:            utils.DayKey(day),
		InvoiceCount:   1,
		ServiceRevenue: services,
		ProductRevenue: products,
		Discounts:      discounts,
		TotalRevenue:   invoice.Total,
		PointsAwarded:  points,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "salon_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"invoice_count":   gorm.Expr("daily_sales.invoice_count + ?", 1),
			"service_revenue": gorm.Expr("daily_sales.service_revenue + ?", services),
			"product_revenue": gorm.Expr("daily_sales.product_revenue + ?", products),
			"discounts":       gorm.Expr("daily_sales.discounts + ?", discounts),
			"total_revenue":   gorm.Expr("daily_sales.total_revenue + ?", invoice.Total),
			"points_awarded":  gorm.Expr("daily_sales.points_awarded + ?", points),
			"updated_at":      time.Now(),
		}),
	}).Create(&row).Error
}
