// controllers/report.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalCustomers   int     `json:"totalCustomers"`
	TotalInvoices    int     `json:"totalInvoices"`
	AvgMonthlyVisits float64 `json:"avgMonthlyVisits"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
}

type revenuePeriod struct {
	start, end time.Time
	out        *float64
}

// GetReportAnalytics returns revenue with growth for the current month,
// quarter and year, plus this month's top services and customers. Only
// paid invoices count.
func (h *Handler) GetReportAnalytics(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	loc := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, loc)
	lastOfMonth := utils.EndOfDay(firstOfMonth.AddDate(0, 1, -1))
	quarterStart := QuarterStart(now)
	firstOfYear := time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc)

	var (
		monthRev, lastMonthRev     float64
		quarterRev, lastQuarterRev float64
		yearRev, lastYearRev       float64
	)
	periods := []revenuePeriod{
		{firstOfMonth, lastOfMonth, &monthRev},
		{firstOfMonth.AddDate(0, -1, 0), firstOfMonth.Add(-time.Nanosecond), &lastMonthRev},
		{quarterStart, quarterStart.AddDate(0, 3, 0).Add(-time.Nanosecond), &quarterRev},
		{quarterStart.AddDate(0, -3, 0), quarterStart.Add(-time.Nanosecond), &lastQuarterRev},
		{firstOfYear, firstOfYear.AddDate(1, 0, 0).Add(-time.Nanosecond), &yearRev},
		{firstOfYear.AddDate(-1, 0, 0), firstOfYear.Add(-time.Nanosecond), &lastYearRev},
	}
	for _, p := range periods {
		rev, err := h.revenue(ctx, salonID, p.start, p.end)
		if err != nil {
			h.respondServiceError(c, err, "Failed to get revenue")
			return
		}
		*p.out = rev
	}

	topServices, err := h.topServices(ctx, salonID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get top services")
		return
	}

	topCustomers, err := h.topCustomers(ctx, salonID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get top customers")
		return
	}

	quickStats, err := h.quickStatistics(ctx, salonID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get quick statistics")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Report retrieved", AnalyticsSummary{
		CurrentMonthRevenue:   monthRev,
		MonthGrowth:           GrowthPercentage(monthRev, lastMonthRev),
		CurrentQuarterRevenue: quarterRev,
		QuarterGrowth:         GrowthPercentage(quarterRev, lastQuarterRev),
		CurrentYearRevenue:    yearRev,
		YearGrowth:            GrowthPercentage(yearRev, lastYearRev),
		TopServices:           topServices,
		TopCustomers:          topCustomers,
		QuickStats:            quickStats,
	})
}

func (h *Handler) revenue(ctx context.Context, salonID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := h.DB.WithContext(ctx).Model(&models.Invoice{}).
		Where("salon_id = ? AND payment_status = ? AND invoice_date BETWEEN ? AND ?", salonID, models.PaymentPaid, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

// QuarterStart is the first instant of date's calendar quarter.
func QuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

// GrowthPercentage compares current to previous; growth from zero counts as 100%.
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (h *Handler) topServices(ctx context.Context, salonID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	services := []ServiceSummary{}
	err := h.DB.WithContext(ctx).Table("invoice_items").
		Select("invoice_items.name, SUM(invoice_items.quantity) as count, SUM(invoice_items.total_price) as revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.salon_id = ? AND invoices.payment_status = ? AND invoices.invoice_date BETWEEN ? AND ? AND invoices.deleted_at IS NULL AND invoice_items.kind = ?",
			salonID, models.PaymentPaid, start, end, models.ItemService).
		Group("invoice_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error
	return services, err
}

func (h *Handler) topCustomers(ctx context.Context, salonID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	customers := []CustomerSummary{}
	err := h.DB.WithContext(ctx).Table("invoices").
		Select("customers.name, COUNT(invoices.id) as visits, SUM(invoices.total) as spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.salon_id = ? AND invoices.payment_status = ? AND invoices.invoice_date BETWEEN ? AND ? AND invoices.deleted_at IS NULL AND customers.deleted_at IS NULL",
			salonID, models.PaymentPaid, start, end).
		Group("customers.id, customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error
	return customers, err
}

func (h *Handler) quickStatistics(ctx context.Context, salonID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics
	db := h.DB.WithContext(ctx)

	var totalCustomers int64
	if err := db.Model(&models.Customer{}).Where("salon_id = ?", salonID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totalInvoices int64
	if err := db.Model(&models.Invoice{}).Where("salon_id = ? AND payment_status = ?", salonID, models.PaymentPaid).
		Count(&totalInvoices).Error; err != nil {
		return stats, err
	}
	stats.TotalInvoices = int(totalInvoices)

	// Day keys are YYYY-MM-DD, so the first seven characters group by month.
	var avgVisits float64
	if err := db.Raw(`
		SELECT COALESCE(AVG(visits), 0) FROM (
			SELECT SUM(invoice_count) AS visits
			FROM daily_sales
			WHERE salon_id = ? AND deleted_at IS NULL
			GROUP BY SUBSTR(day, 1, 7)
		) monthly_visits
	`, salonID).Scan(&avgVisits).Error; err != nil {
		return stats, err
	}
	stats.AvgMonthlyVisits = avgVisits

	var totalRevenue float64
	if err := db.Model(&models.Invoice{}).
		Where("salon_id = ? AND payment_status = ?", salonID, models.PaymentPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}
	if stats.TotalInvoices > 0 {
		stats.AvgOrderValue = totalRevenue / float64(stats.TotalInvoices)
	}
	return stats, nil
}
