package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardOverview struct {
	TotalCustomers    int64            `json:"totalCustomers"`
	TodayAppointments map[string]int64 `json:"todayAppointments"`
	BusyStylists      int64            `json:"busyStylists"`
	AvailableStylists int64            `json:"availableStylists"`
	TodayRevenue      decimal.Decimal  `json:"todayRevenue"`
	MonthlyRevenue    decimal.Decimal  `json:"monthlyRevenue"`
	LowStockProducts  int64            `json:"lowStockProducts"`
	RecentCustomers   []RecentCustomer `json:"recentCustomers"`
	UpcomingReminders []UpcomingEvent  `json:"upcomingReminders"`
}

type UpcomingEvent struct {
	Name string `json:"name"`
	Type string `json:"type"` // "Birthday" or "Anniversary"
	Date string `json:"date"` // e.g. "Tomorrow", "3 days"
	days int
}

type RecentCustomer struct {
	Name      string `json:"name"`
	Service   string `json:"service"`
	VisitDate string `json:"visitDate"` // e.g. "Today", "Yesterday"
}

func (h *Handler) GetDashboardOverview(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	now := time.Now()
	today := utils.BeginningOfDay(now)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var overview DashboardOverview

	if err := db.Model(&models.Customer{}).Where("salon_id = ?", salonID).
		Count(&overview.TotalCustomers).Error; err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}

	// Today's appointments by status
	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Appointment{}).Select("status, COUNT(*) as count").
		Where("salon_id = ? AND scheduled_at BETWEEN ? AND ?", salonID, today, utils.EndOfDay(now)).
		Group("status").Scan(&byStatus).Error; err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}
	overview.TodayAppointments = map[string]int64{}
	for _, s := range []models.AppointmentStatus{models.StatusScheduled, models.StatusCheckedIn, models.StatusBilled, models.StatusPaid, models.StatusCancelled} {
		overview.TodayAppointments[string(s)] = 0
	}
	for _, row := range byStatus {
		overview.TodayAppointments[row.Status] = row.Count
	}

	if err := db.Model(&models.Stylist{}).Where("salon_id = ? AND is_active = ? AND status = ?", salonID, true, models.StylistBusy).
		Count(&overview.BusyStylists).Error; err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}
	if err := db.Model(&models.Stylist{}).Where("salon_id = ? AND is_active = ? AND status = ?", salonID, true, models.StylistAvailable).
		Count(&overview.AvailableStylists).Error; err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}

	// Revenue comes from the daily sale rows maintained at payment time.
	sales, err := h.Sales.List(c.Request.Context(), salonID, firstOfMonth, now)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}
	for _, day := range sales {
		overview.MonthlyRevenue = overview.MonthlyRevenue.Add(day.TotalRevenue)
		if day.Day == utils.DayKey(now) {
			overview.TodayRevenue = day.TotalRevenue
		}
	}

	if err := db.Model(&models.Product{}).
		Where("salon_id = ? AND is_active = ? AND stock <= reorder_level", salonID, true).
		Count(&overview.LowStockProducts).Error; err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}

	if overview.RecentCustomers, err = h.recentCustomers(c, salonID, now); err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}
	if overview.UpcomingReminders, err = h.upcomingEvents(c, salonID, now, 7); err != nil {
		h.respondServiceError(c, err, "Failed to load dashboard")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Dashboard retrieved", overview)
}

// recentCustomers returns the last three distinct customers who paid.
func (h *Handler) recentCustomers(c *gin.Context, salonID uuid.UUID, now time.Time) ([]RecentCustomer, error) {
	var invoices []models.Invoice
	if err := h.DB.WithContext(c.Request.Context()).Preload("Items").
		Where("salon_id = ? AND payment_status = ?", salonID, models.PaymentPaid).
		Order("paid_at DESC").Limit(20).Find(&invoices).Error; err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, inv := range invoices {
		if !seen[inv.CustomerID] {
			seen[inv.CustomerID] = true
			ids = append(ids, inv.CustomerID)
		}
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var customers []models.Customer
		if err := h.DB.WithContext(c.Request.Context()).Unscoped().Where("id IN ?", ids).Find(&customers).Error; err != nil {
			return nil, err
		}
		for _, cu := range customers {
			names[cu.ID] = cu.Name
		}
	}

	recent := []RecentCustomer{}
	listed := map[uuid.UUID]bool{}
	for _, inv := range invoices {
		if listed[inv.CustomerID] {
			continue
		}
		listed[inv.CustomerID] = true

		var services []string
		for _, item := range inv.Items {
			if item.Kind == models.ItemService {
				services = append(services, item.Name)
			}
		}
		visit := inv.InvoiceDate
		if inv.PaidAt != nil {
			visit = *inv.PaidAt
		}
		recent = append(recent, RecentCustomer{
			Name:      names[inv.CustomerID],
			Service:   strings.Join(services, ", "),
			VisitDate: daysAgoLabel(utils.DaysBetween(visit, now)),
		})
		if len(recent) >= 3 {
			break
		}
	}
	return recent, nil
}

// upcomingEvents lists birthdays and anniversaries within the next window days.
func (h *Handler) upcomingEvents(c *gin.Context, salonID uuid.UUID, now time.Time, window int) ([]UpcomingEvent, error) {
	var customers []models.Customer
	if err := h.DB.WithContext(c.Request.Context()).
		Where("salon_id = ? AND is_active = ? AND (birthday IS NOT NULL OR anniversary IS NOT NULL)", salonID, true).
		Find(&customers).Error; err != nil {
		return nil, err
	}

	events := []UpcomingEvent{}
	add := func(name, kind string, date *time.Time) {
		if date == nil {
			return
		}
		days := utils.DaysUntilAnniversary(*date, now)
		if days < window {
			events = append(events, UpcomingEvent{Name: name, Type: kind, Date: daysAheadLabel(days), days: days})
		}
	}
	for _, cu := range customers {
		add(cu.Name, "Birthday", cu.Birthday)
		add(cu.Name, "Anniversary", cu.Anniversary)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].days < events[j].days })
	if len(events) > 7 {
		events = events[:7]
	}
	return events, nil
}

func daysAgoLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func daysAheadLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
