package controllers

import (
	"errors"
	"net/http"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateStylistInput struct {
	Name           string          `json:"name" binding:"required"`
	Phone          string          `json:"phone" binding:"omitempty,phone"`
	Specialty      string          `json:"specialty"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	UserID         *uuid.UUID      `json:"userId"`
}

type UpdateStylistInput struct {
	Name           *string          `json:"name"`
	Phone          *string          `json:"phone" binding:"omitempty,phone"`
	Specialty      *string          `json:"specialty"`
	CommissionRate *decimal.Decimal `json:"commissionRate"`
	UserID         *uuid.UUID       `json:"userId"`
	IsActive       *bool            `json:"isActive"`
}

type StylistStatusInput struct {
	Status models.StylistStatus `json:"status" binding:"required,oneof=available off"`
}

// StylistAvailability is one row of the availability board.
type StylistAvailability struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	Status               models.StylistStatus `json:"status"`
	CurrentAppointmentID *uuid.UUID           `json:"currentAppointmentId"`
	CurrentCustomer      string               `json:"currentCustomer,omitempty"`
	NextAppointmentAt    *time.Time           `json:"nextAppointmentAt,omitempty"`
}

func validCommission(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(100))
}

func (h *Handler) CreateStylist(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input CreateStylistInput
	if !bindJSON(c, &input) {
		return
	}
	if !validCommission(input.CommissionRate) {
		utils.RespondWithError(c, http.StatusBadRequest, "Commission rate must be between 0 and 100")
		return
	}

	stylist := models.Stylist{
		SalonID:        salonID,
		UserID:         input.UserID,
		Name:           input.Name,
		Phone:          utils.CleanPhone(input.Phone),
		Specialty:      input.Specialty,
		CommissionRate: input.CommissionRate,
		Status:         models.StylistAvailable,
		IsActive:       true,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&stylist).Error; err != nil {
		h.respondServiceError(c, err, "Failed to create stylist")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Stylist created", stylist)
}

func (h *Handler) GetStylists(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	q := h.DB.WithContext(c.Request.Context()).Where("salon_id = ?", salonID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var stylists []models.Stylist
	if err := q.Order("name ASC").Find(&stylists).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve stylists")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stylists retrieved", stylists)
}

func (h *Handler) GetStylist(c *gin.Context) {
	stylist, ok := h.loadStylist(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stylist retrieved", stylist)
}

func (h *Handler) UpdateStylist(c *gin.Context) {
	var input UpdateStylistInput
	if !bindJSON(c, &input) {
		return
	}
	stylist, ok := h.loadStylist(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = utils.CleanPhone(*input.Phone)
	}
	if input.Specialty != nil {
		updates["specialty"] = *input.Specialty
	}
	if input.CommissionRate != nil {
		if !validCommission(*input.CommissionRate) {
			utils.RespondWithError(c, http.StatusBadRequest, "Commission rate must be between 0 and 100")
			return
		}
		updates["commission_rate"] = *input.CommissionRate
	}
	if input.UserID != nil {
		updates["user_id"] = *input.UserID
	}
	if input.IsActive != nil {
		if !*input.IsActive && stylist.Status == models.StylistBusy {
			utils.RespondWithError(c, http.StatusConflict, "Cannot deactivate a stylist who is serving a customer")
			return
		}
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		utils.RespondWithSuccess(c, http.StatusOK, "Stylist unchanged", stylist)
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(stylist).Updates(updates).Error; err != nil {
		h.respondServiceError(c, err, "Failed to update stylist")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stylist updated", stylist)
}

// UpdateStylistStatus toggles a stylist between available and off. Busy is
// set and cleared only by the appointment workflow.
func (h *Handler) UpdateStylistStatus(c *gin.Context) {
	var input StylistStatusInput
	if !bindJSON(c, &input) {
		return
	}
	stylist, ok := h.loadStylist(c)
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.Stylist{}).
		Where("id = ? AND status <> ?", stylist.ID, models.StylistBusy).
		Update("status", input.Status)
	if res.Error != nil {
		h.respondServiceError(c, res.Error, "Failed to update stylist status")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Stylist is busy with an appointment")
		return
	}

	stylist.Status = input.Status
	utils.RespondWithSuccess(c, http.StatusOK, "Stylist status updated", stylist)
}

func (h *Handler) DeleteStylist(c *gin.Context) {
	stylist, ok := h.loadStylist(c)
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).
		Where("id = ? AND status <> ?", stylist.ID, models.StylistBusy).
		Delete(&models.Stylist{})
	if res.Error != nil {
		h.respondServiceError(c, res.Error, "Failed to delete stylist")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Cannot delete a stylist who is serving a customer")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stylist deleted successfully", nil)
}

// GetStylistAvailability shows who is free, who is busy and with whom.
func (h *Handler) GetStylistAvailability(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var stylists []models.Stylist
	if err := h.DB.WithContext(ctx).Where("salon_id = ? AND is_active = ?", salonID, true).
		Order("name ASC").Find(&stylists).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve availability")
		return
	}

	board := make([]StylistAvailability, 0, len(stylists))
	now := time.Now()
	for _, s := range stylists {
		row := StylistAvailability{
			ID:                   s.ID,
			Name:                 s.Name,
			Status:               s.Status,
			CurrentAppointmentID: s.CurrentAppointmentID,
		}
		if s.CurrentAppointmentID != nil {
			var current models.Appointment
			if err := h.DB.WithContext(ctx).Preload("Customer").
				Where("id = ?", *s.CurrentAppointmentID).First(&current).Error; err == nil {
				row.CurrentCustomer = current.Customer.Name
			}
		}
		var next models.Appointment
		err := h.DB.WithContext(ctx).
			Where("stylist_id = ? AND status = ? AND scheduled_at >= ?", s.ID, models.StatusScheduled, now).
			Order("scheduled_at ASC").First(&next).Error
		if err == nil {
			at := next.ScheduledAt
			row.NextAppointmentAt = &at
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondServiceError(c, err, "Failed to retrieve availability")
			return
		}
		board = append(board, row)
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Availability retrieved", board)
}

// GetStylistIncentives returns a stylist's incentives for ?from/?to.
func (h *Handler) GetStylistIncentives(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	stylistID, ok := utils.ParamUUID(c, "id", "stylist")
	if !ok {
		return
	}
	from, to, ok := dayRange(c)
	if !ok {
		return
	}

	out, err := h.Incentives.ForStylist(c.Request.Context(), salonID, stylistID, from, to)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve incentives")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Incentives retrieved", out)
}

// GetIncentiveSummary groups incentives by stylist for ?from/?to.
func (h *Handler) GetIncentiveSummary(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	from, to, ok := dayRange(c)
	if !ok {
		return
	}

	rows, err := h.Incentives.Summary(c.Request.Context(), salonID, from, to)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve incentive summary")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Incentive summary retrieved", gin.H{
		"from":     utils.DayKey(from),
		"to":       utils.DayKey(to),
		"stylists": rows,
	})
}

func (h *Handler) loadStylist(c *gin.Context) (*models.Stylist, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "stylist")
	if !ok {
		return nil, false
	}

	var stylist models.Stylist
	if err := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, id).
		First(&stylist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &stylist, true
}

// dayRange reads ?from and ?to (YYYY-MM-DD), defaulting to the current
// month. The end is inclusive of its whole day.
func dayRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, to, err := utils.ParseDayRange(c.Query("from"), c.Query("to"), time.Now())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date range, expected YYYY-MM-DD")
		return from, to, false
	}
	if to.Before(from) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date range, to is before from")
		return from, to, false
	}
	return from, utils.EndOfDay(to), true
}
