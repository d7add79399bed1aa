package controllers

import (
	"errors"
	"net/http"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpdateSalonInput struct {
	Name    *string `json:"salonName"`
	Address *string `json:"salonAddress"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
}

type NotificationSettingsInput struct {
	BirthdayReminders     *bool `json:"birthdayReminders"`
	AnniversaryReminders  *bool `json:"anniversaryReminders"`
	AppointmentReminders  *bool `json:"appointmentReminders"`
	WhatsAppNotifications *bool `json:"whatsAppNotifications"`
	SMSNotifications      *bool `json:"smsNotifications"`
}

type LoyaltySettingsInput struct {
	LoyaltyPointValue decimal.Decimal `json:"loyaltyPointValue"`
}

func (h *Handler) GetProfile(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Profile retrieved", salon)
}

func (h *Handler) UpdateSalonProfile(c *gin.Context) {
	var input UpdateSalonInput
	if !bindJSON(c, &input) {
		return
	}
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Salon name is required")
			return
		}
		updates["name"] = *input.Name
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Phone != nil {
		updates["phone"] = utils.CleanPhone(*input.Phone)
	}
	h.saveSalon(c, salon, updates, "Profile updated")
}

func (h *Handler) UpdateWorkingHours(c *gin.Context) {
	var input struct {
		WorkingHours models.JSONB `json:"workingHours" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	h.saveSalon(c, salon, map[string]interface{}{"working_hours": input.WorkingHours}, "Working hours updated")
}

func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
	var input NotificationSettingsInput
	if !bindJSON(c, &input) {
		return
	}
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	set := func(column string, v *bool) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("birthday_reminders", input.BirthdayReminders)
	set("anniversary_reminders", input.AnniversaryReminders)
	set("appointment_reminders", input.AppointmentReminders)
	set("whats_app_notifications", input.WhatsAppNotifications)
	set("sms_notifications", input.SMSNotifications)
	h.saveSalon(c, salon, updates, "Notification settings updated")
}

// UpdateLoyaltySettings sets how much one redeemed point is worth.
func (h *Handler) UpdateLoyaltySettings(c *gin.Context) {
	var input LoyaltySettingsInput
	if !bindJSON(c, &input) {
		return
	}
	if !input.LoyaltyPointValue.IsPositive() {
		utils.RespondWithError(c, http.StatusBadRequest, "Loyalty point value must be positive")
		return
	}
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	h.saveSalon(c, salon, map[string]interface{}{"loyalty_point_value": input.LoyaltyPointValue}, "Loyalty settings updated")
}

func (h *Handler) loadSalon(c *gin.Context) (*models.Salon, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	var salon models.Salon
	if err := h.DB.WithContext(c.Request.Context()).First(&salon, "id = ?", salonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &salon, true
}

func (h *Handler) saveSalon(c *gin.Context, salon *models.Salon, updates map[string]interface{}, message string) {
	if len(updates) > 0 {
		if err := h.DB.WithContext(c.Request.Context()).Model(salon).Updates(updates).Error; err != nil {
			h.respondServiceError(c, err, "Failed to update salon")
			return
		}
	}
	utils.RespondWithSuccess(c, http.StatusOK, message, salon)
}
