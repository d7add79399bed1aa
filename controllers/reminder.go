// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReminderTemplateInput defines the expected JSON structure
type CreateReminderTemplateInput struct {
	Type    string `json:"type" binding:"required,oneof=birthday anniversary appointment"`
	Message string `json:"message" binding:"required"`
}

// UpdateReminderTemplateInput defines the expected JSON structure
type UpdateReminderTemplateInput struct {
	Type     *string `json:"type" binding:"omitempty,oneof=birthday anniversary appointment"`
	Message  *string `json:"message" binding:"omitempty,min=1"`
	IsActive *bool   `json:"isActive"`
}

// CreateReminderTemplate creates a new reminder template. A salon holds at
// most one template per reminder type.
func (h *Handler) CreateReminderTemplate(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input CreateReminderTemplateInput
	if !bindJSON(c, &input) {
		return
	}

	taken, err := h.templateTypeTaken(c, salonID.String(), input.Type, "")
	if err != nil {
		h.respondServiceError(c, err, "Database error")
		return
	}
	if taken {
		utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
		return
	}

	template := models.ReminderTemplate{
		SalonID:  salonID,
		Type:     input.Type,
		Message:  input.Message,
		IsActive: true,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to create template")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Template created", template)
}

// GetReminderTemplates retrieves all reminder templates for the salon
func (h *Handler) GetReminderTemplates(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var templates []models.ReminderTemplate
	if err := h.DB.WithContext(c.Request.Context()).Where("salon_id = ?", salonID).
		Order("type ASC").Find(&templates).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve templates")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Templates retrieved", templates)
}

func (h *Handler) GetReminderTemplate(c *gin.Context) {
	template, ok := h.loadTemplate(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Template retrieved", template)
}

func (h *Handler) UpdateReminderTemplate(c *gin.Context) {
	var input UpdateReminderTemplateInput
	if !bindJSON(c, &input) {
		return
	}
	template, ok := h.loadTemplate(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Type != nil && *input.Type != template.Type {
		taken, err := h.templateTypeTaken(c, template.SalonID.String(), *input.Type, template.ID.String())
		if err != nil {
			h.respondServiceError(c, err, "Database error")
			return
		}
		if taken {
			utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
			return
		}
		updates["type"] = *input.Type
	}
	if input.Message != nil {
		updates["message"] = *input.Message
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(c.Request.Context()).Model(template).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
				return
			}
			h.respondServiceError(c, err, "Failed to update template")
			return
		}
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Template updated", template)
}

// DeleteReminderTemplate hard-deletes so the type can be recreated.
func (h *Handler) DeleteReminderTemplate(c *gin.Context) {
	template, ok := h.loadTemplate(c)
	if !ok {
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Unscoped().Delete(template).Error; err != nil {
		h.respondServiceError(c, err, "Failed to delete template")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Template deleted successfully", nil)
}

// GetReminderLogs lists delivery attempts, newest first. Filters: type, status.
func (h *Handler) GetReminderLogs(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	page, limit := utils.Pagination(c)

	q := h.DB.WithContext(c.Request.Context()).Model(&models.ReminderLog{}).Where("salon_id = ?", salonID)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve reminder logs")
		return
	}
	var logs []models.ReminderLog
	if err := q.Order("sent_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&logs).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve reminder logs")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Reminder logs retrieved", utils.Paged{
		Items: logs, Total: total, Page: page, Limit: limit,
	})
}

// RunReminders processes the caller's salon immediately instead of waiting
// for the daily schedule.
func (h *Handler) RunReminders(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	run := h.Reminders.ProcessSalonReminders(c.Request.Context(), salon)
	utils.RespondWithSuccess(c, http.StatusOK, "Reminders processed", run)
}

func (h *Handler) loadTemplate(c *gin.Context) (*models.ReminderTemplate, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "template")
	if !ok {
		return nil, false
	}
	var template models.ReminderTemplate
	if err := h.DB.WithContext(c.Request.Context()).
		Where("salon_id = ? AND id = ?", salonID, id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &template, true
}

func (h *Handler) templateTypeTaken(c *gin.Context, salonID, kind, exceptID string) (bool, error) {
	q := h.DB.WithContext(c.Request.Context()).Model(&models.ReminderTemplate{}).
		Where("salon_id = ? AND type = ?", salonID, kind)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}
