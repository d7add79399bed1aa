// controllers/service.go
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

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Duration    int             `json:"duration" binding:"min=0"` // in minutes
	Category    string          `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Duration    *int             `json:"duration" binding:"omitempty,min=0"`
	Category    *string          `json:"category"`
	IsActive    *bool            `json:"isActive"`
}

// CreateService creates a new service for the salon
func (h *Handler) CreateService(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input CreateServiceInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Price.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Price must not be negative")
		return
	}

	service := models.Service{
		SalonID:     salonID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		Category:    input.Category,
		IsActive:    true,
	}
	if service.Category == "" {
		service.Category = "General"
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		h.respondServiceError(c, err, "Failed to create service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Service created", service)
}

// GetServices retrieves the salon's services, optionally by ?category
func (h *Handler) GetServices(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	q := h.DB.WithContext(c.Request.Context()).Where("salon_id = ?", salonID)
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var services []models.Service
	if err := q.Order("category ASC, name ASC").Find(&services).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve services")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Services retrieved", services)
}

// GetService retrieves a specific service by ID
func (h *Handler) GetService(c *gin.Context) {
	service, ok := h.loadService(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Service retrieved", service)
}

// UpdateService updates an existing service. Booked appointments keep the
// price they were booked at.
func (h *Handler) UpdateService(c *gin.Context) {
	var input UpdateServiceInput
	if !bindJSON(c, &input) {
		return
	}
	service, ok := h.loadService(c)
	if !ok {
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Price must not be negative")
			return
		}
		service.Price = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := h.DB.WithContext(c.Request.Context()).Save(service).Error; err != nil {
		h.respondServiceError(c, err, "Failed to update service")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Service updated", service)
}

// DeleteService soft deletes a service
func (h *Handler) DeleteService(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return
	}

	result := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, id).
		Delete(&models.Service{})
	if result.Error != nil {
		h.respondServiceError(c, result.Error, "Failed to delete service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Service deleted successfully", nil)
}

func (h *Handler) loadService(c *gin.Context) (*models.Service, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "service")
	if !ok {
		return nil, false
	}

	var service models.Service
	if err := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, id).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &service, true
}
