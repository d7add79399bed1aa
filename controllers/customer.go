package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errCustomerHasAppointments = errors.New("customer has open appointments")

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name        string     `json:"name" binding:"required"`
	Phone       string     `json:"phone" binding:"required,phone"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
	Notes       string     `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name        *string    `json:"name"`
	Phone       *string    `json:"phone" binding:"omitempty,phone"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Birthday    *time.Time `json:"birthday"`
	Anniversary *time.Time `json:"anniversary"`
	Notes       *string    `json:"notes"`
	IsActive    *bool      `json:"isActive"`
}

type AdjustPointsInput struct {
	Points int    `json:"points" binding:"required"`
	Note   string `json:"note" binding:"required"`
}

// CreateCustomer creates a new customer for the salon
func (h *Handler) CreateCustomer(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	userID, ok := utils.CurrentUser(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if !bindJSON(c, &input) {
		return
	}
	phone := utils.CleanPhone(input.Phone)

	// Check if phone already exists for this salon
	taken, err := h.customerPhoneTaken(c, salonID, phone)
	if err != nil {
		h.respondServiceError(c, err, "Database error")
		return
	}
	if taken {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	}

	customer := models.Customer{
		SalonID:         salonID,
		CreatedByUserID: userID,
		Name:            input.Name,
		Phone:           phone,
		Birthday:        input.Birthday,
		Anniversary:     input.Anniversary,
		Notes:           input.Notes,
		IsActive:        true,
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to create customer")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomers lists the salon's customers, optionally filtered by ?search
// on name, phone or email.
func (h *Handler) GetCustomers(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	page, limit := utils.Pagination(c)

	q := h.DB.WithContext(c.Request.Context()).Model(&models.Customer{}).Where("salon_id = ?", salonID)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}
	if active := c.Query("active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			q = q.Where("is_active = ?", v)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve customers")
		return
	}

	var customers []models.Customer
	if err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&customers).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve customers")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Customers retrieved", utils.Paged{
		Items: customers, Total: total, Page: page, Limit: limit,
	})
}

// GetCustomer retrieves a specific customer by ID
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, ok := h.loadCustomer(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Customer retrieved", customer)
}

// UpdateCustomer updates an existing customer
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var input UpdateCustomerInput
	if !bindJSON(c, &input) {
		return
	}
	customer, ok := h.loadCustomer(c)
	if !ok {
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		phone := utils.CleanPhone(*input.Phone)
		// Check if phone is being changed to another existing customer
		if customer.Phone != phone {
			taken, err := h.customerPhoneTaken(c, customer.SalonID, phone)
			if err != nil {
				h.respondServiceError(c, err, "Database error")
				return
			}
			if taken {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			}
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Birthday != nil {
		customer.Birthday = input.Birthday
	}
	if input.Anniversary != nil {
		customer.Anniversary = input.Anniversary
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	// Loyalty balance and visit stats are owned by the workflow, not this form.
	if err := h.DB.WithContext(c.Request.Context()).Model(customer).
		Select("name", "phone", "email", "birthday", "anniversary", "notes", "is_active").
		Updates(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to update customer")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer soft deletes a customer
func (h *Handler) DeleteCustomer(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return
	}

	// Open appointments must be cancelled first; Pay cannot credit a deleted customer.
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Appointment{}).
			Where("salon_id = ? AND customer_id = ? AND status IN ?", salonID, customerID, models.OccupyingStatuses()).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return errCustomerHasAppointments
		}

		result := tx.Where("salon_id = ? AND id = ?", salonID, customerID).Delete(&models.Customer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errCustomerHasAppointments):
		utils.RespondWithError(c, http.StatusConflict, "Customer has open appointments")
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	case err != nil:
		h.respondServiceError(c, err, "Failed to delete customer")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Customer deleted successfully", nil)
}

// GetCustomerLoyalty returns the loyalty balance and recent ledger entries.
func (h *Handler) GetCustomerLoyalty(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return
	}
	_, limit := utils.Pagination(c)

	account, err := h.Loyalty.Account(c.Request.Context(), salonID, customerID, limit)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve loyalty account")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Loyalty account retrieved", account)
}

// AdjustCustomerLoyalty applies a manual signed correction.
func (h *Handler) AdjustCustomerLoyalty(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return
	}
	var input AdjustPointsInput
	if !bindJSON(c, &input) {
		return
	}

	entry, err := h.Loyalty.Adjust(c.Request.Context(), salonID, customerID, input.Points, input.Note)
	if err != nil {
		h.respondServiceError(c, err, "Failed to adjust loyalty points")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Loyalty points adjusted", entry)
}

// GetCustomerAppointments lists a customer's appointments, newest first.
func (h *Handler) GetCustomerAppointments(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return
	}

	var appointments []models.Appointment
	if err := h.DB.WithContext(c.Request.Context()).Preload("Stylist").Preload("Items").
		Where("salon_id = ? AND customer_id = ?", salonID, customerID).
		Order("scheduled_at DESC").Limit(50).Find(&appointments).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve appointments")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointments retrieved", appointments)
}

func (h *Handler) loadCustomer(c *gin.Context) (*models.Customer, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return nil, false
	}

	var customer models.Customer
	if err := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &customer, true
}

func (h *Handler) customerPhoneTaken(c *gin.Context, salonID uuid.UUID, phone string) (bool, error) {
	var count int64
	err := h.DB.WithContext(c.Request.Context()).Model(&models.Customer{}).
		Where("salon_id = ? AND phone = ?", salonID, phone).Count(&count).Error
	return count > 0, err
}
