package controllers

import (
	"errors"
	"net/http"
	"strings"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Email    string    `json:"email" binding:"required,email"`
	Phone    string    `json:"phone" binding:"omitempty,phone"`
	Name     string    `json:"name" binding:"required"`
	Password string    `json:"password" binding:"required,min=8"`
	RoleID   uuid.UUID `json:"roleId" binding:"required"`
}

type UpdateUserInput struct {
	Name     *string    `json:"name"`
	Phone    *string    `json:"phone" binding:"omitempty,phone"`
	Password *string    `json:"password" binding:"omitempty,min=8"`
	RoleID   *uuid.UUID `json:"roleId"`
	IsActive *bool      `json:"isActive"`
}

// GetEmployees lists the salon's user accounts with their roles.
func (h *Handler) GetEmployees(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Preload("Role").
		Where("salon_id = ?", salonID).Order("name ASC").Find(&users).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve employees")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Employees retrieved", users)
}

func (h *Handler) AddEmployee(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input CreateUserInput
	if !bindJSON(c, &input) {
		return
	}

	role, ok := h.findRole(c, salonID, input.RoleID)
	if !ok {
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var count int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		h.respondServiceError(c, err, "Database error")
		return
	}
	if count > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	}

	user := models.User{
		Email:    email,
		Phone:    utils.CleanPhone(input.Phone),
		Name:     input.Name,
		Password: input.Password, // Will be hashed in BeforeCreate hook
		SalonID:  salonID,
		RoleID:   role.ID,
		IsActive: true,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Email already registered")
			return
		}
		h.respondServiceError(c, err, "Failed to create employee")
		return
	}
	user.Role = *role
	utils.RespondWithSuccess(c, http.StatusCreated, "Employee added", user)
}

func (h *Handler) UpdateEmployee(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "employee")
	if !ok {
		return
	}
	var input UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).Preload("Role").
		Where("salon_id = ? AND id = ?", salonID, id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return
	}

	self, _ := utils.CurrentUser(c)
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = utils.CleanPhone(*input.Phone)
	}
	if input.Password != nil {
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			h.respondServiceError(c, err, "Failed to update employee")
			return
		}
		updates["password"] = hashed
	}
	if input.RoleID != nil && *input.RoleID != user.RoleID {
		if user.ID == self {
			utils.RespondWithError(c, http.StatusConflict, "You cannot change your own role")
			return
		}
		role, ok := h.findRole(c, salonID, *input.RoleID)
		if !ok {
			return
		}
		updates["role_id"] = role.ID
		user.Role = *role
	}
	if input.IsActive != nil {
		if !*input.IsActive && user.ID == self {
			utils.RespondWithError(c, http.StatusConflict, "You cannot deactivate your own account")
			return
		}
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; err != nil {
			h.respondServiceError(c, err, "Failed to update employee")
			return
		}
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Employee updated", user)
}

func (h *Handler) DeleteEmployee(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "employee")
	if !ok {
		return
	}
	if self, _ := utils.CurrentUser(c); self == id {
		utils.RespondWithError(c, http.StatusConflict, "You cannot delete your own account")
		return
	}

	result := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, id).
		Delete(&models.User{})
	if result.Error != nil {
		h.respondServiceError(c, result.Error, "Failed to delete employee")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}
