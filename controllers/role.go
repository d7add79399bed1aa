package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleInput struct {
	Name        string   `json:"name" binding:"required,max=64"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" binding:"required,min=1"`
}

type UpdateRoleInput struct {
	Name        *string   `json:"name" binding:"omitempty,max=64"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions" binding:"omitempty,min=1"`
}

// GetPermissions lists the permission catalog.
func (h *Handler) GetPermissions(c *gin.Context) {
	var perms []models.Permission
	if err := h.DB.WithContext(c.Request.Context()).Order("code ASC").Find(&perms).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve permissions")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Permissions retrieved", perms)
}

func (h *Handler) GetRoles(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var roles []models.Role
	if err := h.DB.WithContext(c.Request.Context()).Preload("Permissions").
		Where("salon_id = ?", salonID).Order("is_system DESC, name ASC").Find(&roles).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve roles")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Roles retrieved", roles)
}

func (h *Handler) CreateRole(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input RoleInput
	if !bindJSON(c, &input) {
		return
	}

	perms, err := h.lookupPermissions(c, input.Permissions)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	role := models.Role{
		SalonID:     salonID,
		Name:        input.Name,
		Description: input.Description,
		Permissions: perms,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Role with this name already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to create role")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Role created", role)
}

// UpdateRole renames a role or replaces its permissions. The owner role
// always keeps full access.
func (h *Handler) UpdateRole(c *gin.Context) {
	var input UpdateRoleInput
	if !bindJSON(c, &input) {
		return
	}
	role, ok := h.loadRole(c)
	if !ok {
		return
	}
	if role.IsSystem && role.Name == models.RoleOwner {
		utils.RespondWithError(c, http.StatusConflict, "The owner role cannot be changed")
		return
	}
	if role.IsSystem && input.Name != nil && *input.Name != role.Name {
		utils.RespondWithError(c, http.StatusConflict, "System roles cannot be renamed")
		return
	}

	var perms []models.Permission
	if input.Permissions != nil {
		var err error
		if perms, err = h.lookupPermissions(c, *input.Permissions); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(role).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Permissions != nil {
			return tx.Model(role).Association("Permissions").Replace(perms)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Role with this name already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to update role")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Role updated", role)
}

func (h *Handler) DeleteRole(c *gin.Context) {
	role, ok := h.loadRole(c)
	if !ok {
		return
	}
	if role.IsSystem {
		utils.RespondWithError(c, http.StatusConflict, "System roles cannot be deleted")
		return
	}

	var assigned int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("role_id = ?", role.ID).Count(&assigned).Error; err != nil {
		h.respondServiceError(c, err, "Failed to delete role")
		return
	}
	if assigned > 0 {
		utils.RespondWithError(c, http.StatusConflict, fmt.Sprintf("Role is assigned to %d user(s)", assigned))
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to delete role")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Role deleted successfully", nil)
}

func (h *Handler) loadRole(c *gin.Context) (*models.Role, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "role")
	if !ok {
		return nil, false
	}
	return h.findRole(c, salonID, id)
}

func (h *Handler) findRole(c *gin.Context, salonID, id uuid.UUID) (*models.Role, bool) {
	var role models.Role
	if err := h.DB.WithContext(c.Request.Context()).Preload("Permissions").
		Where("salon_id = ? AND id = ?", salonID, id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Role not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &role, true
}

// lookupPermissions resolves codes, rejecting unknown ones.
func (h *Handler) lookupPermissions(c *gin.Context, codes []string) ([]models.Permission, error) {
	for _, code := range codes {
		if _, known := models.Permissions[code]; !known {
			return nil, fmt.Errorf("Unknown permission %q", code)
		}
	}
	var perms []models.Permission
	if err := h.DB.WithContext(c.Request.Context()).Where("code IN ?", codes).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}
