package controllers

import (
	"errors"
	"net/http"

	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	DB           *gorm.DB
	Log          *zap.Logger
	Tokens       *utils.TokenManager
	SecureCookie bool

	Accounts     *services.AccountService
	Appointments *services.AppointmentService
	Loyalty      *services.LoyaltyService
	Inventory    *services.InventoryService
	Incentives   *services.IncentiveService
	Sales        *services.SalesService
	Reminders    *services.ReminderService

	// Idempotency is nil when Redis is not configured.
	Idempotency services.IdempotencyStore
}

// respondServiceError maps domain errors to HTTP status codes. Anything
// unrecognised is logged and reported as a generic 500 with fallback.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrStylistBusy),
		errors.Is(err, services.ErrStylistUnavailable),
		errors.Is(err, services.ErrScheduleConflict),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Log.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, status, fallback)
		return
	}
	utils.RespondWithError(c, status, err.Error())
}

// bindJSON writes a 400 when the body does not bind.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

// Health reports database reachability.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Database unreachable")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "OK", gin.H{"status": "ok"})
}
