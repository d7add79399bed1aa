package controllers

import (
	"net/http"

	"salonpro-suite/models"
	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

// controllers/auth.go
func (h *Handler) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create user")
		return
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, "Registration successful", gin.H{
		"token": token,
		"user":  userSummary(user, input.SalonName),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), input.Identifier, input.Password)
	if err != nil {
		h.respondServiceError(c, err, "Database error")
		return
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  userSummary(user, ""),
	})
}

// Logout clears the token cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookie, "", -1, "/", "", h.SecureCookie, true)
	utils.RespondWithSuccess(c, http.StatusOK, "Logged out", nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := utils.CurrentUser(c)
	if !ok {
		return
	}

	user, err := h.Accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load user")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "User retrieved", gin.H{
		"user":        userSummary(user, user.Salon.Name),
		"permissions": user.Role.Codes(),
	})
}

// issueToken signs a JWT for user and sets it as an HttpOnly cookie.
func (h *Handler) issueToken(c *gin.Context, user *models.User) (string, bool) {
	token, err := h.Tokens.Generate(user.ID, user.SalonID, user.Role.Name, user.Role.Codes())
	if err != nil {
		h.Log.Error("failed to generate token")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}

	maxAge := int(h.Tokens.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookie, token, maxAge, "/", "", h.SecureCookie, true)
	return token, true
}

func userSummary(user *models.User, salonName string) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"phone":     user.Phone,
		"name":      user.Name,
		"salonId":   user.SalonID,
		"salonName": salonName,
		"role":      user.Role.Name,
	}
}
