// utils/auth.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID      = "userId"
	CtxSalonID     = "salonId"
	CtxRole        = "role"
	CtxPermissions = "perms"
)

// TokenCookie is the name of the HttpOnly cookie carrying the JWT.
const TokenCookie = "token"

// PasswordCost is the bcrypt cost used by HashPassword.
var PasswordCost = 12

// Generate JWT secret key (run once initially)
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims carried by every access token.
type Claims struct {
	SalonID     string   `json:"salonId"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Generate JWT token
func (m *TokenManager) Generate(userID, salonID uuid.UUID, role string, perms []string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SalonID:     salonID.String(),
		Role:        role,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

// Parse validates the token signature and expiry.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth middleware
func AuthMiddleware(m *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}
		if tokenString == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.Parse(tokenString)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if _, err := uuid.Parse(claims.Subject); err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		if _, err := uuid.Parse(claims.SalonID); err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxSalonID, claims.SalonID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxPermissions, claims.Permissions)
		c.Next()
	}
}

// RequirePermission lets the request through when the caller holds any of
// the given permission codes, or the wildcard.
func RequirePermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		held, _ := c.Get(CtxPermissions)
		codes, _ := held.([]string)
		for _, code := range codes {
			if code == "*" {
				c.Next()
				return
			}
			for _, p := range perms {
				if code == p {
					c.Next()
					return
				}
			}
		}
		RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

// CurrentSalon returns the caller's salon, writing a 401 when it is missing.
func CurrentSalon(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, CtxSalonID, "Salon ID not found in context")
}

// CurrentUser returns the caller's user ID, writing a 401 when it is missing.
func CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, CtxUserID, "User ID not found in context")
}

func uuidFromContext(c *gin.Context, key, msg string) (uuid.UUID, bool) {
	raw, exists := c.Get(key)
	if !exists {
		RespondWithError(c, http.StatusUnauthorized, msg)
		return uuid.Nil, false
	}
	s, _ := raw.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		RespondWithError(c, http.StatusUnauthorized, msg)
		return uuid.Nil, false
	}
	return id, true
}

// ParamUUID parses a UUID path parameter, writing a 400 when it is malformed.
func ParamUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
