package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidatePhone(t *testing.T) {
	for phone, want := range map[string]bool{
		"+919800000001":    true,
		"+1 (555) 123-456": true,
		"9800000001":       true,
		"0123":             false,
		"abc":              false,
		"":                 false,
	} {
		assert.Equalf(t, want, ValidatePhone(phone), phone)
	}
	assert.Equal(t, "+15551234567", CleanPhone("+1 (555) 123-4567"))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	userID, salonID := uuid.New(), uuid.New()

	token, err := m.Generate(userID, salonID, "owner", []string{"*"})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, salonID.String(), claims.SalonID)
	assert.Equal(t, []string{"*"}, claims.Permissions)

	_, err = NewTokenManager("other-secret", time.Hour).Parse(token)
	assert.Error(t, err)

	_, err = NewTokenManager("", time.Hour).Generate(userID, salonID, "owner", nil)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
	token, err := m.Generate(uuid.New(), uuid.New(), "owner", nil)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func protectedRouter(m *TokenManager, perms ...string) *gin.Engine {
	r := gin.New()
	r.GET("/x", AuthMiddleware(m), RequirePermission(perms...), func(c *gin.Context) {
		salonID, ok := CurrentSalon(c)
		if !ok {
			return
		}
		RespondWithSuccess(c, http.StatusOK, "ok", salonID)
	})
	return r
}

func TestAuthMiddlewareAndPermissions(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	r := protectedRouter(m, "customers.read")

	do := func(setup func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		setup(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(func(*http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = do(func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	reader, _ := m.Generate(uuid.New(), uuid.New(), "stylist", []string{"customers.read"})
	w = do(func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+reader) })
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookie, Value: reader}) })
	assert.Equal(t, http.StatusOK, w.Code)

	outsider, _ := m.Generate(uuid.New(), uuid.New(), "stylist", []string{"appointments.read"})
	w = do(func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+outsider) })
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner, _ := m.Generate(uuid.New(), uuid.New(), "owner", []string{"*"})
	w = do(func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+owner) })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDaysUntilAnniversary(t *testing.T) {
	now := time.Date(2025, 12, 30, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(1990, 12, 30, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), 3},
		{time.Date(1990, 12, 29, 0, 0, 0, 0, time.UTC), 364},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DaysUntilAnniversary(tc.date, now), tc.date.Format(DayLayout))
	}
}

func TestParseDayRange(t *testing.T) {
	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	from, to, err := ParseDayRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", DayKey(from))
	assert.Equal(t, "2025-02-28", DayKey(to))

	from, to, err = ParseDayRange("2025-01-05", "2025-01-10", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", DayKey(from))
	assert.Equal(t, "2025-01-10", DayKey(to))

	_, _, err = ParseDayRange("05/01/2025", "", now)
	assert.Error(t, err)

	assert.Equal(t, time.Date(2025, 2, 14, 23, 59, 59, 999999999, time.UTC), EndOfDay(now))
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(8)
	assert.Len(t, s, 8)
	for _, r := range s {
		assert.Contains(t, randomAlphabet, string(r))
	}
}
