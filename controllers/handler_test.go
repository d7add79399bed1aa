package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"salonpro-suite/config"
	"salonpro-suite/controllers"
	"salonpro-suite/models"
	"salonpro-suite/routes"
	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.data[key]
	return body, ok, nil
}

func (m *memoryStore) Save(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = body
	return nil
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	h      *controllers.Handler
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
	utils.RegisterValidators()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	log := zap.NewNop()
	loyalty := services.NewLoyaltyService(db, log)
	inventory := services.NewInventoryService(db, log)
	sales := services.NewSalesService(db)
	incentives := services.NewIncentiveService(db)

	h := &controllers.Handler{
		DB:           db,
		Log:          log,
		Tokens:       utils.NewTokenManager("test-secret", time.Hour),
		Accounts:     services.NewAccountService(db, log),
		Appointments: services.NewAppointmentService(db, log, loyalty, inventory, sales, incentives),
		Loyalty:      loyalty,
		Inventory:    inventory,
		Incentives:   incentives,
		Sales:        sales,
		Reminders:    services.NewReminderService(db, log, nil),
		Idempotency:  &memoryStore{data: map[string][]byte{}},
	}
	cfg := &config.Config{CORSOrigins: "http://localhost:3000"}
	s := &testServer{t: t, db: db, h: h, router: routes.SetupRouter(h, cfg, log)}

	w, env := s.do(http.MethodPost, "/auth/register", map[string]interface{}{
		"email":     "owner@glow.test",
		"phone":     "+919800000009",
		"name":      "Meera",
		"password":  "s3cret-pass",
		"salonName": "Glow Studio",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	s.token = data.Token
	return s
}

func (s *testServer) do(method, path string, body interface{}, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// create posts body and returns the new record's ID.
func (s *testServer) create(path string, body interface{}) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, path, body, s.token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var rec struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &rec))
	return rec.ID
}

type booking struct {
	customerID, stylistID, serviceID string
}

func (s *testServer) seed() booking {
	s.t.Helper()
	return booking{
		customerID: s.create("/api/customers", map[string]interface{}{"name": "Asha", "phone": "+919800000001"}),
		stylistID:  s.create("/api/stylists", map[string]interface{}{"name": "Ravi", "commissionRate": "10"}),
		serviceID:  s.create("/api/services", map[string]interface{}{"name": "Haircut", "price": "30", "duration": 30}),
	}
}

func (s *testServer) book(b booking, at time.Time) string {
	s.t.Helper()
	return s.create("/api/appointments", map[string]interface{}{
		"customerId":  b.customerID,
		"stylistId":   b.stylistID,
		"scheduledAt": at.Format(time.RFC3339),
		"serviceIds":  []string{b.serviceID},
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestDuplicateCustomerPhoneConflicts(t *testing.T) {
	s := newTestServer(t)
	s.create("/api/customers", map[string]interface{}{"name": "Asha", "phone": "+91 98000 00001"})

	w, env := s.do(http.MethodPost, "/api/customers", map[string]interface{}{"name": "Asha K", "phone": "+919800000001"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Customer with this phone number already exists", env.Message)

	w, env = s.do(http.MethodPost, "/api/customers", map[string]interface{}{"name": "Bad", "phone": "not-a-phone"}, s.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestAppointmentWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	b := s.seed()
	first := s.book(b, time.Now().Add(time.Hour))
	second := s.book(b, time.Now().Add(3*time.Hour))

	w, env := s.do(http.MethodPost, "/api/appointment/"+first+"/check-in", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "Appointment checked in", env.Message)
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &appt))
	assert.Equal(t, models.StatusCheckedIn, appt.Status)

	w, env = s.do(http.MethodPost, "/api/appointment/"+second+"/check-in", nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "stylist is busy")

	w, _ = s.do(http.MethodPost, "/api/appointment/"+first+"/pay", map[string]interface{}{"paymentMethod": "cash"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code, "pay before bill")

	w, _ = s.do(http.MethodPost, "/api/appointment/"+first+"/bill", nil, s.token, "Idempotency-Key", "bill-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))

	w, _ = s.do(http.MethodPost, "/api/appointment/"+first+"/bill", nil, s.token, "Idempotency-Key", "bill-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))

	var invoices int64
	require.NoError(t, s.db.Model(&models.Invoice{}).Count(&invoices).Error)
	assert.EqualValues(t, 1, invoices)

	w, env = s.do(http.MethodPost, "/api/appointment/"+first+"/pay", map[string]interface{}{"paymentMethod": "cash"}, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid services.PaymentResult
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, 1, paid.PointsEarned)
	assert.Equal(t, models.StatusPaid, paid.Appointment.Status)

	w, _ = s.do(http.MethodPost, "/api/appointment/"+second+"/check-in", nil, s.token)
	assert.Equal(t, http.StatusOK, w.Code, "stylist is free again")

	w, env = s.do(http.MethodPost, "/api/appointment/"+second+"/cancel", map[string]interface{}{"reason": "changed plans"}, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &appt))
	assert.Equal(t, models.StatusCancelled, appt.Status)
}

func TestAuthAndPermissionErrors(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/customers", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	var owner models.User
	require.NoError(t, s.db.First(&owner).Error)
	stylistToken, err := s.h.Tokens.Generate(uuid.New(), owner.SalonID, models.RoleStylist,
		models.DefaultRolePermissions[models.RoleStylist])
	require.NoError(t, err)

	w, _ = s.do(http.MethodGet, "/api/customers", nil, stylistToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/api/customers", map[string]interface{}{"name": "Asha", "phone": "+919800000001"}, stylistToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/reports", nil, stylistToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodPost, "/auth/login", map[string]interface{}{"identifier": "owner@glow.test", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodPost, "/auth/login", map[string]interface{}{"identifier": "+919800000009", "password": "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == utils.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"permissions":["*"]`)
}

func TestNotFoundAndBadIDs(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/appointments/"+uuid.NewString(), nil, s.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodPost, "/api/appointment/"+uuid.NewString()+"/check-in", nil, s.token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/api/customers/not-a-uuid", nil, s.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStylistStatusGuards(t *testing.T) {
	s := newTestServer(t)
	b := s.seed()
	appt := s.book(b, time.Now().Add(time.Hour))

	w, _ := s.do(http.MethodPut, "/api/stylists/"+b.stylistID+"/status", map[string]interface{}{"status": "busy"}, s.token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "busy is workflow-owned")

	w, _ = s.do(http.MethodPost, "/api/appointment/"+appt+"/check-in", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPut, "/api/stylists/"+b.stylistID+"/status", map[string]interface{}{"status": "off"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/stylists/"+b.stylistID, nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := s.do(http.MethodGet, "/api/stylists/availability", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var board []controllers.StylistAvailability
	require.NoError(t, json.Unmarshal(env.Data, &board))
	require.Len(t, board, 1)
	assert.Equal(t, models.StylistBusy, board[0].Status)
	assert.Equal(t, "Asha", board[0].CurrentCustomer)
}

func TestReminderTemplateTypeIsUnique(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/reminders/templates", map[string]interface{}{"type": "birthday", "message": "Hi"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code, "registration seeds a birthday template")
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodPost, "/api/reminders/templates", map[string]interface{}{"type": "newsletter", "message": "Hi"}, s.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/reminders/templates", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code)
	var templates []models.ReminderTemplate
	require.NoError(t, json.Unmarshal(env.Data, &templates))
	assert.Len(t, templates, 3)
}

// checkout takes a booked appointment through check-in, billing and payment.
func (s *testServer) checkout(apptID string, pay bool) {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/api/appointment/"+apptID+"/check-in", nil, s.token)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/appointment/"+apptID+"/bill", nil, s.token)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	if pay {
		w, _ = s.do(http.MethodPost, "/api/appointment/"+apptID+"/pay", map[string]interface{}{"paymentMethod": "cash"}, s.token)
		require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	}
}

func (s *testServer) roleID(name string) string {
	s.t.Helper()
	w, env := s.do(http.MethodGet, "/api/roles", nil, s.token)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var roles []models.Role
	require.NoError(s.t, json.Unmarshal(env.Data, &roles))
	for _, r := range roles {
		if r.Name == name {
			return r.ID.String()
		}
	}
	s.t.Fatalf("role %q not found", name)
	return ""
}

func TestDeleteCustomerWithOpenAppointment(t *testing.T) {
	s := newTestServer(t)
	b := s.seed()
	appt := s.book(b, time.Now().Add(time.Hour))

	w, env := s.do(http.MethodDelete, "/api/customers/"+b.customerID, nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Customer has open appointments", env.Message)

	w, _ = s.do(http.MethodPost, "/api/appointment/"+appt+"/check-in", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/api/customers/"+b.customerID, nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, "/api/appointment/"+appt+"/cancel", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/api/customers/"+b.customerID, nil, s.token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/customers/"+b.customerID, nil, s.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoleRules(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodDelete, "/api/roles/"+s.roleID(models.RoleStylist), nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "System roles cannot be deleted", env.Message)

	w, _ = s.do(http.MethodPut, "/api/roles/"+s.roleID(models.RoleOwner), map[string]interface{}{"description": "boss"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	trainee := map[string]interface{}{"name": "Trainee", "permissions": []string{models.PermAppointmentsRead}}
	id := s.create("/api/roles", trainee)

	w, env = s.do(http.MethodPost, "/api/roles", trainee, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Role with this name already exists", env.Message)

	w, _ = s.do(http.MethodPost, "/api/roles", map[string]interface{}{"name": "Intern", "permissions": []string{"coffee.make"}}, s.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/roles/"+id, nil, s.token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmployeeRules(t *testing.T) {
	s := newTestServer(t)
	desk := s.roleID(models.RoleReceptionist)

	employee := map[string]interface{}{
		"email":    "desk@glow.test",
		"name":     "Nisha",
		"password": "front-desk-1",
		"roleId":   desk,
	}
	s.create("/api/employees", employee)

	employee["email"] = "DESK@glow.test"
	w, env := s.do(http.MethodPost, "/api/employees", employee, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", env.Message)

	var owner models.User
	require.NoError(t, s.db.Where("email = ?", "owner@glow.test").First(&owner).Error)
	self := "/api/employees/" + owner.ID.String()

	w, env = s.do(http.MethodPut, self, map[string]interface{}{"roleId": desk}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You cannot change your own role", env.Message)

	w, env = s.do(http.MethodPut, self, map[string]interface{}{"isActive": false}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You cannot deactivate your own account", env.Message)

	w, _ = s.do(http.MethodDelete, self, nil, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPut, self, map[string]interface{}{"name": "Meera R"}, s.token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductSKUIsUniquePerSalon(t *testing.T) {
	s := newTestServer(t)
	s.create("/api/products", map[string]interface{}{"name": "Shampoo", "sku": "shmp-01", "price": "12", "stock": 5})

	w, env := s.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "Shampoo XL", "sku": "SHMP-01", "price": "18"}, s.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Product with this SKU already exists", env.Message)
}

func TestInvoiceFilters(t *testing.T) {
	s := newTestServer(t)
	b := s.seed()
	s.checkout(s.book(b, time.Now().Add(time.Hour)), true)
	s.checkout(s.book(b, time.Now().Add(3*time.Hour)), false)

	count := func(query string) int64 {
		t.Helper()
		w, env := s.do(http.MethodGet, "/api/invoices"+query, nil, s.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var page struct {
			Items []models.Invoice `json:"items"`
			Total int64            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Items, int(page.Total))
		return page.Total
	}

	assert.EqualValues(t, 2, count(""))
	assert.EqualValues(t, 1, count("?status=paid"))
	assert.EqualValues(t, 1, count("?status=unpaid"))
	assert.EqualValues(t, 0, count("?status=void"))
	assert.EqualValues(t, 0, count("?from=2000-01-01&to=2000-01-31"))

	yesterday := time.Now().AddDate(0, 0, -1).Format(utils.DayLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DayLayout)
	assert.EqualValues(t, 2, count("?from="+yesterday+"&to="+tomorrow))

	for _, query := range []string{"?status=refunded", "?from=2024-13-01", "?from=" + tomorrow + "&to=" + yesterday, "?customerId=nope"} {
		w, env := s.do(http.MethodGet, "/api/invoices"+query, nil, s.token)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "query %s", query)
		assert.False(t, env.Success)
	}
}

func TestDashboardAndReports(t *testing.T) {
	s := newTestServer(t)
	b := s.seed()
	s.checkout(s.book(b, time.Now().Add(time.Hour)), true)
	s.checkout(s.book(b, time.Now().Add(3*time.Hour)), false)

	w, env := s.do(http.MethodGet, "/api/dashboard", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var overview controllers.DashboardOverview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.EqualValues(t, 1, overview.TotalCustomers)
	assert.EqualValues(t, 1, overview.BusyStylists, "second appointment is billed but unpaid")
	assert.EqualValues(t, 0, overview.AvailableStylists)
	assert.True(t, overview.MonthlyRevenue.Equal(overview.TodayRevenue))
	assert.Truef(t, decimal.NewFromInt(30).Equal(overview.TodayRevenue), "today revenue %s", overview.TodayRevenue)
	require.Len(t, overview.RecentCustomers, 1)
	assert.Equal(t, "Asha", overview.RecentCustomers[0].Name)
	assert.Equal(t, "Haircut", overview.RecentCustomers[0].Service)

	w, env = s.do(http.MethodGet, "/api/reports", nil, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report controllers.AnalyticsSummary
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.InDelta(t, 30, report.CurrentMonthRevenue, 0.001)
	assert.InDelta(t, 100, report.MonthGrowth, 0.001)
	require.Len(t, report.TopServices, 1)
	assert.Equal(t, "Haircut", report.TopServices[0].Name)
	assert.Equal(t, 1, report.TopServices[0].Count)
	require.Len(t, report.TopCustomers, 1)
	assert.Equal(t, "Asha", report.TopCustomers[0].Name)
	assert.Equal(t, 1, report.QuickStats.TotalInvoices)
	assert.InDelta(t, 30, report.QuickStats.AvgOrderValue, 0.001)

	stylistToken, err := s.h.Tokens.Generate(uuid.New(), s.salonID(), models.RoleStylist,
		models.DefaultRolePermissions[models.RoleStylist])
	require.NoError(t, err)
	w, _ = s.do(http.MethodGet, "/api/dashboard", nil, stylistToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (s *testServer) salonID() uuid.UUID {
	s.t.Helper()
	var salon models.Salon
	require.NoError(s.t, s.db.First(&salon).Error)
	return salon.ID
}
