package routes

import (
	"time"

	"salonpro-suite/config"
	"salonpro-suite/controllers"
	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRouter(h *controllers.Handler, cfg *config.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(log))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)

		auth.GET("/me", utils.AuthMiddleware(h.Tokens), h.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(h.Tokens))
	{
		readCustomers := utils.RequirePermission(models.PermCustomersRead, models.PermCustomersManage)
		manageCustomers := utils.RequirePermission(models.PermCustomersManage)
		customers := api.Group("/customers")
		{
			customers.POST("", manageCustomers, h.CreateCustomer)
			customers.GET("", readCustomers, h.GetCustomers)
			customers.GET("/:id", readCustomers, h.GetCustomer)
			customers.PUT("/:id", manageCustomers, h.UpdateCustomer)
			customers.DELETE("/:id", manageCustomers, h.DeleteCustomer)
			customers.GET("/:id/loyalty", readCustomers, h.GetCustomerLoyalty)
			customers.POST("/:id/loyalty/adjust", utils.RequirePermission(models.PermLoyaltyManage), h.AdjustCustomerLoyalty)
			customers.GET("/:id/appointments", utils.RequirePermission(models.PermAppointmentsRead), h.GetCustomerAppointments)
		}

		stylists := api.Group("/stylists")
		{
			// Front desk needs availability to seat walk-ins.
			stylists.GET("/availability", utils.RequirePermission(models.PermAppointmentsRead, models.PermStylistsManage), h.GetStylistAvailability)

			stylists.Use(utils.RequirePermission(models.PermStylistsManage))
			stylists.POST("", h.CreateStylist)
			stylists.GET("", h.GetStylists)
			stylists.GET("/:id", h.GetStylist)
			stylists.PUT("/:id", h.UpdateStylist)
			stylists.PUT("/:id/status", h.UpdateStylistStatus)
			stylists.DELETE("/:id", h.DeleteStylist)
			stylists.GET("/:id/incentives", h.GetStylistIncentives)
		}
		api.GET("/incentives/summary", utils.RequirePermission(models.PermStylistsManage, models.PermReportsRead), h.GetIncentiveSummary)

		// Service routes
		services := api.Group("/services")
		{
			services.GET("", utils.RequirePermission(models.PermAppointmentsRead, models.PermCatalogManage), h.GetServices)
			services.GET("/:id", utils.RequirePermission(models.PermAppointmentsRead, models.PermCatalogManage), h.GetService)
			services.POST("", utils.RequirePermission(models.PermCatalogManage), h.CreateService)
			services.PUT("/:id", utils.RequirePermission(models.PermCatalogManage), h.UpdateService)
			services.DELETE("/:id", utils.RequirePermission(models.PermCatalogManage), h.DeleteService)
		}

		products := api.Group("/products")
		{
			products.GET("", utils.RequirePermission(models.PermBillingManage, models.PermCatalogManage, models.PermInventoryManage), h.GetProducts)
			products.GET("/low-stock", utils.RequirePermission(models.PermCatalogManage, models.PermInventoryManage), h.GetLowStockProducts)
			products.GET("/:id", utils.RequirePermission(models.PermBillingManage, models.PermCatalogManage, models.PermInventoryManage), h.GetProduct)
			products.POST("", utils.RequirePermission(models.PermCatalogManage), h.CreateProduct)
			products.PUT("/:id", utils.RequirePermission(models.PermCatalogManage), h.UpdateProduct)
			products.DELETE("/:id", utils.RequirePermission(models.PermCatalogManage), h.DeleteProduct)
			products.POST("/:id/adjust-stock", utils.RequirePermission(models.PermInventoryManage), h.AdjustProductStock)
			products.GET("/:id/movements", utils.RequirePermission(models.PermInventoryManage), h.GetProductMovements)
		}

		procurements := api.Group("/procurements", utils.RequirePermission(models.PermInventoryManage))
		{
			procurements.POST("", h.CreateProcurement)
			procurements.GET("", h.GetProcurements)
			procurements.GET("/:id", h.GetProcurement)
		}

		api.GET("/daily-sales", utils.RequirePermission(models.PermReportsRead), h.GetDailySales)

		// Invoice routes
		invoices := api.Group("/invoices", utils.RequirePermission(models.PermBillingManage, models.PermReportsRead))
		{
			invoices.GET("", h.GetInvoices)
			invoices.GET("/:id", h.GetInvoice)
		}

		appointments := api.Group("/appointments")
		{
			appointments.GET("", utils.RequirePermission(models.PermAppointmentsRead), h.GetAppointments)
			appointments.GET("/:id", utils.RequirePermission(models.PermAppointmentsRead), h.GetAppointment)
			appointments.POST("", utils.RequirePermission(models.PermAppointmentsManage), h.CreateAppointment)
			appointments.PUT("/:id", utils.RequirePermission(models.PermAppointmentsManage), h.UpdateAppointment)
		}

		// Workflow transitions
		workflow := api.Group("/appointment/:id")
		{
			workflow.POST("/check-in", utils.RequirePermission(models.PermAppointmentsManage), h.CheckInAppointment)
			workflow.POST("/bill", utils.RequirePermission(models.PermBillingManage), h.BillAppointment)
			workflow.POST("/pay", utils.RequirePermission(models.PermBillingManage), h.PayAppointment)
			workflow.POST("/cancel", utils.RequirePermission(models.PermAppointmentsManage), h.CancelAppointment)
		}

		// Reports routes
		api.GET("/reports", utils.RequirePermission(models.PermReportsRead), h.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", utils.RequirePermission(models.PermReportsRead), h.GetDashboardOverview)

		manageUsers := utils.RequirePermission(models.PermUsersManage)
		api.GET("/permissions", manageUsers, h.GetPermissions)
		roles := api.Group("/roles", manageUsers)
		{
			roles.GET("", h.GetRoles)
			roles.POST("", h.CreateRole)
			roles.PUT("/:id", h.UpdateRole)
			roles.DELETE("/:id", h.DeleteRole)
		}

		employees := api.Group("/employees", manageUsers)
		{
			employees.GET("", h.GetEmployees)          // GET /api/employees
			employees.POST("", h.AddEmployee)          // POST /api/employees
			employees.PUT("/:id", h.UpdateEmployee)    // PUT /api/employees/:id
			employees.DELETE("/:id", h.DeleteEmployee) // DELETE /api/employees/:id
		}

		// Settings routes
		settings := api.Group("/settings", utils.RequirePermission(models.PermSettingsManage))
		{
			settings.GET("", h.GetProfile)
			settings.PUT("/salon", h.UpdateSalonProfile)
			settings.PUT("/hours", h.UpdateWorkingHours)
			settings.PUT("/notifications", h.UpdateNotificationSettings)
			settings.PUT("/loyalty", h.UpdateLoyaltySettings)
		}

		reminders := api.Group("/reminders", utils.RequirePermission(models.PermSettingsManage))
		{
			reminders.GET("/templates", h.GetReminderTemplates)
			reminders.POST("/templates", h.CreateReminderTemplate)
			reminders.GET("/templates/:id", h.GetReminderTemplate)
			reminders.PUT("/templates/:id", h.UpdateReminderTemplate)
			reminders.DELETE("/templates/:id", h.DeleteReminderTemplate)
			reminders.GET("/logs", h.GetReminderLogs)
			reminders.POST("/run", h.RunReminders)
		}
	}

	return r
}
