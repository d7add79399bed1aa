package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonpro-suite/config"
	"salonpro-suite/controllers"
	"salonpro-suite/routes"
	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, dotenv, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	if !dotenv {
		logger.Info("no .env file found")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := config.ConnectDB(cfg, logger)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	utils.RegisterValidators()

	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		secret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	loyalty := services.NewLoyaltyService(db, logger)
	inventory := services.NewInventoryService(db, logger)
	sales := services.NewSalesService(db)
	incentives := services.NewIncentiveService(db)
	notifier := services.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
		cfg.Twilio.PhoneNumber, cfg.Twilio.WhatsAppNumber)
	reminders := services.NewReminderService(db, logger, notifier)

	h := &controllers.Handler{
		DB:           db,
		Log:          logger,
		Tokens:       utils.NewTokenManager(secret, cfg.JWTExpiry()),
		SecureCookie: cfg.IsProduction(),
		Accounts:     services.NewAccountService(db, logger),
		Appointments: services.NewAppointmentService(db, logger, loyalty, inventory, sales, incentives),
		Loyalty:      loyalty,
		Inventory:    inventory,
		Incentives:   incentives,
		Sales:        sales,
		Reminders:    reminders,
	}

	redisClient, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, idempotency keys disabled", zap.Error(err))
	} else if redisClient != nil {
		defer redisClient.Close()
		h.Idempotency = services.NewRedisIdempotencyStore(redisClient, "workflow")
	}

	if cfg.Reminder.Enabled {
		if err := reminders.StartScheduler(cfg.Reminder.Schedule); err != nil {
			return err
		}
		defer reminders.Stop()
		logger.Info("reminder scheduler started", zap.String("schedule", cfg.Reminder.Schedule))
	}

	r := routes.SetupRouter(h, cfg, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.Int("routes", len(r.Routes())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
