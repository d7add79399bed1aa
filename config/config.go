package config

import (
	"context"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DatabaseURL string `env:"DB_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB, default=0"`

	JWTSecret      string `env:"JWT_SECRET"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS, default=24"`

	CORSOrigins string `env:"CORS_ORIGINS, default=http://localhost:3000"`

	Twilio   TwilioConfig
	Reminder ReminderConfig
}

type TwilioConfig struct {
	AccountSID     string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken      string `env:"TWILIO_AUTH_TOKEN"`
	PhoneNumber    string `env:"TWILIO_PHONE_NUMBER"`
	WhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`
}

type ReminderConfig struct {
	// Cron schedule for the daily reminder run (every day at 9 AM by default).
	Schedule string `env:"REMINDER_CRON, default=0 9 * * *"`
	Enabled  bool   `env:"REMINDERS_ENABLED, default=true"`
}

// Load reads .env (when present) and then the process environment.
func Load(ctx context.Context) (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, dotenv, err
	}
	return &cfg, dotenv, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
