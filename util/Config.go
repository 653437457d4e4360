package util

import (
	"time"

	"batterymart/provider"
)

type AppConfig struct {
	Name string
	Env  string // dev, test, prod
	Port string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Pass       string
	SenderName string
}

// Enabled reports whether outbound email is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type VerificationConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
	Timeout  time.Duration

	// AutoApprove approves the account or store as soon as the registry matches.
	// Off by default: a match only marks the subject verified and an admin approves.
	AutoApprove bool
}

// Provider converts to the client's own config.
func (c VerificationConfig) Provider() provider.Config {
	return provider.Config{
		ClientID: c.ClientID,
		Secret:   c.Secret,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}

type RateLimitConfig struct {
	Max         int
	Window      time.Duration
	Strikes     int
	BanDuration time.Duration
}

type CleanupConfig struct {
	Schedule                  string // cron spec, minute resolution
	NotificationRetentionDays int
	RecordRetentionDays       int
}

// AdminConfig seeds the first admin account. Empty Email skips seeding.
type AdminConfig struct {
	Email string
	Name  string
}

type Config struct {
	App          AppConfig
	Admin        AdminConfig
	DB           DBConfig
	SMTP         SMTPConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Cleanup      CleanupConfig
}

// LoadConfig reads the process environment once at startup.
func LoadConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "BatteryMart"),
			Env:  getEnv("APP_ENV", "dev"),
			Port: getEnv("PORT", "4000"),
		},
		Admin: AdminConfig{
			Email: getEnv("ADMIN_EMAIL", ""),
			Name:  getEnv("ADMIN_NAME", "Marketplace Admin"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "batterymart"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvInt("SMTP_PORT", 587),
			User:       getEnv("SMTP_USER", ""),
			Pass:       getEnv("SMTP_PASS", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "BatteryMart"),
		},
		Verification: VerificationConfig{
			ClientID:    getEnv("QOREID_CLIENT_ID", ""),
			Secret:      getEnv("QOREID_SECRET", ""),
			BaseURL:     getEnv("QOREID_BASE_URL", provider.DefaultBaseURL),
			Timeout:     getEnvDuration("QOREID_TIMEOUT", provider.DefaultTimeout),
			AutoApprove: getEnvBool("VERIFICATION_AUTO_APPROVE", false),
		},
		RateLimit: RateLimitConfig{
			Max:         getEnvInt("VERIFY_RATE_MAX", 5),
			Window:      getEnvDuration("VERIFY_RATE_WINDOW", time.Minute),
			Strikes:     getEnvInt("VERIFY_RATE_STRIKES", 3),
			BanDuration: getEnvDuration("VERIFY_BAN_DURATION", 10*time.Minute),
		},
		Cleanup: CleanupConfig{
			Schedule:                  getEnv("CLEANUP_SCHEDULE", "0 12 * * *"),
			NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 30),
			RecordRetentionDays:       getEnvInt("VERIFICATION_RECORD_RETENTION_DAYS", 365),
		},
	}
}
