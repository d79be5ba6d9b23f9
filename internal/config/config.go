package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full relay process configuration, read from the environment
// once at startup. A .env file in the working directory is loaded first when
// present.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ZoneConfigPath  string
	DefaultTimezone string

	RetentionDays         int
	CleanupIntervalEvents int

	WhatsAppWebhookURL string
	WhatsAppToken      string
	WhatsAppTimeout    time.Duration

	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SMTPSender      string
	SMTPStartTLS    bool
	EmailRecipients []string

	CameraHealthEnabled bool
	HealthCheckInterval time.Duration
	OfflineThresholdSec int
	HealthAlertCooldown int

	RedisAddr        string
	IngestRateLimit  int
	IngestRateWindow time.Duration

	NATSURL     string
	NATSSubject string

	JWTSigningKey string

	LogLevel string
}

// Load reads configuration from the environment. Only the database settings
// are required; every optional integration stays off until its variable is set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ZoneConfigPath:  getEnv("ZONE_CONFIG_PATH", "configs/zones.yaml"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/Sao_Paulo"),

		RetentionDays:         getEnvInt("RETENTION_DAYS", 30),
		CleanupIntervalEvents: getEnvInt("CLEANUP_INTERVAL_EVENTS", 200),

		WhatsAppWebhookURL: os.Getenv("WHATSAPP_WEBHOOK_URL"),
		WhatsAppToken:      os.Getenv("WHATSAPP_API_TOKEN"),
		WhatsAppTimeout:    time.Duration(getEnvInt("WHATSAPP_TIMEOUT_SEC", 5)) * time.Second,

		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPSender:      os.Getenv("SMTP_SENDER"),
		SMTPStartTLS:    getEnv("SMTP_STARTTLS", "true") == "true",
		EmailRecipients: splitList(os.Getenv("EMAIL_RECIPIENTS")),

		CameraHealthEnabled: getEnv("CAMERA_HEALTH_ENABLED", "true") == "true",
		HealthCheckInterval: time.Duration(getEnvInt("HEALTH_CHECK_INTERVAL_SEC", 60)) * time.Second,
		OfflineThresholdSec: getEnvInt("OFFLINE_THRESHOLD_SEC", 180),
		HealthAlertCooldown: getEnvInt("HEALTH_ALERT_COOLDOWN_SEC", 900),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		IngestRateLimit:  getEnvInt("INGEST_RATE_LIMIT", 100),
		IngestRateWindow: time.Duration(getEnvInt("INGEST_RATE_WINDOW_SEC", 1)) * time.Second,

		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: getEnv("NATS_SUBJECT", "alerts.decisions"),

		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("DB_HOST, DB_USER and DB_NAME must be set")
	}
	return cfg, nil
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
