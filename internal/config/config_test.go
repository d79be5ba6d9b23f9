package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "relay")
	t.Setenv("DB_NAME", "alert_relay")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.DefaultTimezone)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 200, cfg.CleanupIntervalEvents)
	assert.Equal(t, 5*time.Second, cfg.WhatsAppTimeout)
	assert.Equal(t, 60*time.Second, cfg.HealthCheckInterval)
	assert.Equal(t, 180, cfg.OfflineThresholdSec)
	assert.Equal(t, 900, cfg.HealthAlertCooldown)
	assert.True(t, cfg.CameraHealthEnabled)
	assert.True(t, cfg.SMTPStartTLS)
	assert.Empty(t, cfg.EmailRecipients)
}

func TestLoad_CameraHealthCanBeDisabled(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "relay")
	t.Setenv("DB_NAME", "alert_relay")
	t.Setenv("CAMERA_HEALTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.CameraHealthEnabled)
}

func TestLoad_MissingDatabaseIsFatal(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RecipientListParsing(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "relay")
	t.Setenv("DB_NAME", "alert_relay")
	t.Setenv("EMAIL_RECIPIENTS", "ops@example.com, security@example.com ,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com", "security@example.com"}, cfg.EmailRecipients)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "relay",
		DBPassword: "secret",
		DBName:     "alert_relay",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=relay password=secret dbname=alert_relay sslmode=disable", cfg.DSN())
}
