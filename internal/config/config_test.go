package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Sweep.ReminderLead)
	assert.Equal(t, 52, cfg.RecurrenceMaxOccurrences)
	assert.False(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "Asia/Taipei")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("REMINDER_LEAD", "30m")
	t.Setenv("RECURRENCE_MAX_OCCURRENCES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Taipei", cfg.Location.String())
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 30*time.Minute, cfg.Sweep.ReminderLead)
	assert.Equal(t, 10, cfg.RecurrenceMaxOccurrences)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dsn", env: map[string]string{"DB_DSN": "", "JWT_SECRET": "x"}},
		{name: "missing jwt secret", env: map[string]string{"DB_DSN": "dsn", "JWT_SECRET": ""}},
		{name: "bad timezone", env: map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{name: "bad storage driver", env: map[string]string{"STORAGE_DRIVER": "ftp"}},
		{name: "s3 without bucket", env: map[string]string{"STORAGE_DRIVER": "s3"}},
		{name: "bad ttl", env: map[string]string{"AVAILABILITY_CACHE_TTL": "soon"}},
		{name: "zero occurrences", env: map[string]string{"RECURRENCE_MAX_OCCURRENCES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
