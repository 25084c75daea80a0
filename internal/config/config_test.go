package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_USER", "worker")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "cinetick")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()

	assert.Equal(t, "bookings", cfg.QueueName)
	assert.Equal(t, "bookings.parked", cfg.ParkedQueueName)
	assert.Equal(t, 1, cfg.Prefetch)
	assert.Equal(t, uint64(1), cfg.DefaultShowID)
	assert.Equal(t, 50.00, cfg.TicketAmount)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.True(t, cfg.UpdateLegacySeat)
}

func TestLoadPrefetchNeverBelowOne(t *testing.T) {
	// Qos(0) is unlimited prefetch in AMQP, so a zero or negative setting
	// must not reach the broker.
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "zero clamps to one", value: "0", want: 1},
		{name: "negative clamps to one", value: "-3", want: 1},
		{name: "explicit value kept", value: "4", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("PREFETCH", tt.value)
			assert.Equal(t, tt.want, Load().Prefetch)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOOKING_QUEUE", "bookings.test")
	t.Setenv("PAYMENT_DELAY", "50ms")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("UPDATE_LEGACY_SEAT", "false")

	cfg := Load()

	assert.Equal(t, "bookings.test", cfg.QueueName)
	assert.Equal(t, 50*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, 2, cfg.RetryMaxAttempts)
	assert.False(t, cfg.UpdateLegacySeat)
}
