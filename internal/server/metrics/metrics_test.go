package metrics

import (
	"testing"

	stdprom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus_CountsByLabel(t *testing.T) {
	reg := stdprom.NewRegistry()
	m := NewPrometheus(reg)

	m.AuthSuccesses.With("method", "login").Add(1)
	m.AuthSuccesses.With("method", "login").Add(1)
	m.AuthFailures.With("method", "verify_otp").Add(1)
	m.CodesIssued.With("purpose", "verification").Add(1)
	m.NotificationFailures.With("kind", "otp").Add(1)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			values[f.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["auth_successes"])
	assert.Equal(t, 1.0, values["auth_failures"])
	assert.Equal(t, 1.0, values["auth_codes_issued"])
	assert.Equal(t, 1.0, values["auth_notification_failures"])
}

func TestNewPrometheus_DoubleRegistrationPanics(t *testing.T) {
	reg := stdprom.NewRegistry()
	NewPrometheus(reg)
	assert.Panics(t, func() { NewPrometheus(reg) })
}

func TestNewDiscard(t *testing.T) {
	m := NewDiscard()
	assert.NotPanics(t, func() {
		m.AuthSuccesses.With("method", "login").Add(1)
		m.CodesIssued.With("purpose", "password_reset").Add(1)
	})
}
