// Package metrics holds the counters reported by the credential service.
package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

// Metrics are the service counters. Label values are set per observation
// with With("method", ...).
type Metrics struct {
	AuthSuccesses        metrics.Counter
	AuthFailures         metrics.Counter
	CodesIssued          metrics.Counter
	NotificationFailures metrics.Counter
}

// NewPrometheus creates the counters and registers them with reg.
func NewPrometheus(reg stdprom.Registerer) *Metrics {
	successes := stdprom.NewCounterVec(stdprom.CounterOpts{
		Name: "auth_successes",
		Help: "Count of successful credential operations",
	}, []string{"method"})
	failures := stdprom.NewCounterVec(stdprom.CounterOpts{
		Name: "auth_failures",
		Help: "Count of rejected credential operations",
	}, []string{"method"})
	issued := stdprom.NewCounterVec(stdprom.CounterOpts{
		Name: "auth_codes_issued",
		Help: "Count of one-time codes issued",
	}, []string{"purpose"})
	notifyFailures := stdprom.NewCounterVec(stdprom.CounterOpts{
		Name: "auth_notification_failures",
		Help: "Count of notifications that could not be sent",
	}, []string{"kind"})

	reg.MustRegister(successes, failures, issued, notifyFailures)

	return &Metrics{
		AuthSuccesses:        kitprom.NewCounter(successes),
		AuthFailures:         kitprom.NewCounter(failures),
		CodesIssued:          kitprom.NewCounter(issued),
		NotificationFailures: kitprom.NewCounter(notifyFailures),
	}
}

// NewDiscard returns counters that record nothing.
func NewDiscard() *Metrics {
	return &Metrics{
		AuthSuccesses:        discard.NewCounter(),
		AuthFailures:         discard.NewCounter(),
		CodesIssued:          discard.NewCounter(),
		NotificationFailures: discard.NewCounter(),
	}
}
