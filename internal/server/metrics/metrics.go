// Package metrics exposes Prometheus instruments for the auth flows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives auth flow measurements.
type Recorder interface {
	// Operation records one finished Login, RefreshSession or Logout call
	// with its outcome code ("ok" or a catalogue code).
	Operation(op, outcome string, elapsed time.Duration)
	// TokensRevoked counts refresh records removed for reason
	// ("rotation", "logout", "expired").
	TokensRevoked(reason string, n int64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Operation(string, string, time.Duration) {}
func (Nop) TokensRevoked(string, int64)            {}

// Prometheus is a Recorder backed by client_golang collectors.
type Prometheus struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	revoked    *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophauth",
			Name:      "auth_operations_total",
			Help:      "Auth operations by name and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gophauth",
			Name:      "auth_operation_duration_seconds",
			Help:      "Auth operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		revoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophauth",
			Name:      "refresh_tokens_revoked_total",
			Help:      "Refresh token records removed, by reason.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{p.operations, p.latency, p.revoked} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Operation(op, outcome string, elapsed time.Duration) {
	p.operations.WithLabelValues(op, outcome).Inc()
	p.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (p *Prometheus) TokensRevoked(reason string, n int64) {
	if n > 0 {
		p.revoked.WithLabelValues(reason).Add(float64(n))
	}
}
