package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/pious/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collectors fed by session hooks.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Transitions     *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pious_engine_commands_total",
				Help: "Engine commands by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pious_engine_command_duration_seconds",
				Help:    "Round trip time of engine commands",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"verb"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pious_session_transitions_total",
				Help: "Session state transitions",
			},
			[]string{"from", "to"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pious_tree_info_lookups_total",
				Help: "Tree info cache lookups by tier and result",
			},
			[]string{"tier", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.CommandDuration, m.Transitions, m.CacheLookups)
	}
	return m
}

// Hooks feeds m and logs degraded sessions. Either argument may be nil.
func Hooks(m *Metrics, logger *slog.Logger) domain.SessionHooks {
	return domain.SessionHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			if m != nil {
				m.Commands.WithLabelValues(e.Verb, e.Outcome).Inc()
				m.CommandDuration.WithLabelValues(e.Verb).Observe(e.Duration.Seconds())
			}
			if logger != nil && e.Outcome != domain.OutcomeOK {
				logger.Info("engine command failed", "verb", e.Verb, "outcome", e.Outcome, "duration", e.Duration)
			}
		},
		OnStateChange: func(ctx context.Context, e *domain.StateEvent) {
			if m != nil {
				m.Transitions.WithLabelValues(e.From, e.To).Inc()
			}
			if logger != nil {
				logger.Info("session_state", "op", e.Op, "from", e.From, "to", e.To)
			}
		},
		OnCacheLookup: func(ctx context.Context, e *domain.CacheEvent) {
			if m == nil {
				return
			}
			result := "miss"
			if e.Hit {
				result = "hit"
			}
			m.CacheLookups.WithLabelValues(e.Tier, result).Inc()
		},
	}
}
