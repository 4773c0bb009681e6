package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the walkthrough collectors.
type Metrics struct {
	registry *prometheus.Registry

	StepViews         *prometheus.CounterVec
	StepMissing       *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	RendersSuperseded prometheus.Counter
	FragmentFailures  *prometheus.CounterVec
	ExternalLinks     *prometheus.CounterVec
	Sessions          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a private registry,
// so several servers in one process (tests) do not collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walkthrough_step_views_total",
				Help: "Total number of step entries",
			},
			[]string{"step_id"},
		),
		StepMissing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walkthrough_step_not_found_total",
				Help: "Navigations to step ids missing from the workflow",
			},
			[]string{"step_id"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walkthrough_render_duration_seconds",
				Help:    "Duration of step renders, fragment fetch included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step_id"},
		),
		RendersSuperseded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walkthrough_renders_superseded_total",
				Help: "Renders discarded because a newer navigation started",
			},
		),
		FragmentFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walkthrough_fragment_failures_total",
				Help: "Content fragments that could not be fetched",
			},
			[]string{"step_id"},
		),
		ExternalLinks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walkthrough_external_links_total",
				Help: "External links opened from step actions",
			},
			[]string{"step_id"},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "walkthrough_sessions",
				Help: "Live HTTP sessions",
			},
		),
	}
	m.registry.MustRegister(
		m.StepViews,
		m.StepMissing,
		m.RenderDuration,
		m.RendersSuperseded,
		m.FragmentFailures,
		m.ExternalLinks,
		m.Sessions,
	)
	return m
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepViews.WithLabelValues(e.StepID).Inc()
		},
		OnStepMissing: func(ctx context.Context, e *domain.StepEvent) {
			m.StepMissing.WithLabelValues(e.StepID).Inc()
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			if !e.Applied {
				m.RendersSuperseded.Inc()
				return
			}
			m.RenderDuration.WithLabelValues(e.StepID).Observe(e.Duration.Seconds())
			if e.FragmentErr != nil {
				m.FragmentFailures.WithLabelValues(e.StepID).Inc()
			}
		},
		OnExternalLink: func(ctx context.Context, e *domain.LinkEvent) {
			m.ExternalLinks.WithLabelValues(e.StepID).Inc()
		},
	}
}
