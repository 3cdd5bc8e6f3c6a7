package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the generation collectors
type Metrics struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	recipesSavedTotal  prometheus.Counter
	signUpsTotal       prometheus.Counter
}

// NewMetrics registers the service collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_generations_total",
				Help: "Total number of upstream recipe generations",
			},
			[]string{"provider", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipe_generation_duration_seconds",
				Help:    "Upstream recipe generation latency",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		recipesSavedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "saved_recipes_created_total",
				Help: "Total number of recipes saved",
			},
		),
		signUpsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of sign-ups",
			},
		),
	}
}

func (m *Metrics) observeGeneration(provider, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(provider, status).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) recipeSaved() {
	if m == nil {
		return
	}
	m.recipesSavedTotal.Inc()
}

func (m *Metrics) signedUp() {
	if m == nil {
		return
	}
	m.signUpsTotal.Inc()
}
