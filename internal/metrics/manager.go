// Package metrics holds the Prometheus collectors exported on /metrics.
// A nil *Manager is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests          *prometheus.CounterVec
	CounterWorkoutsStarted   *prometheus.CounterVec
	CounterWorkoutsFinished  *prometheus.CounterVec
	CounterWorkoutsCancelled prometheus.Counter
	CounterSetsCompleted     prometheus.Counter
	CounterShoppingRecipes   prometheus.Counter
	CounterImports           *prometheus.CounterVec

	// gauges
	GaugeRequests      prometheus.Gauge
	GaugeActiveSession prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistWorkoutDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("dianafit", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("dianafit", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterWorkoutsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_started",
			Help:      "The total number of started workout sessions",
		}, []string{"mode"}),
		CounterWorkoutsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_finished",
			Help:      "The total number of finished workout sessions",
		}, []string{"mode"}),
		CounterWorkoutsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_cancelled",
			Help:      "The total number of cancelled workout sessions",
		}),
		CounterSetsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_completed",
			Help:      "The total number of completed sets",
		}),
		CounterShoppingRecipes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shopping_recipes_added",
			Help:      "The total number of recipes added to the shopping list",
		}),
		CounterImports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backup_imports",
			Help:      "The total number of backup imports by result",
		}, []string{"result"}),

		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeActiveSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_session",
			Help:      "1 while a workout session is open",
		}),

		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
		HistWorkoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{300, 600, 1200, 1800, 2700, 3600, 5400, 7200},
			Name:      "workout_duration_seconds",
			Help:      "Duration of finished workouts in seconds",
		}),
	}
}

func (m *Manager) WorkoutStarted(mode string) {
	if m == nil {
		return
	}
	m.CounterWorkoutsStarted.WithLabelValues(mode).Inc()
	m.GaugeActiveSession.Set(1)
}

func (m *Manager) WorkoutFinished(mode string, seconds int) {
	if m == nil {
		return
	}
	m.CounterWorkoutsFinished.WithLabelValues(mode).Inc()
	m.HistWorkoutDuration.Observe(float64(seconds))
	m.GaugeActiveSession.Set(0)
}

func (m *Manager) WorkoutCancelled() {
	if m == nil {
		return
	}
	m.CounterWorkoutsCancelled.Inc()
	m.GaugeActiveSession.Set(0)
}

func (m *Manager) SetCompleted() {
	if m == nil {
		return
	}
	m.CounterSetsCompleted.Inc()
}

func (m *Manager) ShoppingRecipeAdded() {
	if m == nil {
		return
	}
	m.CounterShoppingRecipes.Inc()
}

// BackupImported records an import attempt; result is "ok" or "invalid".
func (m *Manager) BackupImported(result string) {
	if m == nil {
		return
	}
	m.CounterImports.WithLabelValues(result).Inc()
}
