package engine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wildfunctions/function_finder/pkg/population"
)

// Metrics exports run progress to Prometheus. It observes every generation
// of every attempt.
type Metrics struct {
	generations        prometheus.Counter
	bestError          prometheus.Gauge
	meanError          prometheus.Gauge
	finiteIndividuals  prometheus.Gauge
	meanSize           prometheus.Gauge
	generationDuration prometheus.Histogram
	attempts           *prometheus.CounterVec
	evaluations        prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		generations: f.NewCounter(prometheus.CounterOpts{
			Name: "function_finder_generations_total",
			Help: "Generations evolved across all attempts",
		}),
		bestError: f.NewGauge(prometheus.GaugeOpts{
			Name: "function_finder_best_error",
			Help: "Best error of the latest generation",
		}),
		meanError: f.NewGauge(prometheus.GaugeOpts{
			Name: "function_finder_mean_error",
			Help: "Mean finite error of the latest generation",
		}),
		finiteIndividuals: f.NewGauge(prometheus.GaugeOpts{
			Name: "function_finder_finite_individuals",
			Help: "Individuals of the latest generation with a finite error",
		}),
		meanSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "function_finder_mean_tree_size",
			Help: "Mean node count of the latest generation",
		}),
		generationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "function_finder_generation_duration_seconds",
			Help:    "Wall time of one reproduce and score step",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "function_finder_attempts_total",
			Help: "Finished attempts by outcome",
		}, []string{"found"}),
		evaluations: f.NewCounter(prometheus.CounterOpts{
			Name: "function_finder_evaluations_total",
			Help: "Trees evaluated against the dataset",
		}),
	}
}

// ObserveGeneration implements population.Observer.
func (m *Metrics) ObserveGeneration(g population.Generation) {
	m.bestError.Set(g.BestError)
	m.meanError.Set(g.Stats.Mean)
	m.finiteIndividuals.Set(float64(g.Stats.Finite))
	m.meanSize.Set(g.Stats.MeanSize)
	if g.Index == 0 {
		return
	}
	m.generations.Inc()
	m.generationDuration.Observe(g.Elapsed.Seconds())
}

func (m *Metrics) observeAttempt(found bool, evaluations int64) {
	m.attempts.WithLabelValues(strconv.FormatBool(found)).Inc()
	m.evaluations.Add(float64(evaluations))
}
