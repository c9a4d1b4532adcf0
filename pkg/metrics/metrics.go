package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "festival"

// Metrics exposes the progress of a search. A nil *Metrics is valid and records nothing
type Metrics struct {
	Incumbents *prometheus.CounterVec
	BestDays   *prometheus.GaugeVec
	Iterations *prometheus.CounterVec
	Nodes      *prometheus.CounterVec
	Repairs    *prometheus.CounterVec
}

// New creates the collectors and registers them on registerer
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Incumbents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incumbents_total",
			Help:      "Schedules recorded because they improved the best known number of days.",
		}, []string{"strategy"}),
		BestDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_days",
			Help:      "Number of days of the best schedule found so far.",
		}, []string{"strategy"}),
		Iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Randomized constructions performed by the local search.",
		}, []string{"strategy"}),
		Nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_nodes_total",
			Help:      "Nodes explored by the exhaustive search.",
		}, []string{"strategy"}),
		Repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repairs_total",
			Help:      "Simulated annealing repairs by outcome.",
		}, []string{"outcome"}),
	}

	for _, collector := range []prometheus.Collector{m.Incumbents, m.BestDays, m.Iterations, m.Nodes, m.Repairs} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveIncumbent(strategy string, days int) {
	if m == nil {
		return
	}
	m.Incumbents.WithLabelValues(strategy).Inc()
	m.BestDays.WithLabelValues(strategy).Set(float64(days))
}

func (m *Metrics) AddIterations(strategy string, iterations int) {
	if m == nil {
		return
	}
	m.Iterations.WithLabelValues(strategy).Add(float64(iterations))
}

func (m *Metrics) AddNodes(strategy string, nodes uint64) {
	if m == nil {
		return
	}
	m.Nodes.WithLabelValues(strategy).Add(float64(nodes))
}

func (m *Metrics) ObserveRepair(repaired bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if repaired {
		outcome = "repaired"
	}
	m.Repairs.WithLabelValues(outcome).Inc()
}
