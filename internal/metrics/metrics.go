// Package metrics экспортирует счётчики работы гиперэвристик в Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// Recorder - набор метрик одного реестра. Нулевой указатель допустим и ничего не пишет.
type Recorder struct {
	applications *prometheus.CounterVec
	decisions    *prometheus.CounterVec
	best         *prometheus.GaugeVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		applications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hh_heuristic_applications_total",
			Help: "Low-level heuristic applications by strategy and heuristic id",
		}, []string{"strategy", "heuristic"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hh_move_decisions_total",
			Help: "Move acceptance decisions by strategy",
		}, []string{"strategy", "decision"}),
		best: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hh_best_objective",
			Help: "Best objective value of the last finished run",
		}, []string{"strategy"}),
	}
}

func (r *Recorder) Applied(strategy string, heuristic int) {
	if r == nil {
		return
	}
	r.applications.WithLabelValues(strategy, strconv.Itoa(heuristic)).Inc()
}

func (r *Recorder) Decision(strategy string, accepted bool) {
	if r == nil {
		return
	}
	d := DecisionRejected
	if accepted {
		d = DecisionAccepted
	}
	r.decisions.WithLabelValues(strategy, d).Inc()
}

func (r *Recorder) Best(strategy string, v float64) {
	if r == nil {
		return
	}
	r.best.WithLabelValues(strategy).Set(v)
}

// ApplicationsFor возвращает счётчик применений эвристики.
func (r *Recorder) ApplicationsFor(strategy string, heuristic int) prometheus.Counter {
	return r.applications.WithLabelValues(strategy, strconv.Itoa(heuristic))
}

// DecisionsFor возвращает счётчик решений о принятии хода.
func (r *Recorder) DecisionsFor(strategy string, accepted bool) prometheus.Counter {
	d := DecisionRejected
	if accepted {
		d = DecisionAccepted
	}
	return r.decisions.WithLabelValues(strategy, d)
}
