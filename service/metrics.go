package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Jurgenvdlecq/seatemail/model"
	"github.com/Jurgenvdlecq/seatemail/quote"
)

// Processing stages reported in the failure counter.
const (
	StageUpload  = "stage"
	StageOpen    = "open"
	StageConvert = "convert"
)

// Metrics counts processed quotes.
type Metrics struct {
	processed *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offerte_processed_total",
			Help: "Quotes analyzed, by detected variant.",
		}, []string{"variant"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offerte_field_dropped_total",
			Help: "Fields left empty during extraction, by field and reason.",
		}, []string{"field", "reason"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "offerte_processing_failures_total",
			Help: "Uploads that could not be processed, by stage.",
		}, []string{"stage"}),
	}
}

func (m *Metrics) observe(v model.Variant, drops []quote.Drop) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(string(v)).Inc()
	for _, d := range drops {
		m.dropped.WithLabelValues(string(d.Field), string(d.Reason)).Inc()
	}
}

func (m *Metrics) fail(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}
