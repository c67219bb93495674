package obs

import (
	"github.com/AlexKimmel/ratelog/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Decisions     *prometheus.CounterVec
	NoticeRepeats prometheus.Histogram
	NoticeWindow  prometheus.Histogram
	SinkErrors    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelog_decisions_total",
				Help: "Messages observed, by decision",
			},
			[]string{"action"},
		),
		NoticeRepeats: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ratelog_notice_repeats",
				Help:    "Repeat count carried by each notice",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		NoticeWindow: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ratelog_notice_window_seconds",
				Help:    "Accumulated time between repeats carried by each notice",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
		SinkErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ratelog_sink_errors_total",
				Help: "Output lines the sink failed to write",
			},
		),
	}

	// pre-create series so every action shows up at zero
	for _, a := range []ratelimit.Action{ratelimit.Emit, ratelimit.Silent, ratelimit.Notice} {
		m.Decisions.WithLabelValues(a.String())
	}

	reg.MustRegister(m.Decisions, m.NoticeRepeats, m.NoticeWindow, m.SinkErrors)
	return m
}

func (m *Metrics) Decided(dec ratelimit.Decision) {
	m.Decisions.WithLabelValues(dec.Action.String()).Inc()
	if dec.Action == ratelimit.Notice {
		m.NoticeRepeats.Observe(float64(dec.Count))
		m.NoticeWindow.Observe(dec.Duration.Seconds())
	}
}

func (m *Metrics) SinkError() {
	m.SinkErrors.Inc()
}
