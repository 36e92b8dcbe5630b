package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/droidbridge/droidbridge/internal/bridge"
)

// Metrics counts dispatch outcomes. It implements bridge.Metrics so the
// router can report without knowing about prometheus.
type Metrics struct {
	commands    prometheus.Counter
	responses   *prometheus.CounterVec
	rateLimited prometheus.Counter
	dropped     *prometheus.CounterVec
	connections prometheus.Gauge
}

// NewMetrics builds and registers the counters.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "droidbridge",
			Name:      "commands_received_total",
			Help:      "Bridge commands received over the reviewer socket.",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "droidbridge",
			Name:      "responses_sent_total",
			Help:      "Callback responses delivered, by outcome status.",
		}, []string{"status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "droidbridge",
			Name:      "rate_limited_total",
			Help:      "Commands rejected by the per-template rate limiter.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "droidbridge",
			Name:      "dropped_total",
			Help:      "Commands or responses dropped without a callback, by reason.",
		}, []string{"reason"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "droidbridge",
			Name:      "socket_connections",
			Help:      "Currently open reviewer socket connections.",
		}),
	}

	collectors := []prometheus.Collector{
		m.commands, m.responses, m.rateLimited, m.dropped, m.connections,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CommandReceived() { m.commands.Inc() }

func (m *Metrics) ResponseSent(status string) { m.responses.WithLabelValues(status).Inc() }

func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

func (m *Metrics) Dropped(reason string) { m.dropped.WithLabelValues(reason).Inc() }

func (m *Metrics) connectionOpened() { m.connections.Inc() }

func (m *Metrics) connectionClosed() { m.connections.Dec() }

// Interface guard.
var _ bridge.Metrics = (*Metrics)(nil)
