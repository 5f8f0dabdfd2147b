package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts events and the funds they move.
type Metrics struct {
	events *prometheus.CounterVec
	funds  *prometheus.CounterVec
}

// NewMetrics registers the event collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stellarsave",
			Name:      "events_total",
			Help:      "Engine events emitted, by event name.",
		}, []string{"event"}),
		funds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stellarsave",
			Name:      "funds_moved_total",
			Help:      "Amount moved through custody, by direction.",
		}, []string{"direction"}),
	}
	for _, c := range []prometheus.Collector{m.events, m.funds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Emit increments the counters for evt.
func (m *Metrics) Emit(_ context.Context, evt Event) {
	m.events.WithLabelValues(string(evt.Name)).Inc()

	var direction string
	switch evt.Name {
	case ContributionReceived:
		direction = "in"
	case PayoutCompleted:
		direction = "payout"
	case ContributionRefunded:
		direction = "refund"
	default:
		return
	}
	m.funds.WithLabelValues(direction).Add(float64(evt.Amount))
}
