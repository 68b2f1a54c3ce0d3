package addrmgr

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the manager's prometheus collectors.
type Metrics struct {
	Rotations         prometheus.Counter
	Commands          *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
	RegisteredClients prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "le_privacy",
			Name:      "address_rotations_total",
			Help:      "Random addresses programmed into the controller.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "le_privacy",
			Name:      "commands_total",
			Help:      "Completed controller commands by type and status.",
		}, []string{"type", "status"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "le_privacy",
			Name:      "cached_commands",
			Help:      "Commands waiting for the pause barrier.",
		}),
		RegisteredClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "le_privacy",
			Name:      "registered_clients",
			Help:      "Clients taking part in the pause/resume barrier.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Rotations, m.Commands, m.QueueDepth, m.RegisteredClients)
	}
	return m
}
