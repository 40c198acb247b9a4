package httpapi

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	once sync.Once

	ops      *prometheus.CounterVec
	errors   *prometheus.CounterVec
	watchers prometheus.Gauge
}

func (m *metrics) register(reg prometheus.Registerer) {
	m.once.Do(func() {
		m.ops = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defmap_ops_total",
			Help: "Store operations served, by operation.",
		}, []string{"op"})
		m.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defmap_op_errors_total",
			Help: "Store operations that failed, by operation.",
		}, []string{"op"})
		m.watchers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defmap_watchers",
			Help: "Currently connected watch subscribers.",
		})
		reg.MustRegister(m.ops, m.errors, m.watchers)
	})
}
