package multisig

import (
	"strconv"

	"github.com/iov-one/treasury/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects engine statistics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	ready      prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treasury",
			Subsystem: "multisig",
			Name:      "operations_total",
			Help:      "Number of engine operations by name and result code.",
		}, []string{"operation", "code"}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "treasury",
			Subsystem: "multisig",
			Name:      "ready_proposals",
			Help:      "Number of proposals in the ready index.",
		}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.ready} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidState, "register collector: %s", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, strconv.FormatUint(uint64(errors.Code(err)), 10)).Inc()
}

func (m *Metrics) setReady(n uint64) {
	if m == nil {
		return
	}
	m.ready.Set(float64(n))
}
