package memory

import "github.com/prometheus/client_golang/prometheus"

const (
	tierProcess     = "process"
	tierDistributed = "distributed"
	tierStore       = "store"

	opAppend  = "append_message"
	opCompact = "compact_messages"
	opAddFact = "add_user_fact"

	statusOK    = "ok"
	statusNoop  = "noop"
	statusError = "error"
)

// Metrics counts tier lookups and mutations. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	lookups        *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	compactionsDue prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tuskmem",
				Subsystem: "memory",
				Name:      "lookups_total",
				Help:      "Memory record lookups by tier and result",
			},
			[]string{"tier", "result"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tuskmem",
				Subsystem: "memory",
				Name:      "mutations_total",
				Help:      "Memory record mutations by operation and status",
			},
			[]string{"op", "status"},
		),
		compactionsDue: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tuskmem",
				Subsystem: "memory",
				Name:      "compactions_due_total",
				Help:      "Appends that pushed a record over the compaction threshold",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.lookups, m.mutations, m.compactionsDue)
	}
	return m
}

func (m *Metrics) lookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(tier, result).Inc()
}

func (m *Metrics) mutation(op, status string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, status).Inc()
}

func (m *Metrics) compactionDue() {
	if m == nil {
		return
	}
	m.compactionsDue.Inc()
}
