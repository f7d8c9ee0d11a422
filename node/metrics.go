package node

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lwproc/lwproc/gen"
)

var (
	spawnedProcesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "spawned_processes_total",
			Help:      "The total number of spawned processes.",
		}, []string{"runtime", "id", "kind"})
	registeredProcesses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "registered_processes",
			Help:      "The number of processes registered in a runtime.",
		}, []string{"runtime", "id"})
	sentMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "messages_sent_total",
			Help:      "The total number of messages accepted for processing.",
		}, []string{"runtime", "id", "kind"})
	droppedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "messages_dropped_total",
			Help:      "The total number of messages sent to an unknown target.",
		}, []string{"runtime", "id"})
	handlerPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "handler_panics_total",
			Help:      "The total number of handler invocations terminated by panic.",
		}, []string{"runtime", "id"})
	stopSignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwproc",
			Subsystem: "runtime",
			Name:      "stop_signals_total",
			Help:      "The total number of stateful invocations returned the continue flag false.",
		}, []string{"runtime", "id"})
)

// InitMetrics registers all metrics in this file
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(spawnedProcesses)
	registry.MustRegister(registeredProcesses)
	registry.MustRegister(sentMessages)
	registry.MustRegister(droppedMessages)
	registry.MustRegister(handlerPanics)
	registry.MustRegister(stopSignals)
}

// runtimeMetrics keeps the collectors of one runtime with the label values
// resolved once, so the hot paths don't look them up on every call. Runtimes
// sharing a name are told apart by the id label.
type runtimeMetrics struct {
	name string
	id   string

	spawnedStateless prometheus.Counter
	spawnedStateful  prometheus.Counter
	registered       prometheus.Gauge
	sentStateless    prometheus.Counter
	sentStateful     prometheus.Counter
	dropped          prometheus.Counter
	panics           prometheus.Counter
	stops            prometheus.Counter
}

func newRuntimeMetrics(name string, id string) *runtimeMetrics {
	stateless := gen.KindStateless.String()
	stateful := gen.KindStateful.String()
	return &runtimeMetrics{
		name:             name,
		id:               id,
		spawnedStateless: spawnedProcesses.WithLabelValues(name, id, stateless),
		spawnedStateful:  spawnedProcesses.WithLabelValues(name, id, stateful),
		registered:       registeredProcesses.WithLabelValues(name, id),
		sentStateless:    sentMessages.WithLabelValues(name, id, stateless),
		sentStateful:     sentMessages.WithLabelValues(name, id, stateful),
		dropped:          droppedMessages.WithLabelValues(name, id),
		panics:           handlerPanics.WithLabelValues(name, id),
		stops:            stopSignals.WithLabelValues(name, id),
	}
}

func (m *runtimeMetrics) spawned(kind gen.ProcessKind) {
	if kind == gen.KindStateful {
		m.spawnedStateful.Inc()
		return
	}
	m.spawnedStateless.Inc()
}

func (m *runtimeMetrics) sent(kind gen.ProcessKind) {
	if kind == gen.KindStateful {
		m.sentStateful.Inc()
		return
	}
	m.sentStateless.Inc()
}

func (m *runtimeMetrics) remove() {
	stateless := gen.KindStateless.String()
	stateful := gen.KindStateful.String()
	spawnedProcesses.DeleteLabelValues(m.name, m.id, stateless)
	spawnedProcesses.DeleteLabelValues(m.name, m.id, stateful)
	registeredProcesses.DeleteLabelValues(m.name, m.id)
	sentMessages.DeleteLabelValues(m.name, m.id, stateless)
	sentMessages.DeleteLabelValues(m.name, m.id, stateful)
	droppedMessages.DeleteLabelValues(m.name, m.id)
	handlerPanics.DeleteLabelValues(m.name, m.id)
	stopSignals.DeleteLabelValues(m.name, m.id)
}
