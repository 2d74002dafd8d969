package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatcher metrics
	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxboard_publishes_total",
			Help: "Total number of model publishes by topic",
		},
		[]string{"topic"},
	)

	Subscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fxboard_subscribers",
			Help: "Number of registered subscribers by topic",
		},
		[]string{"topic"},
	)

	CallbackFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxboard_callback_failures_total",
			Help: "Total number of subscriber callbacks that panicked, by topic",
		},
		[]string{"topic"},
	)

	// Unit handler metrics
	MessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fxboard_engine_messages_total",
			Help: "Total number of inbound engine messages processed",
		},
	)

	FragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxboard_fragments_total",
			Help: "Total number of inbound fragments by kind and result (accepted, rejected)",
		},
		[]string{"fragment", "result"},
	)

	MergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fxboard_merge_duration_seconds",
			Help:    "Time taken to merge one engine message and notify subscribers",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	// Engine link metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxboard_commands_total",
			Help: "Total number of commands handed to the engine by parameter and result",
		},
		[]string{"param", "result"},
	)

	EngineConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fxboard_engine_connected",
			Help: "Whether the engine event channel is open (1 = open, 0 = closed)",
		},
	)

	// Board store metrics
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxboard_store_operations_total",
			Help: "Total number of board store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	StoredBoards = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fxboard_stored_boards",
			Help: "Number of boards in the store as of the last read or write",
		},
	)
)

func init() {
	prometheus.MustRegister(PublishesTotal)
	prometheus.MustRegister(Subscribers)
	prometheus.MustRegister(CallbackFailuresTotal)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(FragmentsTotal)
	prometheus.MustRegister(MergeDuration)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(EngineConnected)
	prometheus.MustRegister(StoreOperationsTotal)
	prometheus.MustRegister(StoredBoards)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
