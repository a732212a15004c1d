package engine

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

// Metrics holds the replay counters of one engine. Each engine owns its own
// registry so parallel engines in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	EventsProcessed *prometheus.CounterVec
	Signals         *prometheus.CounterVec
	Fills           *prometheus.CounterVec
	TradesClosed    prometheus.Counter
	QueueDepth      prometheus.Gauge
	RealizedPnL     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "catalyst", Name: "events_processed_total", Help: "Events dispatched by the replay loop"},
			[]string{"kind"},
		),
		Signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "catalyst", Name: "signals_total", Help: "Signals emitted by strategies"},
			[]string{"symbol", "direction"},
		),
		Fills: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "catalyst", Name: "fills_total", Help: "Simulated fills"},
			[]string{"symbol", "direction"},
		),
		TradesClosed: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: "catalyst", Name: "trades_closed_total", Help: "Round trips written to the ledger"},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: "catalyst", Name: "queue_depth", Help: "Events waiting in the queue"},
		),
		RealizedPnL: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: "catalyst", Name: "realized_pnl", Help: "Sum of closed trade pnl in USD"},
		),
	}

	m.registry.MustRegister(m.EventsProcessed, m.Signals, m.Fills, m.TradesClosed, m.QueueDepth, m.RealizedPnL)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeEvent(event types.Event) {
	m.EventsProcessed.WithLabelValues(string(event.Kind())).Inc()
}

func (m *Metrics) observeSignal(signal types.Signal) {
	m.Signals.WithLabelValues(signal.Symbol, string(signal.Direction)).Inc()
}

func (m *Metrics) observeFill(fill types.Fill) {
	m.Fills.WithLabelValues(fill.Symbol, string(fill.Direction)).Inc()
}

func (m *Metrics) observeTrade(totalPnL float64) {
	m.TradesClosed.Inc()
	m.RealizedPnL.Set(totalPnL)
}
