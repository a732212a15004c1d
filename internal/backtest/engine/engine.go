package engine

import (
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/shopspring/decimal"
)

// Lifecycle callback types for the replay.
// Callbacks with an error return abort the run when they return an error.

// OnRunStartCallback is called once all ticks are queued, before the first
// event is dispatched. runID identifies the run in the written results.
type OnRunStartCallback func(runID string, totalQueued int) error

// OnRunEndCallback is called when the run ends, with the error that ended it (always called via defer).
type OnRunEndCallback func(err error)

// OnProcessDataCallback is called after each dispatched event.
type OnProcessDataCallback func(processed int, pending int) error

// OnTradeClosedCallback is called for every trade appended to the ledger.
type OnTradeClosedCallback func(trade types.TradeRecord)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
	OnTradeClosed *OnTradeClosedCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration. Must be called first.
	Initialize(config string) error
	// Load queues one market update per tick of symbol, restricted to the configured window.
	// A symbol can be loaded once per Initialize.
	Load(symbol string, ticks []types.Tick) error
	// LoadDataSource reads every tick of the data source and loads them for symbol.
	LoadDataSource(symbol string, dataSource datasource.DataSource) error
	// RegisterStrategy binds a strategy to a symbol, replacing any earlier binding.
	RegisterStrategy(symbol string, strategy strategy.Strategy) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// An empty folder disables writing.
	SetResultsFolder(folder string) error
	// Run dispatches every queued event in timestamp order until the queue is empty,
	// then force-closes open positions.
	Run(callbacks LifecycleCallbacks) error
	// Trades returns the trade ledger in close order.
	Trades() []types.TradeRecord
	// TotalPnL returns the sum of realized pnl.
	TotalPnL() decimal.Decimal
	TradeCount() int
	// Clock returns the timestamp of the last dispatched event.
	Clock() int64
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
