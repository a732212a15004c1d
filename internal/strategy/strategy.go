// Package strategy holds the trading decision units driven by the engine.
package strategy

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// Strategy consumes market updates of a single symbol and emits signals.
type Strategy interface {
	Name() string
	// Version is the strategy API version the strategy was written against.
	Version() string
	Symbol() string
	// OnMarketUpdate processes one tick and returns zero or more signals
	// stamped with the tick's timestamp.
	OnMarketUpdate(tick types.Tick) []types.Signal
	// OnFill notifies the strategy that one of its orders executed.
	OnFill(fill types.Fill)
}

// RegimeClassifier is the regime source a strategy gates and sizes trades with.
type RegimeClassifier interface {
	UpdateAndClassify(tick types.Tick) types.Regime
	CurrentRegime() types.Regime
	PositionMultiplier() float64
}
