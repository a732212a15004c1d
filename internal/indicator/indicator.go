// Package indicator implements streaming technical indicators updated one
// tick at a time: EMA, MACD, VWAP, rolling volume and the opening gap.
package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

type IndicatorType string

const (
	IndicatorTypeEMA    IndicatorType = "ema"
	IndicatorTypeMACD   IndicatorType = "macd"
	IndicatorTypeVWAP   IndicatorType = "vwap"
	IndicatorTypeVolume IndicatorType = "volume"
	IndicatorTypeGap    IndicatorType = "gap"
)

// Indicator is a streaming indicator.
type Indicator interface {
	Name() IndicatorType
	// Update folds one tick into the indicator state.
	Update(tick types.Tick)
	// Ready reports whether the indicator has produced a value.
	Ready() bool
	Reset()
}
