package types

// Regime is the market state label produced by the regime classifier.
type Regime string

const (
	RegimeChoppy   Regime = "CHOPPY"
	RegimeTrending Regime = "TRENDING"
	RegimeUnknown  Regime = "UNKNOWN"
)

// PositionMultiplier scales the base position size for the regime.
func (r Regime) PositionMultiplier() float64 {
	switch r {
	case RegimeChoppy:
		return 0.0
	case RegimeTrending:
		return 1.5
	default:
		return 1.0
	}
}
