package regime

import (
	"math"

	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

// Feature is one clustering sample.
type Feature struct {
	Volatility float64
	Direction  float64
	VolumeNorm float64
}

// Distance is the Euclidean distance between two features.
func (f Feature) Distance(o Feature) float64 {
	dv := f.Volatility - o.Volatility
	dd := f.Direction - o.Direction
	dn := f.VolumeNorm - o.VolumeNorm

	return math.Sqrt(dv*dv + dd*dd + dn*dn)
}

func (f Feature) dim(i int) float64 {
	switch i {
	case 0:
		return f.Volatility
	case 1:
		return f.Direction
	default:
		return f.VolumeNorm
	}
}

func (f *Feature) setDim(i int, v float64) {
	switch i {
	case 0:
		f.Volatility = v
	case 1:
		f.Direction = v
	default:
		f.VolumeNorm = v
	}
}

const featureDims = 3

// returns computes fractional price changes, skipping steps whose previous
// price is not positive.
func returns(ticks []types.Tick) []float64 {
	if len(ticks) < 2 {
		return nil
	}

	out := make([]float64, 0, len(ticks)-1)
	for i := 1; i < len(ticks); i++ {
		prev := ticks[i-1].Price
		if prev <= 0 {
			continue
		}

		out = append(out, (ticks[i].Price-prev)/prev)
	}

	return out
}

// Volatility is the population standard deviation of returns.
func Volatility(ticks []types.Tick) float64 {
	rets := returns(ticks)
	if len(rets) == 0 {
		return 0
	}

	mean := sum(rets) / float64(len(rets))

	var variance float64
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}

	return math.Sqrt(variance / float64(len(rets)))
}

// Direction is the absolute mean return.
func Direction(ticks []types.Tick) float64 {
	rets := returns(ticks)
	if len(rets) == 0 {
		return 0
	}

	return math.Abs(sum(rets) / float64(len(rets)))
}

// meanVolume returns the average volume, or 1 when the ticks carry no volume.
func meanVolume(ticks []types.Tick) float64 {
	var total int64
	for _, t := range ticks {
		total += t.Volume
	}

	if total <= 0 || len(ticks) == 0 {
		return 1
	}

	return float64(total) / float64(len(ticks))
}

// NewFeature builds a feature over ticks, normalizing volume by the mean
// volume of the same ticks.
func NewFeature(ticks []types.Tick, volume int64) Feature {
	return Feature{
		Volatility: Volatility(ticks),
		Direction:  Direction(ticks),
		VolumeNorm: float64(volume) / meanVolume(ticks),
	}
}

// ExtractFeatures slides a window of FeatureWindow returns over ticks and
// returns one feature per window, the newest window last.
func ExtractFeatures(ticks []types.Tick) []Feature {
	if len(ticks) < 2 {
		return nil
	}

	if len(ticks) <= FeatureWindow {
		return []Feature{NewFeature(ticks, ticks[len(ticks)-1].Volume)}
	}

	features := make([]Feature, 0, len(ticks)-FeatureWindow)
	for i := FeatureWindow; i < len(ticks); i++ {
		window := ticks[i-FeatureWindow : i+1]
		features = append(features, NewFeature(window, window[len(window)-1].Volume))
	}

	return features
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}

	return s
}
