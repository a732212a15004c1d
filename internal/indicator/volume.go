package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

const volumeHistoryCapacity = 20

type volumeSample struct {
	timestamp int64
	volume    int64
}

// Volume keeps the last twenty (timestamp, volume) samples.
type Volume struct {
	history *Window[volumeSample]
}

func NewVolume() *Volume {
	return &Volume{history: NewWindow[volumeSample](volumeHistoryCapacity)}
}

func (v *Volume) Name() IndicatorType {
	return IndicatorTypeVolume
}

func (v *Volume) Update(tick types.Tick) {
	v.Add(tick.Timestamp, tick.Volume)
}

func (v *Volume) Add(timestamp, volume int64) {
	v.history.Push(volumeSample{timestamp: timestamp, volume: volume})
}

// Average is the mean of up to lookback most recent samples, or 0 with
// fewer than two samples retained.
func (v *Volume) Average(lookback int) float64 {
	n := v.history.Len()
	if n < 2 || lookback < 1 {
		return 0
	}

	if lookback > n {
		lookback = n
	}

	var sum float64
	for i := n - lookback; i < n; i++ {
		sum += float64(v.history.At(i).volume)
	}

	return sum / float64(lookback)
}

// Relative returns the latest volume over the full-history average.
func (v *Volume) Relative() float64 {
	avg := v.Average(volumeHistoryCapacity)
	if avg == 0 {
		return 0
	}

	latest, _ := v.history.Last()

	return float64(latest.volume) / avg
}

func (v *Volume) Latest() int64 {
	latest, _ := v.history.Last()

	return latest.volume
}

func (v *Volume) Ready() bool {
	return v.history.Len() >= 2
}

func (v *Volume) Reset() {
	v.history.Clear()
}
