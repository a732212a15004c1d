package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// VWAP is the cumulative volume-weighted average price since the last Reset.
type VWAP struct {
	priceVolume float64
	volume      float64
}

func NewVWAP() *VWAP {
	return &VWAP{}
}

func (v *VWAP) Name() IndicatorType {
	return IndicatorTypeVWAP
}

func (v *VWAP) Update(tick types.Tick) {
	v.Add(tick.Price, tick.Volume)
}

func (v *VWAP) Add(price float64, volume int64) {
	v.priceVolume += price * float64(volume)
	v.volume += float64(volume)
}

// Value returns 0 while no volume has been observed.
func (v *VWAP) Value() float64 {
	if v.volume == 0 {
		return 0
	}

	return v.priceVolume / v.volume
}

// IsPriceAbove is false while the VWAP is 0.
func (v *VWAP) IsPriceAbove(price float64) bool {
	vwap := v.Value()

	return vwap > 0 && price > vwap
}

func (v *VWAP) Ready() bool {
	return v.volume > 0
}

func (v *VWAP) Reset() {
	v.priceVolume = 0
	v.volume = 0
}
