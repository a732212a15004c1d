package indicator

import (
	"sort"

	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

// DefaultVolumeLookback is the number of samples averaged for relative volume.
const DefaultVolumeLookback = volumeHistoryCapacity

// Indicators is the full indicator state of one symbol. The single-instance
// indicators live in a Registry; EMAs are created lazily per period on
// first update.
type Indicators struct {
	registry *Registry
	emas     map[int]*EMA
	macd     *MACD
	vwap     *VWAP
	volume   *Volume
	gap      *Gap
}

func NewIndicators() *Indicators {
	in := &Indicators{
		registry: NewRegistry(),
		emas:     make(map[int]*EMA),
		macd:     NewDefaultMACD(),
		vwap:     NewVWAP(),
		volume:   NewVolume(),
		gap:      NewGap(),
	}

	// names are distinct, so registration cannot fail
	for _, ind := range []Indicator{in.gap, in.macd, in.vwap, in.volume} {
		_ = in.registry.Register(ind)
	}

	return in
}

// Update folds tick into every registered indicator and into the EMA of
// each period given.
func (in *Indicators) Update(tick types.Tick, emaPeriods ...int) {
	in.registry.Update(tick)

	for _, p := range emaPeriods {
		in.ema(p).Update(tick)
	}
}

// Registered lists the indicators updated on every tick, in update order.
func (in *Indicators) Registered() []IndicatorType {
	return in.registry.List()
}

func (in *Indicators) ema(period int) *EMA {
	ema, ok := in.emas[period]
	if !ok {
		ema = NewEMA(period)
		in.emas[period] = ema
	}

	return ema
}

func (in *Indicators) UpdatePrice(price float64) {
	in.gap.Add(price)
}

func (in *Indicators) UpdateEMA(price float64, period int) float64 {
	return in.ema(period).Add(price)
}

func (in *Indicators) UpdateMACD(price float64) {
	in.macd.Add(price)
}

func (in *Indicators) UpdateVWAP(price float64, volume int64) {
	in.vwap.Add(price, volume)
}

func (in *Indicators) UpdateVolume(timestamp, volume int64) {
	in.volume.Add(timestamp, volume)
}

// EMA returns the average for period, or 0 if that period was never updated.
func (in *Indicators) EMA(period int) float64 {
	if ema, ok := in.emas[period]; ok {
		return ema.Value()
	}

	return 0
}

// IsPriceAboveEMA is false while the EMA is uninitialized.
func (in *Indicators) IsPriceAboveEMA(price float64, period int) bool {
	ema := in.EMA(period)

	return ema > 0 && price > ema
}

func (in *Indicators) MACD() float64 {
	return in.macd.MACD()
}

func (in *Indicators) MACDSignal() float64 {
	return in.macd.Signal()
}

func (in *Indicators) MACDHistogram() float64 {
	return in.macd.Histogram()
}

func (in *Indicators) IsMACDHistogramExpanding() bool {
	return in.macd.IsHistogramExpanding()
}

func (in *Indicators) VWAP() float64 {
	return in.vwap.Value()
}

func (in *Indicators) IsPriceAboveVWAP(price float64) bool {
	return in.vwap.IsPriceAbove(price)
}

// ResetVWAP starts a new VWAP accumulation, e.g. at a session boundary.
func (in *Indicators) ResetVWAP() {
	in.vwap.Reset()
}

func (in *Indicators) AverageVolume(lookback int) float64 {
	return in.volume.Average(lookback)
}

func (in *Indicators) RelativeVolume() float64 {
	return in.volume.Relative()
}

func (in *Indicators) GapPercent() float64 {
	return in.gap.Percent()
}

func (in *Indicators) CurrentPrice() float64 {
	return in.gap.Current()
}

// Reset clears every indicator.
func (in *Indicators) Reset() {
	in.emas = make(map[int]*EMA)
	in.registry.Reset()
}

// Snapshot is a point-in-time copy of all indicator readings.
type Snapshot struct {
	Price          float64
	EMAs           map[int]float64
	MACD           float64
	MACDSignal     float64
	MACDHistogram  float64
	HistExpanding  bool
	VWAP           float64
	RelativeVolume float64
	GapPercent     float64
}

func (in *Indicators) Snapshot() Snapshot {
	emas := make(map[int]float64, len(in.emas))
	for p, e := range in.emas {
		emas[p] = e.Value()
	}

	return Snapshot{
		Price:          in.gap.Current(),
		EMAs:           emas,
		MACD:           in.macd.MACD(),
		MACDSignal:     in.macd.Signal(),
		MACDHistogram:  in.macd.Histogram(),
		HistExpanding:  in.macd.IsHistogramExpanding(),
		VWAP:           in.vwap.Value(),
		RelativeVolume: in.volume.Relative(),
		GapPercent:     in.gap.Percent(),
	}
}

// EMAPeriods returns the tracked periods in ascending order.
func (in *Indicators) EMAPeriods() []int {
	periods := make([]int, 0, len(in.emas))
	for p := range in.emas {
		periods = append(periods, p)
	}

	sort.Ints(periods)

	return periods
}
