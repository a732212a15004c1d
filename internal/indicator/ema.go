package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// EMA is an exponential moving average with smoothing factor 2/(period+1).
// The first update seeds the average with the price. A value of 0 means
// the average has not been seeded yet.
type EMA struct {
	period int
	alpha  float64
	value  float64
}

func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}

	return &EMA{
		period: period,
		alpha:  2.0 / (float64(period) + 1.0),
	}
}

func (e *EMA) Name() IndicatorType {
	return IndicatorTypeEMA
}

func (e *EMA) Update(tick types.Tick) {
	e.Add(tick.Price)
}

// Add folds a raw value into the average and returns the new value.
func (e *EMA) Add(v float64) float64 {
	if e.value == 0 {
		e.value = v
	} else {
		e.value = e.alpha*v + (1-e.alpha)*e.value
	}

	return e.value
}

func (e *EMA) Value() float64 {
	return e.value
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Alpha() float64 {
	return e.alpha
}

func (e *EMA) Ready() bool {
	return e.value != 0
}

func (e *EMA) Reset() {
	e.value = 0
}
