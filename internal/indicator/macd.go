package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9

	macdHistogramCapacity = 10
)

// MACD tracks the fast-minus-slow EMA line, its signal EMA and the
// histogram. The last ten histogram values are retained.
type MACD struct {
	fast      *EMA
	slow      *EMA
	signal    *EMA
	line      float64
	histogram *Window[float64]
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:      NewEMA(fast),
		slow:      NewEMA(slow),
		signal:    NewEMA(signal),
		histogram: NewWindow[float64](macdHistogramCapacity),
	}
}

func NewDefaultMACD() *MACD {
	return NewMACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}

func (m *MACD) Name() IndicatorType {
	return IndicatorTypeMACD
}

func (m *MACD) Update(tick types.Tick) {
	m.Add(tick.Price)
}

// Add updates both line EMAs with price, then the signal EMA with the
// new line value. The signal EMA is seeded with the first line value.
func (m *MACD) Add(price float64) {
	fast := m.fast.Add(price)
	slow := m.slow.Add(price)
	m.line = fast - slow

	m.signal.Add(m.line)
	m.histogram.Push(m.line - m.signal.Value())
}

func (m *MACD) MACD() float64 {
	return m.line
}

func (m *MACD) Signal() float64 {
	return m.signal.Value()
}

// Histogram returns the latest histogram value, or 0 before any update.
func (m *MACD) Histogram() float64 {
	v, _ := m.histogram.Last()

	return v
}

// HistogramHistory returns retained histogram values, oldest first.
func (m *MACD) HistogramHistory() []float64 {
	return m.histogram.Values()
}

// IsHistogramExpanding reports whether the latest histogram value is
// strictly greater than the previous one.
func (m *MACD) IsHistogramExpanding() bool {
	if m.histogram.Len() < 2 {
		return false
	}

	return m.histogram.At(-1) > m.histogram.At(-2)
}

func (m *MACD) Ready() bool {
	return m.histogram.Len() > 0
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = 0
	m.histogram.Clear()
}
