package indicator

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// Gap measures the percentage move from the previous close to the current
// price. The previous close is the prior tick's price.
type Gap struct {
	open      float64
	prevClose float64
	current   float64
	seen      bool
}

func NewGap() *Gap {
	return &Gap{}
}

func (g *Gap) Name() IndicatorType {
	return IndicatorTypeGap
}

func (g *Gap) Update(tick types.Tick) {
	g.Add(tick.Price)
}

func (g *Gap) Add(price float64) {
	if !g.seen {
		g.open = price
		g.prevClose = price
		g.current = price
		g.seen = true

		return
	}

	g.prevClose = g.current
	g.current = price
}

// Percent returns (current - prevClose) / prevClose * 100, or 0 when the
// previous close is not positive.
func (g *Gap) Percent() float64 {
	if g.prevClose <= 0 {
		return 0
	}

	return (g.current - g.prevClose) / g.prevClose * 100
}

func (g *Gap) Open() float64 {
	return g.open
}

func (g *Gap) PrevClose() float64 {
	return g.prevClose
}

func (g *Gap) Current() float64 {
	return g.current
}

func (g *Gap) Ready() bool {
	return g.seen
}

func (g *Gap) Reset() {
	*g = Gap{}
}
