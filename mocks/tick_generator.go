package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

// TickGenerator produces reproducible synthetic tick series for tests.
type TickGenerator struct {
	rng *rand.Rand
}

// NewTickGenerator seeds the generator. Equal seeds give equal series.
func NewTickGenerator(seed int64) *TickGenerator {
	return &TickGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

type GeneratorConfig struct {
	StartTime time.Time
	// Interval between consecutive ticks.
	Interval     time.Duration
	Count        int
	InitialPrice float64
	// Volatility is the per-tick standard deviation of returns.
	Volatility float64
	// Drift is the per-tick mean return.
	Drift float64
	// VolumeBase is the mean volume per tick.
	VolumeBase float64
	// VolumeVariance is the relative spread of volume around VolumeBase (0..1).
	VolumeVariance float64
	// BookSize is the mean bid and ask size.
	BookSize float64
}

func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		Interval:       time.Second,
		Count:          1000,
		InitialPrice:   20.0,
		Volatility:     0.002,
		Drift:          0.0,
		VolumeBase:     1000,
		VolumeVariance: 0.3,
		BookSize:       500,
	}
}

// Generate walks a geometric Brownian motion and attaches noisy volume and
// book sizes to each step.
func (g *TickGenerator) Generate(config GeneratorConfig) []types.Tick {
	ticks := make([]types.Tick, config.Count)
	price := config.InitialPrice
	ts := config.StartTime

	for i := range config.Count {
		if i > 0 {
			next := price * (1 + config.Drift + config.Volatility*g.normal())
			if next <= 0 {
				next = price * 0.99
			}

			price = next
		}

		volume := config.VolumeBase * (1 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 1 {
			volume = 1
		}

		ticks[i] = types.Tick{
			Timestamp: ts.UnixMicro(),
			Price:     roundToDecimals(price, 4),
			Volume:    int64(math.Round(volume)),
			BidSize:   roundToDecimals(config.BookSize*(0.5+g.rng.Float64()), 0),
			AskSize:   roundToDecimals(config.BookSize*(0.5+g.rng.Float64()), 0),
		}

		ts = ts.Add(config.Interval)
	}

	return ticks
}

// InjectGap rescales every tick from index onward by (1+gapPercent/100) and
// turns the tick at index into a volume spike with a bid-heavy book.
func InjectGap(ticks []types.Tick, index int, gapPercent, volumeMultiple, bidAskRatio float64) {
	if index <= 0 || index >= len(ticks) {
		return
	}

	scale := 1 + gapPercent/100
	for i := index; i < len(ticks); i++ {
		ticks[i].Price = roundToDecimals(ticks[i].Price*scale, 4)
	}

	ticks[index].Volume = int64(float64(ticks[index].Volume) * volumeMultiple)
	ticks[index].AskSize = 100
	ticks[index].BidSize = 100 * bidAskRatio
}

func (g *TickGenerator) normal() float64 {
	u1 := g.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}

	u2 := g.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
