package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the open holding of one symbol. It exists only while
// Quantity is non-zero.
type Position struct {
	Symbol         string
	Direction      Direction
	Quantity       float64
	AveragePrice   float64
	EntryTimestamp int64
	EntryRegime    Regime
	// Commission accumulated by the entry fills.
	Commission float64
}

// AddFill folds a same-direction entry fill into the position,
// keeping AveragePrice the volume-weighted average of all entry fills.
func (p *Position) AddFill(price, quantity, commission float64) {
	oldQty := decimal.NewFromFloat(p.Quantity)
	addQty := decimal.NewFromFloat(quantity)
	newQty := oldQty.Add(addQty)

	notional := oldQty.Mul(decimal.NewFromFloat(p.AveragePrice)).
		Add(addQty.Mul(decimal.NewFromFloat(price)))

	p.AveragePrice, _ = notional.Div(newQty).Float64()
	p.Quantity, _ = newQty.Float64()
	p.Commission, _ = decimal.NewFromFloat(p.Commission).Add(decimal.NewFromFloat(commission)).Float64()
}

// RealizedPnL is the profit of closing the whole position at exitPrice.
// Commission is not netted.
func (p Position) RealizedPnL(exitPrice float64) decimal.Decimal {
	qty := decimal.NewFromFloat(p.Quantity)
	entry := decimal.NewFromFloat(p.AveragePrice)
	exit := decimal.NewFromFloat(exitPrice)

	if p.Direction == DirectionShort {
		return entry.Sub(exit).Mul(qty)
	}

	return exit.Sub(entry).Mul(qty)
}

// TradeRecord is one closed round trip.
type TradeRecord struct {
	ID             string    `csv:"id" yaml:"id" json:"id"`
	Symbol         string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Direction      Direction `csv:"direction" yaml:"direction" json:"direction"`
	EntryTimestamp int64     `csv:"entry_timestamp" yaml:"entry_timestamp" json:"entry_timestamp"`
	ExitTimestamp  int64     `csv:"exit_timestamp" yaml:"exit_timestamp" json:"exit_timestamp"`
	EntryPrice     float64   `csv:"entry_price" yaml:"entry_price" json:"entry_price"`
	ExitPrice      float64   `csv:"exit_price" yaml:"exit_price" json:"exit_price"`
	Quantity       float64   `csv:"quantity" yaml:"quantity" json:"quantity"`
	PnL            float64   `csv:"pnl" yaml:"pnl" json:"pnl"`
	Commission     float64   `csv:"commission" yaml:"commission" json:"commission"`
	Regime         Regime    `csv:"regime" yaml:"regime" json:"regime"`
	// Forced is true when the trade was closed at the end of the replay.
	Forced bool `csv:"forced" yaml:"forced" json:"forced"`
}

// HoldingTime is the time between entry and exit.
func (t TradeRecord) HoldingTime() time.Duration {
	return time.Duration(t.ExitTimestamp-t.EntryTimestamp) * time.Microsecond
}
