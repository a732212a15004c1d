package types

// Direction is the intent carried by signals, orders and fills.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionExit  Direction = "EXIT"
)

// IsEntry reports whether the direction opens or extends a position.
func (d Direction) IsEntry() bool {
	return d == DirectionLong || d == DirectionShort
}

type EventKind string

const (
	EventKindMarketUpdate EventKind = "MARKET_UPDATE"
	EventKindSignal       EventKind = "SIGNAL"
	EventKindOrder        EventKind = "ORDER"
	EventKindFill         EventKind = "FILL"
)

// Event is the closed set of items flowing through the simulation queue:
// MarketUpdate, Signal, Order and Fill. Only this package can add variants.
type Event interface {
	Kind() EventKind
	// EventTime is the dispatch timestamp in microseconds.
	EventTime() int64
	EventSymbol() string

	sealed()
}

// MarketUpdate delivers one tick of a symbol.
type MarketUpdate struct {
	Symbol string
	Tick   Tick
}

// Signal is a strategy's trading intent.
type Signal struct {
	Time      int64
	Symbol    string
	Direction Direction
	Quantity  float64
	// Price is the tick price the signal was generated at.
	Price  float64
	Regime Regime
	// Reason describes which rule produced the signal.
	Reason string
}

// Order is a signal accepted for execution.
type Order struct {
	Time      int64
	Symbol    string
	Direction Direction
	Quantity  float64
	Price     float64
	Regime    Regime
	Reason    string
}

// Fill is an executed order. Time is the order time plus the engine latency.
type Fill struct {
	Time       int64
	Symbol     string
	Direction  Direction
	Quantity   float64
	FillPrice  float64
	Commission float64
	Regime     Regime
}

func (e MarketUpdate) Kind() EventKind     { return EventKindMarketUpdate }
func (e MarketUpdate) EventTime() int64    { return e.Tick.Timestamp }
func (e MarketUpdate) EventSymbol() string { return e.Symbol }
func (MarketUpdate) sealed()               {}

func (e Signal) Kind() EventKind     { return EventKindSignal }
func (e Signal) EventTime() int64    { return e.Time }
func (e Signal) EventSymbol() string { return e.Symbol }
func (Signal) sealed()               {}

func (e Order) Kind() EventKind     { return EventKindOrder }
func (e Order) EventTime() int64    { return e.Time }
func (e Order) EventSymbol() string { return e.Symbol }
func (Order) sealed()               {}

func (e Fill) Kind() EventKind     { return EventKindFill }
func (e Fill) EventTime() int64    { return e.Time }
func (e Fill) EventSymbol() string { return e.Symbol }
func (Fill) sealed()               {}

// NewOrderFromSignal converts a signal into an order with identical fields.
func NewOrderFromSignal(s Signal) Order {
	return Order{
		Time:      s.Time,
		Symbol:    s.Symbol,
		Direction: s.Direction,
		Quantity:  s.Quantity,
		Price:     s.Price,
		Regime:    s.Regime,
		Reason:    s.Reason,
	}
}
