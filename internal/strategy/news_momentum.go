package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-catalyst/internal/indicator"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/internal/version"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"go.uber.org/zap"
)

type positionState int

const (
	stateFlat positionState = iota
	statePendingEntry
	stateOpen
	statePendingExit
)

func (s positionState) String() string {
	switch s {
	case statePendingEntry:
		return "pending_entry"
	case stateOpen:
		return "open"
	case statePendingExit:
		return "pending_exit"
	default:
		return "flat"
	}
}

// NewsMomentumStrategy buys gap-ups on heavy relative volume when the trend,
// intraday and order-book filters agree and the regime is trending. It exits
// on a VWAP loss, a negative contracting MACD histogram or a choppy regime.
type NewsMomentumStrategy struct {
	symbol     string
	config     NewsMomentumConfig
	indicators *indicator.Indicators
	classifier RegimeClassifier
	log        *logger.Logger

	state    positionState
	position float64

	fastAbove bool
	crossedUp bool

	checks []entryCheck
}

func NewNewsMomentumStrategy(symbol string, config NewsMomentumConfig, classifier RegimeClassifier, log *logger.Logger) (*NewsMomentumStrategy, error) {
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	if classifier == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "regime classifier is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &NewsMomentumStrategy{
		symbol:     symbol,
		config:     config,
		indicators: indicator.NewIndicators(),
		classifier: classifier,
		log:        log,
	}
	s.checks = s.entryChecks()

	return s, nil
}

func (s *NewsMomentumStrategy) Name() string {
	return StrategyNameNewsMomentum
}

func (s *NewsMomentumStrategy) Version() string {
	return version.StrategyAPIVersion
}

func (s *NewsMomentumStrategy) Symbol() string {
	return s.symbol
}

// Indicators exposes the indicator state for inspection.
func (s *NewsMomentumStrategy) Indicators() *indicator.Indicators {
	return s.indicators
}

func (s *NewsMomentumStrategy) OnMarketUpdate(tick types.Tick) []types.Signal {
	s.classifier.UpdateAndClassify(tick)

	s.indicators.Update(tick, s.config.FastEMA, s.config.TrendEMA, s.config.LongEMA)
	s.updateCrossover()

	switch s.state {
	case stateOpen:
		reason, exit := s.exitReason(tick)
		if !exit {
			return nil
		}

		s.state = statePendingExit
		s.log.Debug("exit signal",
			zap.String("symbol", s.symbol),
			zap.Int64("timestamp", tick.Timestamp),
			zap.Float64("price", tick.Price),
			zap.String("reason", reason),
		)

		return []types.Signal{s.newSignal(tick, types.DirectionExit, s.position, reason)}
	case stateFlat:
		reason, enter := s.entryReason(tick)
		if !enter {
			return nil
		}

		size := s.config.BasePositionSize * s.classifier.PositionMultiplier()
		if size <= 0 {
			return nil
		}

		s.state = statePendingEntry
		s.log.Debug("entry signal",
			zap.String("symbol", s.symbol),
			zap.Int64("timestamp", tick.Timestamp),
			zap.Float64("price", tick.Price),
			zap.Float64("size", size),
			zap.String("reason", reason),
		)

		return []types.Signal{s.newSignal(tick, types.DirectionLong, size, reason)}
	default:
		return nil
	}
}

// OnFill moves the position state machine. Fills for other symbols are ignored.
func (s *NewsMomentumStrategy) OnFill(fill types.Fill) {
	if fill.Symbol != s.symbol {
		return
	}

	if fill.Direction.IsEntry() {
		s.position += fill.Quantity
		s.state = stateOpen

		return
	}

	s.position = 0
	s.state = stateFlat
}

func (s *NewsMomentumStrategy) newSignal(tick types.Tick, direction types.Direction, quantity float64, reason string) types.Signal {
	return types.Signal{
		Time:      tick.Timestamp,
		Symbol:    s.symbol,
		Direction: direction,
		Quantity:  quantity,
		Price:     tick.Price,
		Regime:    s.classifier.CurrentRegime(),
		Reason:    reason,
	}
}

func (s *NewsMomentumStrategy) updateCrossover() {
	fast := s.indicators.EMA(s.config.FastEMA)
	trend := s.indicators.EMA(s.config.TrendEMA)

	if fast == 0 || trend == 0 {
		s.crossedUp = false

		return
	}

	above := fast > trend
	s.crossedUp = above && !s.fastAbove
	s.fastAbove = above
}

func (s *NewsMomentumStrategy) exitReason(tick types.Tick) (string, bool) {
	if !s.indicators.IsPriceAboveVWAP(tick.Price) {
		return fmt.Sprintf("price %.4f not above vwap %.4f", tick.Price, s.indicators.VWAP()), true
	}

	if !s.indicators.IsMACDHistogramExpanding() && s.indicators.MACDHistogram() < 0 {
		return fmt.Sprintf("macd histogram %.6f negative and contracting", s.indicators.MACDHistogram()), true
	}

	if s.classifier.CurrentRegime() == types.RegimeChoppy {
		return "regime turned choppy", true
	}

	return "", false
}

type entryCheck struct {
	name string
	pass func(tick types.Tick) bool
}

func (s *NewsMomentumStrategy) entryChecks() []entryCheck {
	return []entryCheck{
		{name: "relative_volume", pass: func(types.Tick) bool {
			return s.indicators.RelativeVolume() >= s.config.MinRelativeVolume
		}},
		{name: "gap", pass: func(types.Tick) bool {
			return s.indicators.GapPercent() >= s.config.MinGapPercent
		}},
		{name: "ema_trend", pass: s.emaTrend},
		{name: "ema_crossover", pass: func(types.Tick) bool {
			if s.config.StrictCrossover {
				return s.crossedUp
			}

			return s.crossedUp || s.fastAbove
		}},
		{name: "vwap", pass: func(t types.Tick) bool {
			return t.Price != 0 && s.indicators.IsPriceAboveVWAP(t.Price)
		}},
		{name: "macd", pass: func(types.Tick) bool {
			return s.indicators.IsMACDHistogramExpanding()
		}},
		{name: "order_book", pass: func(t types.Tick) bool {
			return t.AskSize != 0 && t.BidAskRatio() >= s.config.MinBidAskRatio
		}},
		{name: "regime", pass: func(types.Tick) bool {
			return s.classifier.CurrentRegime() == types.RegimeTrending
		}},
	}
}

// entryReason evaluates the entry filters in order and stops at the first
// failure.
func (s *NewsMomentumStrategy) entryReason(tick types.Tick) (string, bool) {
	for _, check := range s.checks {
		if !check.pass(tick) {
			return check.name, false
		}
	}

	return fmt.Sprintf("gap %.2f%% on %.1fx volume, bid/ask %.2f",
		s.indicators.GapPercent(), s.indicators.RelativeVolume(), tick.BidAskRatio()), true
}

func (s *NewsMomentumStrategy) emaTrend(tick types.Tick) bool {
	if tick.Price == 0 {
		return false
	}

	trend := s.indicators.EMA(s.config.TrendEMA)
	long := s.indicators.EMA(s.config.LongEMA)

	return s.indicators.IsPriceAboveEMA(tick.Price, s.config.TrendEMA) &&
		s.indicators.IsPriceAboveEMA(tick.Price, s.config.LongEMA) &&
		trend > long
}
