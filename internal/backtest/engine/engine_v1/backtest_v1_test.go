package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/regime"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/internal/version"
	"github.com/rxtech-lab/argo-catalyst/mocks"
	codes "github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const baseTimestamp int64 = 1_700_000_000_000_000

type BacktestEngineV1TestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	engine *BacktestEngineV1
}

func TestBacktestEngineV1Suite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1TestSuite))
}

func (suite *BacktestEngineV1TestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.engine = NewBacktestEngineV1(WithLogger(logger.NewNopLogger()))
	suite.Require().NoError(suite.engine.Initialize(""))
}

func (suite *BacktestEngineV1TestSuite) TearDownTest() {
	suite.NoError(suite.engine.Close())
	suite.ctrl.Finish()
}

// scriptedStrategy returns a mock strategy that emits the given signals on
// the ticks with matching timestamps and records every fill it receives.
func (suite *BacktestEngineV1TestSuite) scriptedStrategy(symbol string, script map[int64]types.Signal, fills *[]types.Fill) *mocks.MockStrategy {
	s := mocks.NewMockStrategy(suite.ctrl)
	s.EXPECT().Name().Return("scripted").AnyTimes()
	s.EXPECT().Version().Return(version.StrategyAPIVersion).AnyTimes()
	s.EXPECT().Symbol().Return(symbol).AnyTimes()
	s.EXPECT().OnMarketUpdate(gomock.Any()).DoAndReturn(func(tick types.Tick) []types.Signal {
		signal, ok := script[tick.Timestamp]
		if !ok {
			return nil
		}

		signal.Time = tick.Timestamp
		signal.Symbol = symbol

		if signal.Price == 0 {
			signal.Price = tick.Price
		}

		return []types.Signal{signal}
	}).AnyTimes()
	s.EXPECT().OnFill(gomock.Any()).Do(func(fill types.Fill) {
		if fills != nil {
			*fills = append(*fills, fill)
		}
	}).AnyTimes()

	return s
}

func ticksAt(offsets []int64, prices []float64) []types.Tick {
	ticks := make([]types.Tick, len(offsets))
	for i := range offsets {
		ticks[i] = types.Tick{
			Timestamp: baseTimestamp + offsets[i],
			Price:     prices[i],
			Volume:    1000,
			BidSize:   100,
			AskSize:   100,
		}
	}

	return ticks
}

// newsScenario is 30 slowly rising ticks, a 15% gap on 10x volume with a
// bid-heavy book, two ticks higher, then a drop below VWAP.
func newsScenario() []types.Tick {
	var ticks []types.Tick

	ts := baseTimestamp
	add := func(price float64, volume int64, bid, ask float64) {
		ticks = append(ticks, types.Tick{Timestamp: ts, Price: price, Volume: volume, BidSize: bid, AskSize: ask})
		ts += time.Second.Microseconds()
	}

	for i := 0; i < 30; i++ {
		add(10.00+0.01*float64(i), 1000, 100, 100)
	}

	add(11.83, 10000, 200, 100)
	add(11.90, 1000, 100, 100)
	add(11.95, 1000, 100, 100)
	add(10.00, 1000, 100, 100)
	add(10.00, 1000, 100, 100)

	return ticks
}

func (suite *BacktestEngineV1TestSuite) TestInitializeDefaults() {
	suite.Equal(DefaultLatency, suite.engine.config.Latency)
	suite.Equal(int64(200_000), suite.engine.config.LatencyMicros())

	schema, err := suite.engine.GetConfigSchema()
	suite.NoError(err)
	suite.Contains(schema, "latency")
	suite.Contains(schema, "fixed_rate")
}

func (suite *BacktestEngineV1TestSuite) TestInitializeInvalidConfig() {
	tests := []struct {
		name   string
		config string
		code   codes.ErrorCode
	}{
		{"bad latency", "latency: fast", codes.ErrCodeInvalidLatency},
		{"unknown broker", "broker: robinhood", codes.ErrCodeInvalidBroker},
		{"negative rate", "commission_rate: -1", codes.ErrCodeInvalidConfiguration},
		{"malformed yaml", "latency: [", codes.ErrCodeBacktestConfigError},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()))
			err := e.Initialize(tc.config)
			suite.Error(err)
			suite.True(codes.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *BacktestEngineV1TestSuite) TestRequiresInitialize() {
	e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()))

	err := e.Load("AAPL", ticksAt([]int64{0}, []float64{1}))
	suite.True(codes.HasCode(err, codes.ErrCodeBacktestNotInitialized))

	err = e.Run(engine.LifecycleCallbacks{})
	suite.True(codes.HasCode(err, codes.ErrCodeBacktestNotInitialized))
}

func (suite *BacktestEngineV1TestSuite) TestLoadRejectsEmptyInput() {
	err := suite.engine.Load("AAPL", nil)
	suite.True(codes.HasCode(err, codes.ErrCodeNoTickData))

	err = suite.engine.Load("", ticksAt([]int64{0}, []float64{1}))
	suite.True(codes.HasCode(err, codes.ErrCodeMissingParameter))

	// a failed symbol does not prevent loading another one
	suite.NoError(suite.engine.Load("MSFT", ticksAt([]int64{0}, []float64{1})))
	suite.Equal([]string{"MSFT"}, suite.engine.Symbols())
}

func (suite *BacktestEngineV1TestSuite) TestLoadRejectsSecondLoadOfSymbol() {
	ticks := ticksAt([]int64{0, 1_000_000}, []float64{10, 11})

	suite.Require().NoError(suite.engine.Load("AAPL", ticks))

	err := suite.engine.Load("AAPL", ticks)
	suite.True(codes.HasCode(err, codes.ErrCodeInvalidParameter))
	suite.Equal(2, suite.engine.queue.Len())
	suite.Equal(2, suite.engine.series["AAPL"].Len())

	// Initialize starts a fresh run where the symbol can be loaded again
	suite.Require().NoError(suite.engine.Initialize(""))
	suite.NoError(suite.engine.Load("AAPL", ticks))
	suite.Equal(2, suite.engine.queue.Len())
}

func (suite *BacktestEngineV1TestSuite) TestLoadAppliesTimeWindow() {
	start := time.UnixMicro(baseTimestamp + 1_000_000).UTC()
	end := time.UnixMicro(baseTimestamp + 2_000_000).UTC()

	e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()))
	suite.Require().NoError(e.Initialize("start_time: " + start.Format(time.RFC3339Nano) + "\nend_time: " + end.Format(time.RFC3339Nano)))
	defer e.Close()

	err := e.Load("AAPL", ticksAt([]int64{0, 1_000_000, 2_000_000, 3_000_000}, []float64{1, 2, 3, 4}))
	suite.NoError(err)
	suite.Equal(2, e.queue.Len())

	err = e.Load("MSFT", ticksAt([]int64{5_000_000}, []float64{1}))
	suite.True(codes.HasCode(err, codes.ErrCodeNoTickData))
}

func (suite *BacktestEngineV1TestSuite) TestRegisterStrategyVersionCheck() {
	tests := []struct {
		name            string
		strategyVersion string
		code            codes.ErrorCode
	}{
		{"compatible patch", "1.0.7", 0},
		{"main skips check", "main", 0},
		{"major mismatch", "2.0.0", codes.ErrCodeVersionMismatch},
		{"minor mismatch", "1.3.0", codes.ErrCodeVersionMismatch},
		{"invalid version", "not-a-version", codes.ErrCodeInvalidVersion},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			s := mocks.NewMockStrategy(suite.ctrl)
			s.EXPECT().Name().Return("versioned").AnyTimes()
			s.EXPECT().Version().Return(tc.strategyVersion).AnyTimes()

			err := suite.engine.RegisterStrategy("AAPL", s)
			if tc.code == 0 {
				suite.NoError(err)

				return
			}

			suite.True(codes.HasCode(err, tc.code), "got %v", err)
		})
	}

	suite.True(codes.HasCode(suite.engine.RegisterStrategy("AAPL", nil), codes.ErrCodeMissingParameter))
}

func (suite *BacktestEngineV1TestSuite) TestOutOfOrderInputIsDispatchedInOrder() {
	offsets := []int64{5_000_000, 1_000_000, 4_000_000, 0, 3_000_000, 2_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{6, 2, 5, 1, 4, 3})))

	var seen []int64

	s := mocks.NewMockStrategy(suite.ctrl)
	s.EXPECT().Name().Return("recorder").AnyTimes()
	s.EXPECT().Version().Return(version.StrategyAPIVersion).AnyTimes()
	s.EXPECT().OnMarketUpdate(gomock.Any()).DoAndReturn(func(tick types.Tick) []types.Signal {
		seen = append(seen, tick.Timestamp-baseTimestamp)

		return nil
	}).Times(len(offsets))

	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", s))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.Equal([]int64{0, 1_000_000, 2_000_000, 3_000_000, 4_000_000, 5_000_000}, seen)
	suite.Equal(baseTimestamp+5_000_000, suite.engine.Clock())
	suite.Equal(len(offsets), suite.engine.EventsProcessed())
}

func (suite *BacktestEngineV1TestSuite) TestLatencyFillsAtFirstTickAfterDelay() {
	offsets := []int64{0, 100_000, 200_000, 300_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11, 12, 13})))

	var fills []types.Fill

	script := map[int64]types.Signal{
		baseTimestamp: {Direction: types.DirectionLong, Quantity: 100, Regime: types.RegimeTrending},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, &fills)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.Require().Len(fills, 2)
	entry := fills[0]
	suite.Equal(types.DirectionLong, entry.Direction)
	suite.Equal(baseTimestamp+200_000, entry.Time)
	suite.Equal(12.0, entry.FillPrice)
	suite.InDelta(12.0*100*0.0001, entry.Commission, 1e-12)

	// the open position is force-closed at the last tick
	suite.Equal(types.DirectionExit, fills[1].Direction)

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)
	suite.True(trades[0].Forced)
	suite.Equal(12.0, trades[0].EntryPrice)
	suite.Equal(13.0, trades[0].ExitPrice)
	suite.Equal(baseTimestamp+300_000, trades[0].ExitTimestamp)
	suite.InDelta(100.0, trades[0].PnL, 1e-9)
	suite.InDelta(12.0*100*0.0001+13.0*100*0.0001, trades[0].Commission, 1e-12)
	suite.Equal(types.RegimeTrending, trades[0].Regime)
	suite.Equal("100", suite.engine.TotalPnL().String())
}

func (suite *BacktestEngineV1TestSuite) TestCustomLatency() {
	e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()))
	suite.Require().NoError(e.Initialize("latency: 1s\nbroker: zero_commission"))
	defer e.Close()

	offsets := []int64{0, 500_000, 1_000_000, 1_500_000}
	suite.Require().NoError(e.Load("AAPL", ticksAt(offsets, []float64{10, 11, 12, 13})))

	var fills []types.Fill

	script := map[int64]types.Signal{
		baseTimestamp: {Direction: types.DirectionLong, Quantity: 1},
	}
	suite.Require().NoError(e.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, &fills)))
	suite.Require().NoError(e.Run(engine.LifecycleCallbacks{}))

	suite.Require().NotEmpty(fills)
	suite.Equal(baseTimestamp+1_000_000, fills[0].Time)
	suite.Equal(12.0, fills[0].FillPrice)
	suite.Equal(0.0, fills[0].Commission)
}

func (suite *BacktestEngineV1TestSuite) TestFillFallsBackToOrderPrice() {
	offsets := []int64{0, 100_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11})))

	script := map[int64]types.Signal{
		baseTimestamp + 100_000: {Direction: types.DirectionLong, Quantity: 10},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, nil)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(11.0, trades[0].EntryPrice)
	suite.Equal(baseTimestamp+300_000, trades[0].EntryTimestamp)
	// the last tick precedes the entry, so the exit is clamped to the entry
	suite.Equal(trades[0].EntryTimestamp, trades[0].ExitTimestamp)
	suite.True(trades[0].Forced)
}

func (suite *BacktestEngineV1TestSuite) TestExitWithoutPositionIsNoop() {
	offsets := []int64{0, 1_000_000, 2_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11, 12})))

	var fills []types.Fill

	script := map[int64]types.Signal{
		baseTimestamp: {Direction: types.DirectionExit, Quantity: 10},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, &fills)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.Len(fills, 1)
	suite.Equal(0, suite.engine.TradeCount())
	suite.True(suite.engine.TotalPnL().IsZero())
}

func (suite *BacktestEngineV1TestSuite) TestOppositeEntryIsDropped() {
	offsets := []int64{0, 1_000_000, 2_000_000, 3_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11, 12, 13})))

	var fills []types.Fill

	script := map[int64]types.Signal{
		baseTimestamp:             {Direction: types.DirectionLong, Quantity: 10},
		baseTimestamp + 1_000_000: {Direction: types.DirectionShort, Quantity: 10},
		baseTimestamp + 2_000_000: {Direction: types.DirectionExit, Quantity: 10},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, &fills)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.Require().Len(fills, 2)
	suite.Equal(types.DirectionLong, fills[0].Direction)
	suite.Equal(types.DirectionExit, fills[1].Direction)

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(types.DirectionLong, trades[0].Direction)
	suite.Equal(11.0, trades[0].EntryPrice)
	suite.Equal(13.0, trades[0].ExitPrice)
	suite.False(trades[0].Forced)
}

func (suite *BacktestEngineV1TestSuite) TestSameDirectionFillsAverage() {
	offsets := []int64{0, 1_000_000, 2_000_000, 3_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11, 14, 20})))

	script := map[int64]types.Signal{
		baseTimestamp:             {Direction: types.DirectionLong, Quantity: 10},
		baseTimestamp + 1_000_000: {Direction: types.DirectionLong, Quantity: 30},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, nil)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(40.0, trades[0].Quantity)
	suite.InDelta((11.0*10+14.0*30)/40, trades[0].EntryPrice, 1e-9)
}

func (suite *BacktestEngineV1TestSuite) TestShortPositionPnL() {
	offsets := []int64{0, 1_000_000, 2_000_000, 3_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 12, 9, 8})))

	script := map[int64]types.Signal{
		baseTimestamp:             {Direction: types.DirectionShort, Quantity: 10},
		baseTimestamp + 1_000_000: {Direction: types.DirectionExit, Quantity: 10},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, nil)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(types.DirectionShort, trades[0].Direction)
	suite.InDelta((12.0-9.0)*10, trades[0].PnL, 1e-9)
}

func (suite *BacktestEngineV1TestSuite) TestMissingStrategyDropsMarketUpdates() {
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt([]int64{0, 1_000_000}, []float64{10, 11})))
	suite.Require().NoError(suite.engine.Load("MSFT", ticksAt([]int64{500_000}, []float64{20})))

	count := 0

	s := mocks.NewMockStrategy(suite.ctrl)
	s.EXPECT().Name().Return("recorder").AnyTimes()
	s.EXPECT().Version().Return(version.StrategyAPIVersion).AnyTimes()
	s.EXPECT().OnMarketUpdate(gomock.Any()).DoAndReturn(func(types.Tick) []types.Signal {
		count++

		return nil
	}).AnyTimes()

	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", s))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.Equal(2, count)
	suite.Equal(3, suite.engine.EventsProcessed())
	suite.Equal([]string{"AAPL", "MSFT"}, suite.engine.Symbols())
}

func (suite *BacktestEngineV1TestSuite) TestForceCloseInSymbolOrder() {
	suite.Require().NoError(suite.engine.Load("MSFT", ticksAt([]int64{0, 1_000_000}, []float64{20, 21})))
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt([]int64{0, 1_000_000}, []float64{10, 11})))

	for _, symbol := range []string{"MSFT", "AAPL"} {
		script := map[int64]types.Signal{
			baseTimestamp: {Direction: types.DirectionLong, Quantity: 1},
		}
		suite.Require().NoError(suite.engine.RegisterStrategy(symbol, suite.scriptedStrategy(symbol, script, nil)))
	}

	var closed []string

	onTrade := engine.OnTradeClosedCallback(func(trade types.TradeRecord) {
		closed = append(closed, trade.Symbol)
	})

	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{OnTradeClosed: &onTrade}))
	suite.Equal([]string{"AAPL", "MSFT"}, closed)

	for _, trade := range suite.engine.Trades() {
		suite.True(trade.Forced)
		suite.GreaterOrEqual(trade.ExitTimestamp, trade.EntryTimestamp)
	}
}

func (suite *BacktestEngineV1TestSuite) TestNewsMomentumEndToEnd() {
	classifier := mocks.NewMockRegimeClassifier(suite.ctrl)
	classifier.EXPECT().UpdateAndClassify(gomock.Any()).Return(types.RegimeTrending).AnyTimes()
	classifier.EXPECT().CurrentRegime().Return(types.RegimeTrending).AnyTimes()
	classifier.EXPECT().PositionMultiplier().Return(1.5).AnyTimes()

	s, err := strategy.NewNewsMomentumStrategy("AAPL", strategy.DefaultNewsMomentumConfig(), classifier, logger.NewNopLogger())
	suite.Require().NoError(err)

	ticks := newsScenario()
	suite.Require().NoError(suite.engine.Load("AAPL", ticks))
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", s))

	var (
		runID     string
		queued    int
		processed int
		endErr    = errors.New("not called")
	)

	onStart := engine.OnRunStartCallback(func(id string, total int) error {
		runID = id
		queued = total

		return nil
	})
	onProcess := engine.OnProcessDataCallback(func(current int, _ int) error {
		processed = current

		return nil
	})
	onEnd := engine.OnRunEndCallback(func(err error) {
		endErr = err
	})

	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{
		OnRunStart:    &onStart,
		OnProcessData: &onProcess,
		OnRunEnd:      &onEnd,
	}))

	suite.NotEmpty(runID)
	suite.Equal(len(ticks), queued)
	suite.NoError(endErr)
	// ticks plus signal, order and fill for both the entry and the exit
	suite.Equal(len(ticks)+6, processed)

	trades := suite.engine.Trades()
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal(types.DirectionLong, trade.Direction)
	suite.Equal(150.0, trade.Quantity)
	suite.Equal(ticks[31].Price, trade.EntryPrice)
	suite.Equal(ticks[30].Timestamp+200_000, trade.EntryTimestamp)
	suite.Equal(ticks[33].Timestamp+200_000, trade.ExitTimestamp)
	suite.Equal(ticks[34].Price, trade.ExitPrice)
	suite.InDelta((trade.ExitPrice-trade.EntryPrice)*trade.Quantity, trade.PnL, 1e-9)
	suite.False(trade.Forced)

	marks, err := suite.engine.Marks()
	suite.Require().NoError(err)
	suite.Require().Len(marks, 2)
	suite.Equal(types.MarkColorGreen, marks[0].Color)
	suite.Equal(ticks[30].Timestamp, marks[0].Timestamp)
	suite.Equal(types.MarkColorRed, marks[1].Color)
	suite.Equal(ticks[33].Timestamp, marks[1].Timestamp)
	suite.Contains(marks[1].Message, "vwap")

	metrics := suite.engine.Metrics()
	suite.Equal(1.0, testutil.ToFloat64(metrics.TradesClosed))
	suite.Equal(2.0, testutil.ToFloat64(metrics.EventsProcessed.WithLabelValues(string(types.EventKindSignal))))
	suite.Equal(1.0, testutil.ToFloat64(metrics.Signals.WithLabelValues("AAPL", string(types.DirectionLong))))
	suite.Equal(0.0, testutil.ToFloat64(metrics.QueueDepth))
	suite.InDelta(trade.PnL, testutil.ToFloat64(metrics.RealizedPnL), 1e-9)
}

func (suite *BacktestEngineV1TestSuite) TestRunStartCallbackAborts() {
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt([]int64{0}, []float64{10})))

	var endErr error

	onStart := engine.OnRunStartCallback(func(string, int) error {
		return errors.New("stop")
	})
	onEnd := engine.OnRunEndCallback(func(err error) {
		endErr = err
	})

	err := suite.engine.Run(engine.LifecycleCallbacks{OnRunStart: &onStart, OnRunEnd: &onEnd})
	suite.True(codes.HasCode(err, codes.ErrCodeCallbackFailed))
	suite.Equal(err, endErr)
	suite.Equal(0, suite.engine.EventsProcessed())
}

func (suite *BacktestEngineV1TestSuite) TestRunWritesResults() {
	dir := suite.T().TempDir()
	results := filepath.Join(dir, "results")
	suite.Require().NoError(suite.engine.SetResultsFolder(results))

	offsets := []int64{0, 1_000_000, 2_000_000, 3_000_000}
	suite.Require().NoError(suite.engine.Load("AAPL", ticksAt(offsets, []float64{10, 11, 12, 13})))

	script := map[int64]types.Signal{
		baseTimestamp:             {Direction: types.DirectionLong, Quantity: 5, Reason: "test entry"},
		baseTimestamp + 1_000_000: {Direction: types.DirectionExit, Quantity: 5, Reason: "test exit"},
	}
	suite.Require().NoError(suite.engine.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, nil)))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	for _, name := range []string{"trades.parquet", "trades.csv", "marks.parquet", "stats.yaml"} {
		_, err := os.Stat(filepath.Join(results, name))
		suite.NoError(err, name)
	}

	csv, err := os.ReadFile(filepath.Join(results, "trades.csv"))
	suite.Require().NoError(err)
	suite.Contains(string(csv), "entry_price")
	suite.Contains(string(csv), "AAPL")

	stats, err := os.ReadFile(filepath.Join(results, "stats.yaml"))
	suite.Require().NoError(err)
	suite.Contains(string(stats), "number_of_trades: 1")
	suite.Contains(string(stats), "name: scripted")
}

func (suite *BacktestEngineV1TestSuite) TestGeneratedSessionTerminates() {
	generator := mocks.NewTickGenerator(42)
	config := mocks.DefaultConfig()
	config.Count = 600
	config.Drift = 0.0005
	ticks := generator.Generate(config)
	mocks.InjectGap(ticks, 300, 15, 12, 3)

	classifier, err := regime.NewClassifier(regime.DefaultConfig())
	suite.Require().NoError(err)

	s, err := strategy.NewNewsMomentumStrategy("GEN", strategy.DefaultNewsMomentumConfig(), classifier, logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.engine.Load("GEN", ticks))
	suite.Require().NoError(suite.engine.RegisterStrategy("GEN", s))
	suite.Require().NoError(suite.engine.Run(engine.LifecycleCallbacks{}))

	suite.GreaterOrEqual(suite.engine.EventsProcessed(), len(ticks))

	for _, trade := range suite.engine.Trades() {
		suite.Greater(trade.Quantity, 0.0)
		suite.GreaterOrEqual(trade.ExitTimestamp, trade.EntryTimestamp)
	}
}

func (suite *BacktestEngineV1TestSuite) TestCustomMarkerRecordsSignals() {
	m := mocks.NewMockMarker(suite.ctrl)

	var marks []types.Mark

	m.EXPECT().Mark(gomock.Any()).DoAndReturn(func(mark types.Mark) error {
		marks = append(marks, mark)

		return nil
	}).Times(1)

	e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()), WithMarker(m))
	suite.Require().NoError(e.Initialize(""))
	defer e.Close()

	suite.Require().NoError(e.Load("AAPL", ticksAt([]int64{0, 300_000}, []float64{10, 11})))

	script := map[int64]types.Signal{
		baseTimestamp: {Direction: types.DirectionLong, Quantity: 10, Reason: "gap"},
	}
	suite.Require().NoError(e.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, nil)))
	suite.Require().NoError(e.Run(engine.LifecycleCallbacks{}))

	suite.Require().Len(marks, 1)
	suite.Equal("AAPL", marks[0].Symbol)
	suite.Equal(baseTimestamp, marks[0].Timestamp)
	suite.Equal("gap", marks[0].Message)
}

func (suite *BacktestEngineV1TestSuite) TestMarkerErrorAbortsRun() {
	markErr := errors.New("disk full")

	m := mocks.NewMockMarker(suite.ctrl)
	m.EXPECT().Mark(gomock.Any()).Return(markErr).Times(1)

	e := NewBacktestEngineV1(WithLogger(logger.NewNopLogger()), WithMarker(m))
	suite.Require().NoError(e.Initialize(""))
	defer e.Close()

	suite.Require().NoError(e.Load("AAPL", ticksAt([]int64{0, 300_000, 600_000}, []float64{10, 11, 12})))

	var fills []types.Fill

	script := map[int64]types.Signal{
		baseTimestamp: {Direction: types.DirectionLong, Quantity: 10},
	}
	suite.Require().NoError(e.RegisterStrategy("AAPL", suite.scriptedStrategy("AAPL", script, &fills)))

	var endErr error

	onEnd := engine.OnRunEndCallback(func(err error) {
		endErr = err
	})

	err := e.Run(engine.LifecycleCallbacks{OnRunEnd: &onEnd})
	suite.Require().Error(err)
	suite.True(codes.HasCode(err, codes.ErrCodeBacktestWriteFailed))
	suite.ErrorIs(err, markErr)
	suite.Equal(err, endErr)

	// the signal never became an order
	suite.Empty(fills)
	suite.Zero(e.TradeCount())
}
