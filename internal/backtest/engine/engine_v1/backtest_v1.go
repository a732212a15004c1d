package engine

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/marker"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/internal/version"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ engine.Engine = (*BacktestEngineV1)(nil)

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	resultsFolder string
	log           *logger.Logger
	state         *BacktestState
	marker        marker.Marker
	customMarker  marker.Marker
	metrics       *Metrics
	commissionFee commission_fee.CommissionFee
	queue         *EventQueue
	ticks         map[string][]types.Tick
	series        map[string]*datasource.TickSeries
	strategies    map[string]strategy.Strategy
	clock         int64
	processed     int
	initialized   bool
}

type Option func(*BacktestEngineV1)

// WithLogger replaces the production logger built by Initialize.
func WithLogger(log *logger.Logger) Option {
	return func(b *BacktestEngineV1) {
		b.log = log
	}
}

// WithMarker records signals in m instead of the DuckDB-backed marker.
// Results written by Run then omit marks.parquet.
func WithMarker(m marker.Marker) Option {
	return func(b *BacktestEngineV1) {
		b.customMarker = m
	}
}

func NewBacktestEngineV1(opts ...Option) *BacktestEngineV1 {
	b := &BacktestEngineV1{
		config:     EmptyConfig(),
		queue:      NewEventQueue(),
		ticks:      make(map[string][]types.Tick),
		series:     make(map[string]*datasource.TickSeries),
		strategies: make(map[string]strategy.Strategy),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	b.config = parsed

	if b.log == nil {
		b.log, err = logger.NewLogger()
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
		}
	}

	if err := b.Close(); err != nil {
		b.log.Warn("failed to release previous run", zap.Error(err))
	}

	b.state, err = NewBacktestState(b.log)
	if err != nil {
		return err
	}

	if err := b.state.Initialize(); err != nil {
		return err
	}

	if b.customMarker != nil {
		b.marker = b.customMarker
	} else {
		b.marker, err = NewBacktestMarker(b.log)
		if err != nil {
			return err
		}
	}

	b.metrics = NewMetrics()
	b.commissionFee = commission_fee.GetCommissionFeeHandler(b.config.Broker, b.config.CommissionRate)
	b.queue = NewEventQueue()
	b.ticks = make(map[string][]types.Tick)
	b.series = make(map[string]*datasource.TickSeries)
	b.strategies = make(map[string]strategy.Strategy)
	b.clock = 0
	b.processed = 0
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Duration("latency", b.config.Latency),
		zap.String("broker", string(b.config.Broker)),
	)

	return nil
}

// Load implements engine.Engine.
func (b *BacktestEngineV1) Load(symbol string, ticks []types.Tick) error {
	if err := b.requireInitialized(); err != nil {
		return err
	}

	if symbol == "" {
		return errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	windowed := make([]types.Tick, 0, len(ticks))

	for _, tick := range ticks {
		if b.inWindow(tick.Timestamp) {
			windowed = append(windowed, tick)
		}
	}

	if len(windowed) == 0 {
		return errors.Newf(errors.ErrCodeNoTickData, "no ticks to load for %s", symbol)
	}

	if _, loaded := b.ticks[symbol]; loaded {
		return errors.Newf(errors.ErrCodeInvalidParameter, "ticks for %s are already loaded", symbol)
	}

	b.ticks[symbol] = windowed
	b.series[symbol] = datasource.NewTickSeries(windowed)

	for _, tick := range windowed {
		b.queue.Push(types.MarketUpdate{Symbol: symbol, Tick: tick})
	}

	b.metrics.QueueDepth.Set(float64(b.queue.Len()))
	b.log.Debug("Ticks loaded",
		zap.String("symbol", symbol),
		zap.Int("ticks", len(windowed)),
		zap.Int("skipped", len(ticks)-len(windowed)),
	)

	return nil
}

// LoadDataSource implements engine.Engine.
func (b *BacktestEngineV1) LoadDataSource(symbol string, dataSource datasource.DataSource) error {
	if err := b.requireInitialized(); err != nil {
		return err
	}

	if dataSource == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "data source is nil")
	}

	ticks, err := datasource.Collect(dataSource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read ticks for %s", symbol)
	}

	return b.Load(symbol, ticks)
}

// RegisterStrategy implements engine.Engine.
func (b *BacktestEngineV1) RegisterStrategy(symbol string, s strategy.Strategy) error {
	if err := b.requireInitialized(); err != nil {
		return err
	}

	if s == nil {
		return errors.New(errors.ErrCodeMissingParameter, "strategy is nil")
	}

	if err := version.CheckVersionCompatibility(b.config.StrategyAPIVersion, s.Version()); err != nil {
		b.log.Error("Strategy version is not compatible",
			zap.String("strategy", s.Name()),
			zap.String("engine_version", b.config.StrategyAPIVersion),
			zap.String("strategy_version", s.Version()),
			zap.Error(err),
		)

		return err
	}

	b.strategies[symbol] = s
	b.log.Debug("Strategy registered",
		zap.String("symbol", symbol),
		zap.String("strategy", s.Name()),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(callbacks engine.LifecycleCallbacks) (err error) {
	if err := b.requireInitialized(); err != nil {
		return err
	}

	defer func() {
		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(err)
		}
	}()

	if len(b.strategies) == 0 {
		b.log.Warn("No strategies registered, market updates will be dropped")
	}

	runID := uuid.New().String()

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, b.queue.Len()); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	b.log.Info("Backtest started",
		zap.String("run_id", runID),
		zap.Int("queued", b.queue.Len()),
		zap.Int("strategies", len(b.strategies)),
	)

	for {
		event, ok := b.queue.Pop()
		if !ok {
			break
		}

		b.clock = event.EventTime()
		b.processed++
		b.metrics.observeEvent(event)

		if err := b.dispatch(event, callbacks); err != nil {
			return err
		}

		b.metrics.QueueDepth.Set(float64(b.queue.Len()))

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(b.processed, b.queue.Len()); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", err)
			}
		}
	}

	if err := b.closeOpenPositions(callbacks); err != nil {
		return err
	}

	if b.resultsFolder != "" {
		if err := b.writeResults(runID); err != nil {
			return err
		}
	}

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.Int("events", b.processed),
		zap.Int("trades", b.state.TradeCount()),
		zap.String("total_pnl", b.state.TotalPnL().String()),
	)

	return nil
}

func (b *BacktestEngineV1) dispatch(event types.Event, callbacks engine.LifecycleCallbacks) error {
	switch e := event.(type) {
	case types.MarketUpdate:
		b.onMarketUpdate(e)
	case types.Signal:
		return b.onSignal(e)
	case types.Order:
		b.onOrder(e)
	case types.Fill:
		return b.onFill(e, callbacks)
	}

	return nil
}

func (b *BacktestEngineV1) onMarketUpdate(update types.MarketUpdate) {
	s, ok := b.strategies[update.Symbol]
	if !ok {
		b.log.Debug("No strategy for symbol, dropping market update",
			zap.String("symbol", update.Symbol),
			zap.Int64("timestamp", update.Tick.Timestamp),
		)

		return
	}

	for _, signal := range s.OnMarketUpdate(update.Tick) {
		if signal.Symbol == "" {
			signal.Symbol = update.Symbol
		}

		if signal.Time < update.Tick.Timestamp {
			signal.Time = update.Tick.Timestamp
		}

		b.queue.Push(signal)
	}
}

func (b *BacktestEngineV1) onSignal(signal types.Signal) error {
	b.metrics.observeSignal(signal)

	if err := b.marker.Mark(types.NewSignalMark(signal)); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to mark %s signal for %s", signal.Direction, signal.Symbol)
	}

	b.queue.Push(types.NewOrderFromSignal(signal))

	return nil
}

func (b *BacktestEngineV1) onOrder(order types.Order) {
	if order.Quantity <= 0 {
		b.log.Warn("Dropping order with non-positive quantity",
			zap.String("symbol", order.Symbol),
			zap.Float64("quantity", order.Quantity),
		)

		return
	}

	fillTime := order.Time + b.config.LatencyMicros()
	price := order.Price

	if series, ok := b.series[order.Symbol]; ok {
		if tick, found := series.FirstAtOrAfter(fillTime); found {
			price = tick.Price
		}
	}

	b.queue.Push(types.Fill{
		Time:       fillTime,
		Symbol:     order.Symbol,
		Direction:  order.Direction,
		Quantity:   order.Quantity,
		FillPrice:  price,
		Commission: b.commissionFee.Calculate(price, order.Quantity),
		Regime:     order.Regime,
	})
}

func (b *BacktestEngineV1) onFill(fill types.Fill, callbacks engine.LifecycleCallbacks) error {
	b.metrics.observeFill(fill)

	result, err := b.state.ApplyFill(fill)
	if err != nil {
		return err
	}

	if result.Trade.IsSome() {
		b.tradeClosed(result.Trade.Unwrap(), callbacks)
	}

	// a dropped entry never reached the ledger, so the strategy keeps its state
	if result.Dropped && fill.Direction.IsEntry() {
		return nil
	}

	if s, ok := b.strategies[fill.Symbol]; ok {
		s.OnFill(fill)
	}

	return nil
}

// closeOpenPositions force-closes every open position at its symbol's last
// tick, in symbol order.
func (b *BacktestEngineV1) closeOpenPositions(callbacks engine.LifecycleCallbacks) error {
	for _, symbol := range b.state.OpenSymbols() {
		series, ok := b.series[symbol]
		if !ok {
			continue
		}

		last, ok := series.Last()
		if !ok {
			continue
		}

		position := b.state.GetPosition(symbol).Unwrap()
		commission := b.commissionFee.Calculate(last.Price, position.Quantity)

		trade, err := b.state.ForceClose(symbol, last.Price, last.Timestamp, commission)
		if err != nil {
			return err
		}

		if trade.IsNone() {
			continue
		}

		closed := trade.Unwrap()
		b.tradeClosed(closed, callbacks)

		if s, ok := b.strategies[symbol]; ok {
			s.OnFill(types.Fill{
				Time:       closed.ExitTimestamp,
				Symbol:     symbol,
				Direction:  types.DirectionExit,
				Quantity:   closed.Quantity,
				FillPrice:  closed.ExitPrice,
				Commission: commission,
				Regime:     closed.Regime,
			})
		}
	}

	return nil
}

func (b *BacktestEngineV1) tradeClosed(trade types.TradeRecord, callbacks engine.LifecycleCallbacks) {
	total, _ := b.state.TotalPnL().Float64()
	b.metrics.observeTrade(total)

	if callbacks.OnTradeClosed != nil {
		(*callbacks.OnTradeClosed)(trade)
	}
}

func (b *BacktestEngineV1) writeResults(runID string) error {
	if err := os.MkdirAll(b.resultsFolder, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results folder", err)
	}

	if err := b.state.Write(b.resultsFolder); err != nil {
		return err
	}

	marksPath := ""

	if backtestMarker, ok := b.marker.(*BacktestMarker); ok {
		if err := backtestMarker.Write(b.resultsFolder); err != nil {
			return err
		}

		marksPath = filepath.Join(b.resultsFolder, "marks.parquet")
	}

	infos := make(map[string]types.StrategyInfo, len(b.strategies))
	for symbol, s := range b.strategies {
		infos[symbol] = types.StrategyInfo{Name: s.Name(), Version: s.Version()}
	}

	stats, err := b.state.GetStats(runID, b.processed, infos)
	if err != nil {
		return err
	}

	for i := range stats {
		stats[i].TradesFilePath = filepath.Join(b.resultsFolder, "trades.parquet")
		stats[i].MarksFilePath = marksPath
	}

	if err := types.WriteTradeStats(filepath.Join(b.resultsFolder, "stats.yaml"), stats); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write stats", err)
	}

	return nil
}

// Trades implements engine.Engine.
func (b *BacktestEngineV1) Trades() []types.TradeRecord {
	if b.state == nil {
		return nil
	}

	return b.state.Trades()
}

// TotalPnL implements engine.Engine.
func (b *BacktestEngineV1) TotalPnL() decimal.Decimal {
	if b.state == nil {
		return decimal.Zero
	}

	return b.state.TotalPnL()
}

// TradeCount implements engine.Engine.
func (b *BacktestEngineV1) TradeCount() int {
	if b.state == nil {
		return 0
	}

	return b.state.TradeCount()
}

// Clock implements engine.Engine.
func (b *BacktestEngineV1) Clock() int64 {
	return b.clock
}

// EventsProcessed returns the number of events dispatched by Run.
func (b *BacktestEngineV1) EventsProcessed() int {
	return b.processed
}

// Symbols returns the loaded symbols in sorted order.
func (b *BacktestEngineV1) Symbols() []string {
	symbols := make([]string, 0, len(b.ticks))
	for symbol := range b.ticks {
		symbols = append(symbols, symbol)
	}

	slices.Sort(symbols)

	return symbols
}

// Marks returns every signal mark recorded during the run.
func (b *BacktestEngineV1) Marks() ([]types.Mark, error) {
	if b.marker == nil {
		return nil, errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	return b.marker.GetMarks()
}

// Metrics returns the metrics of the engine. Nil before Initialize.
func (b *BacktestEngineV1) Metrics() *Metrics {
	return b.metrics
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// Close releases the DuckDB handles of the state and the marker.
func (b *BacktestEngineV1) Close() error {
	var firstErr error

	if b.state != nil {
		if err := b.state.Close(); err != nil {
			firstErr = err
		}

		b.state = nil
	}

	if backtestMarker, ok := b.marker.(*BacktestMarker); ok {
		if err := backtestMarker.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	b.marker = nil
	b.initialized = false

	return firstErr
}

func (b *BacktestEngineV1) requireInitialized() error {
	if !b.initialized || b.state == nil {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized, call Initialize first")
	}

	return nil
}

func (b *BacktestEngineV1) inWindow(ts int64) bool {
	if b.config.StartTime.IsSome() && ts < b.config.StartTime.Unwrap().UnixMicro() {
		return false
	}

	if b.config.EndTime.IsSome() && ts > b.config.EndTime.Unwrap().UnixMicro() {
		return false
	}

	return true
}
