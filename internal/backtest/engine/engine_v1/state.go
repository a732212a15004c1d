package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BacktestState owns the open positions and the trade ledger of a replay.
// Closed trades are mirrored into an in-memory DuckDB table for stats and
// parquet export.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType

	positions map[string]*types.Position
	trades    []types.TradeRecord
	totalPnL  decimal.Decimal
}

// FillResult describes what a fill did to the ledger.
type FillResult struct {
	// Trade is set when the fill closed a position.
	Trade optional.Option[types.TradeRecord]
	// Opened is true when the fill started a new position.
	Opened bool
	// Dropped is true when the fill was ignored.
	Dropped bool
}

func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open state database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to connect to state database", err)
	}

	return &BacktestState{
		db:        db,
		logger:    logger,
		sq:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		positions: make(map[string]*types.Position),
		totalPnL:  decimal.Zero,
	}, nil
}

// Initialize creates the trades table.
func (b *BacktestState) Initialize() error {
	if b == nil || b.db == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest state is nil")
	}

	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			seq BIGINT,
			symbol TEXT,
			direction TEXT,
			entry_timestamp BIGINT,
			exit_timestamp BIGINT,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			commission DOUBLE,
			regime TEXT,
			forced BOOLEAN
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create trades table", err)
	}

	return nil
}

// ApplyFill updates the position of fill.Symbol.
//
// Entry fills open a position or extend one in the same direction. An entry
// against an open position in the other direction is dropped. Exit fills
// close the whole position and append a trade; with no position they are a
// no-op.
func (b *BacktestState) ApplyFill(fill types.Fill) (FillResult, error) {
	if fill.Quantity <= 0 {
		return FillResult{Dropped: true}, errors.Newf(errors.ErrCodeInvalidFill, "fill quantity must be positive, got %v", fill.Quantity)
	}

	position, open := b.positions[fill.Symbol]

	if fill.Direction == types.DirectionExit {
		if !open {
			b.logger.Debug("exit fill without position",
				zap.String("symbol", fill.Symbol),
				zap.Int64("timestamp", fill.Time),
			)

			return FillResult{Dropped: true}, nil
		}

		trade, err := b.close(fill.Symbol, fill.FillPrice, fill.Time, fill.Commission, false)
		if err != nil {
			return FillResult{}, err
		}

		return FillResult{Trade: optional.Some(trade)}, nil
	}

	if !fill.Direction.IsEntry() {
		return FillResult{Dropped: true}, errors.Newf(errors.ErrCodeInvalidFill, "unknown fill direction %q", fill.Direction)
	}

	if !open {
		b.positions[fill.Symbol] = &types.Position{
			Symbol:         fill.Symbol,
			Direction:      fill.Direction,
			Quantity:       fill.Quantity,
			AveragePrice:   fill.FillPrice,
			EntryTimestamp: fill.Time,
			EntryRegime:    fill.Regime,
			Commission:     fill.Commission,
		}

		b.logger.Info("position opened",
			zap.String("symbol", fill.Symbol),
			zap.String("direction", string(fill.Direction)),
			zap.Float64("quantity", fill.Quantity),
			zap.Float64("price", fill.FillPrice),
		)

		return FillResult{Opened: true}, nil
	}

	if position.Direction != fill.Direction {
		b.logger.Warn("dropping entry fill against open position",
			zap.String("symbol", fill.Symbol),
			zap.String("position", string(position.Direction)),
			zap.String("fill", string(fill.Direction)),
		)

		return FillResult{Dropped: true}, nil
	}

	position.AddFill(fill.FillPrice, fill.Quantity, fill.Commission)

	return FillResult{}, nil
}

// ForceClose closes the position of symbol at price. The exit timestamp is
// clamped so it never precedes the entry.
func (b *BacktestState) ForceClose(symbol string, price float64, timestamp int64, commission float64) (optional.Option[types.TradeRecord], error) {
	position, open := b.positions[symbol]
	if !open {
		return optional.None[types.TradeRecord](), nil
	}

	timestamp = max(timestamp, position.EntryTimestamp)

	trade, err := b.close(symbol, price, timestamp, commission, true)
	if err != nil {
		return optional.None[types.TradeRecord](), err
	}

	return optional.Some(trade), nil
}

func (b *BacktestState) close(symbol string, price float64, timestamp int64, commission float64, forced bool) (types.TradeRecord, error) {
	position := b.positions[symbol]
	pnl := position.RealizedPnL(price)
	pnlValue, _ := pnl.Float64()
	totalCommission, _ := decimal.NewFromFloat(position.Commission).Add(decimal.NewFromFloat(commission)).Float64()

	trade := types.TradeRecord{
		ID:             uuid.New().String(),
		Symbol:         symbol,
		Direction:      position.Direction,
		EntryTimestamp: position.EntryTimestamp,
		ExitTimestamp:  timestamp,
		EntryPrice:     position.AveragePrice,
		ExitPrice:      price,
		Quantity:       position.Quantity,
		PnL:            pnlValue,
		Commission:     totalCommission,
		Regime:         position.EntryRegime,
		Forced:         forced,
	}

	_, err := b.sq.
		Insert("trades").
		Columns("id", "seq", "symbol", "direction", "entry_timestamp", "exit_timestamp", "entry_price",
			"exit_price", "quantity", "pnl", "commission", "regime", "forced").
		Values(trade.ID, len(b.trades), trade.Symbol, string(trade.Direction), trade.EntryTimestamp, trade.ExitTimestamp,
			trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.PnL, trade.Commission, string(trade.Regime), trade.Forced).
		RunWith(b.db).
		Exec()
	if err != nil {
		return types.TradeRecord{}, errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to insert trade", err)
	}

	delete(b.positions, symbol)
	b.trades = append(b.trades, trade)
	b.totalPnL = b.totalPnL.Add(pnl)

	b.logger.Info("position closed",
		zap.String("symbol", symbol),
		zap.Float64("exit_price", price),
		zap.Float64("pnl", trade.PnL),
		zap.Bool("forced", forced),
	)

	return trade, nil
}

// GetPosition returns the open position of symbol.
func (b *BacktestState) GetPosition(symbol string) optional.Option[types.Position] {
	position, ok := b.positions[symbol]
	if !ok {
		return optional.None[types.Position]()
	}

	return optional.Some(*position)
}

// OpenSymbols returns the symbols with an open position in sorted order.
func (b *BacktestState) OpenSymbols() []string {
	symbols := make([]string, 0, len(b.positions))
	for symbol := range b.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// Trades returns a copy of the ledger in close order.
func (b *BacktestState) Trades() []types.TradeRecord {
	trades := make([]types.TradeRecord, len(b.trades))
	copy(trades, b.trades)

	return trades
}

func (b *BacktestState) TotalPnL() decimal.Decimal {
	return b.totalPnL
}

func (b *BacktestState) TradeCount() int {
	return len(b.trades)
}

// Cleanup clears positions, the ledger and the trades table.
func (b *BacktestState) Cleanup() error {
	if b == nil || b.db == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest state is nil")
	}

	if _, err := b.db.Exec(`DROP TABLE IF EXISTS trades`); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to cleanup trades table", err)
	}

	b.positions = make(map[string]*types.Position)
	b.trades = nil
	b.totalPnL = decimal.Zero

	return b.Initialize()
}

func (b *BacktestState) Close() error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Close()
}

// Write saves the ledger to trades.parquet and trades.csv in dir.
func (b *BacktestState) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results directory", err)
	}

	parquetPath := filepath.Join(dir, "trades.parquet")

	// squirrel has no COPY support
	if _, err := b.db.Exec(fmt.Sprintf(`COPY (SELECT * EXCLUDE (seq) FROM trades ORDER BY seq) TO %s (FORMAT PARQUET)`, sqlStringLiteral(parquetPath))); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to export trades to parquet", err)
	}

	csvPath := filepath.Join(dir, "trades.csv")

	file, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create trades csv", err)
	}
	defer file.Close()

	trades := b.Trades()
	if err := gocsv.MarshalFile(&trades, file); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write trades csv", err)
	}

	b.logger.Info("exported trades",
		zap.String("parquet", parquetPath),
		zap.String("csv", csvPath),
	)

	return nil
}

// calculateTradeResult aggregates win/loss counts for symbol.
func (b *BacktestState) calculateTradeResult(symbol string) (types.TradeResult, error) {
	query := b.sq.
		Select(
			"COUNT(*)",
			"CAST(COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0) AS BIGINT)",
			"CAST(COALESCE(SUM(CASE WHEN pnl < 0 THEN 1 ELSE 0 END), 0) AS BIGINT)",
			"CAST(COALESCE(SUM(CASE WHEN forced THEN 1 ELSE 0 END), 0) AS BIGINT)",
		).
		From("trades").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(b.db)

	var result types.TradeResult

	err := query.QueryRow().Scan(
		&result.NumberOfTrades,
		&result.NumberOfWinningTrades,
		&result.NumberOfLosingTrades,
		&result.NumberOfForcedCloses,
	)
	if err != nil {
		return types.TradeResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate trade result", err)
	}

	if result.NumberOfTrades > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(result.NumberOfTrades)
	}

	result.MaxDrawdown = maxDrawdown(b.tradesFor(symbol))

	return result, nil
}

// calculateTradeHoldingTime returns holding time statistics in milliseconds.
func (b *BacktestState) calculateTradeHoldingTime(symbol string) (types.TradeHoldingTime, error) {
	query := b.sq.
		Select(
			"CAST(COALESCE(MIN(exit_timestamp - entry_timestamp), 0) / 1000 AS BIGINT)",
			"CAST(COALESCE(MAX(exit_timestamp - entry_timestamp), 0) / 1000 AS BIGINT)",
			"CAST(COALESCE(AVG(exit_timestamp - entry_timestamp), 0) / 1000 AS BIGINT)",
		).
		From("trades").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(b.db)

	var holdingTime types.TradeHoldingTime

	if err := query.QueryRow().Scan(&holdingTime.Min, &holdingTime.Max, &holdingTime.Avg); err != nil {
		return types.TradeHoldingTime{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate holding time", err)
	}

	return holdingTime, nil
}

func (b *BacktestState) calculateTradePnl(symbol string) (types.TradePnl, float64, error) {
	query := b.sq.
		Select(
			"COALESCE(SUM(pnl), 0)",
			"COALESCE(MIN(pnl), 0)",
			"COALESCE(MAX(pnl), 0)",
			"COALESCE(SUM(commission), 0)",
		).
		From("trades").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(b.db)

	var (
		pnl  types.TradePnl
		fees float64
	)

	if err := query.QueryRow().Scan(&pnl.TotalPnL, &pnl.MaximumLoss, &pnl.MaximumProfit, &fees); err != nil {
		return types.TradePnl{}, 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate pnl", err)
	}

	pnl.NetPnL, _ = decimal.NewFromFloat(pnl.TotalPnL).Sub(decimal.NewFromFloat(fees)).Float64()

	return pnl, fees, nil
}

func (b *BacktestState) calculateTradesByRegime(symbol string) (map[types.Regime]int, error) {
	rows, err := b.sq.
		Select("regime", "COUNT(*)").
		From("trades").
		Where(squirrel.Eq{"symbol": symbol}).
		GroupBy("regime").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades by regime", err)
	}
	defer rows.Close()

	byRegime := make(map[types.Regime]int)

	for rows.Next() {
		var (
			regime string
			count  int
		)

		if err := rows.Scan(&regime, &count); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan regime count", err)
		}

		byRegime[types.Regime(regime)] = count
	}

	return byRegime, rows.Err()
}

// GetStats returns one TradeStats per traded symbol, sorted by symbol.
func (b *BacktestState) GetStats(runID string, eventsProcessed int, strategies map[string]types.StrategyInfo) ([]types.TradeStats, error) {
	rows, err := b.sq.
		Select("DISTINCT symbol").
		From("trades").
		OrderBy("symbol").
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get traded symbols", err)
	}

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			rows.Close()

			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	rows.Close()

	stats := make([]types.TradeStats, 0, len(symbols))
	now := time.Now()

	for _, symbol := range symbols {
		tradeResult, err := b.calculateTradeResult(symbol)
		if err != nil {
			return nil, err
		}

		holdingTime, err := b.calculateTradeHoldingTime(symbol)
		if err != nil {
			return nil, err
		}

		tradePnl, fees, err := b.calculateTradePnl(symbol)
		if err != nil {
			return nil, err
		}

		byRegime, err := b.calculateTradesByRegime(symbol)
		if err != nil {
			return nil, err
		}

		stats = append(stats, types.TradeStats{
			ID:               runID,
			Timestamp:        now,
			Symbol:           symbol,
			EventsProcessed:  eventsProcessed,
			TradeResult:      tradeResult,
			TotalFees:        fees,
			TradeHoldingTime: holdingTime,
			TradePnl:         tradePnl,
			TradesByRegime:   byRegime,
			Strategy:         strategies[symbol],
		})
	}

	return stats, nil
}

func (b *BacktestState) tradesFor(symbol string) []types.TradeRecord {
	var trades []types.TradeRecord

	for _, trade := range b.trades {
		if trade.Symbol == symbol {
			trades = append(trades, trade)
		}
	}

	return trades
}

// maxDrawdown is the largest peak-to-trough drop of the cumulative realized
// pnl curve, starting from zero.
func maxDrawdown(trades []types.TradeRecord) float64 {
	equity := decimal.Zero
	peak := decimal.Zero
	drawdown := decimal.Zero

	for _, trade := range trades {
		equity = equity.Add(decimal.NewFromFloat(trade.PnL))
		if equity.GreaterThan(peak) {
			peak = equity
		}

		if dd := peak.Sub(equity); dd.GreaterThan(drawdown) {
			drawdown = dd
		}
	}

	result, _ := drawdown.Float64()

	return result
}

// sqlStringLiteral quotes s as a DuckDB string literal.
func sqlStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
