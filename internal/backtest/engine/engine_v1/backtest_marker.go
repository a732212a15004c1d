package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"go.uber.org/zap"
)

// BacktestMarker stores marks in an in-memory DuckDB table so they can be
// exported to parquet next to the trades.
type BacktestMarker struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestMarker(logger *logger.Logger) (*BacktestMarker, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open marker database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to connect to marker database", err)
	}

	m := &BacktestMarker{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := m.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return m, nil
}

func (m *BacktestMarker) Mark(mark types.Mark) error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest marker is not initialized")
	}

	var (
		direction, regime string
		quantity, price   float64
	)

	if mark.Signal.IsSome() {
		signal := mark.Signal.Unwrap()
		direction = string(signal.Direction)
		regime = string(signal.Regime)
		quantity = signal.Quantity
		price = signal.Price
	}

	_, err := m.sq.
		Insert("marks").
		Columns("id", "timestamp", "symbol", "color", "title", "message", "direction", "quantity", "price", "regime").
		Values(squirrel.Expr("nextval('mark_id_seq')"), mark.Timestamp, mark.Symbol, string(mark.Color),
			mark.Title, mark.Message, direction, quantity, price, regime).
		RunWith(m.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to insert mark", err)
	}

	return nil
}

func (m *BacktestMarker) GetMarks() ([]types.Mark, error) {
	if m == nil || m.db == nil {
		return nil, errors.New(errors.ErrCodeBacktestStateNil, "backtest marker is not initialized")
	}

	rows, err := m.sq.
		Select("timestamp", "symbol", "color", "title", "message", "direction", "quantity", "price", "regime").
		From("marks").
		OrderBy("timestamp ASC", "id ASC").
		RunWith(m.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query marks", err)
	}
	defer rows.Close()

	var marks []types.Mark

	for rows.Next() {
		var (
			mark                     types.Mark
			color, direction, regime string
			quantity, price          float64
		)

		if err := rows.Scan(&mark.Timestamp, &mark.Symbol, &color, &mark.Title, &mark.Message,
			&direction, &quantity, &price, &regime); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan mark", err)
		}

		mark.Color = types.MarkColor(color)
		mark.Signal = optional.None[types.Signal]()

		if direction != "" {
			mark.Signal = optional.Some(types.Signal{
				Time:      mark.Timestamp,
				Symbol:    mark.Symbol,
				Direction: types.Direction(direction),
				Quantity:  quantity,
				Price:     price,
				Regime:    types.Regime(regime),
				Reason:    mark.Message,
			})
		}

		marks = append(marks, mark)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate marks", err)
	}

	return marks, nil
}

// Write exports the marks to marks.parquet inside dir.
func (m *BacktestMarker) Write(dir string) error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest marker is not initialized")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results directory", err)
	}

	marksPath := filepath.Join(dir, "marks.parquet")

	if _, err := m.db.Exec(fmt.Sprintf(`COPY marks TO %s (FORMAT PARQUET)`, sqlStringLiteral(marksPath))); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to export marks", err)
	}

	m.logger.Info("exported marks", zap.String("path", marksPath))

	return nil
}

// Cleanup drops every recorded mark.
func (m *BacktestMarker) Cleanup() error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest marker is not initialized")
	}

	if _, err := m.db.Exec(`DROP TABLE IF EXISTS marks; DROP SEQUENCE IF EXISTS mark_id_seq;`); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to reset marks", err)
	}

	return m.initialize()
}

func (m *BacktestMarker) Close() error {
	if m == nil || m.db == nil {
		return nil
	}

	return m.db.Close()
}

func (m *BacktestMarker) initialize() error {
	if _, err := m.db.Exec(`CREATE SEQUENCE IF NOT EXISTS mark_id_seq`); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create mark sequence", err)
	}

	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS marks (
			id BIGINT PRIMARY KEY,
			"timestamp" BIGINT,
			symbol TEXT,
			color TEXT,
			title TEXT,
			message TEXT,
			direction TEXT,
			quantity DOUBLE,
			price DOUBLE,
			regime TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create marks table", err)
	}

	return nil
}
