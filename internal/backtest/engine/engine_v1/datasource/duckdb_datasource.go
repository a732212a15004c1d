package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource exposes a parquet tick file as the ticks view.
// The file needs the columns timestamp (µs), price, volume, bid_size and ask_size.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens a DuckDB database at dbPath (":memory:" for an
// in-memory database).
func NewDuckDBDataSource(dbPath string, log *logger.Logger) (*DuckDBDataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if dbPath == ":memory:" {
		dbPath = ""
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("initializing duckdb tick source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS ticks`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop ticks view", err)
	}

	// squirrel has no CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW ticks AS SELECT * FROM read_parquet('%s')`, strings.ReplaceAll(path, "'", "''"))
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read %s", path)
	}

	return nil
}

func (d *DuckDBDataSource) window(builder squirrel.SelectBuilder, start, end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{`"timestamp"`: start.Unwrap().UnixMicro()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{`"timestamp"`: end.Unwrap().UnixMicro()})
	}

	return builder
}

func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.window(d.sq.Select("COUNT(*)").From("ticks"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count ticks", err)
	}

	return count, nil
}

func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool) {
	return func(yield func(types.Tick, error) bool) {
		query, args, err := d.window(
			d.sq.Select(`"timestamp"`, "price", "volume", "bid_size", "ask_size").From("ticks"),
			start, end,
		).ToSql()
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build tick query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query ticks", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var tick types.Tick
			if err := rows.Scan(&tick.Timestamp, &tick.Price, &tick.Volume, &tick.BidSize, &tick.AskSize); err != nil {
				yield(types.Tick{}, errors.Wrap(errors.ErrCodeTickParseFailed, "failed to scan tick", err))

				return
			}

			if !yield(tick, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "tick iteration failed", err))
		}
	}
}

func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
