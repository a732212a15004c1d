package datasource

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

// DataSource reads ticks of one symbol from a file.
type DataSource interface {
	// Initialize opens the tick file at path.
	Initialize(path string) error
	// ReadAll yields ticks in file order, restricted to [start, end] when given.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool)
	// Count returns the number of ticks ReadAll would yield.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	Close() error
}

// NewDataSource picks a data source by file extension (.csv or .parquet)
// and initializes it with path.
func NewDataSource(path string, log *logger.Logger) (DataSource, error) {
	var ds DataSource

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds = NewCSVDataSource(log)
	case ".parquet":
		duck, err := NewDuckDBDataSource(":memory:", log)
		if err != nil {
			return nil, err
		}

		ds = duck
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported tick file %q, expected .csv or .parquet", path)
	}

	if err := ds.Initialize(path); err != nil {
		_ = ds.Close()

		return nil, err
	}

	return ds, nil
}

// Collect drains ReadAll into a slice.
func Collect(ds DataSource, start, end optional.Option[time.Time]) ([]types.Tick, error) {
	var ticks []types.Tick

	for tick, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		ticks = append(ticks, tick)
	}

	return ticks, nil
}

// inWindow reports whether ts (µs) lies within the optional bounds.
func inWindow(ts int64, start, end optional.Option[time.Time]) bool {
	if start.IsSome() && ts < start.Unwrap().UnixMicro() {
		return false
	}

	if end.IsSome() && ts > end.Unwrap().UnixMicro() {
		return false
	}

	return true
}
