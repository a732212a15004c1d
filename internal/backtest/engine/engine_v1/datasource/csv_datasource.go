package datasource

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"go.uber.org/zap"
)

// microTimestamp accepts integer microseconds or an RFC 3339 time.
type microTimestamp int64

func (m *microTimestamp) UnmarshalCSV(field string) error {
	field = strings.TrimSpace(field)

	if v, err := strconv.ParseInt(field, 10, 64); err == nil {
		*m = microTimestamp(v)

		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, field)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeTickParseFailed, err, "invalid timestamp %q", field)
	}

	*m = microTimestamp(t.UnixMicro())

	return nil
}

type csvTick struct {
	Timestamp microTimestamp `csv:"Timestamp"`
	Price     float64        `csv:"Price"`
	Volume    int64          `csv:"Volume"`
	BidSize   float64        `csv:"Bid_Size"`
	AskSize   float64        `csv:"Ask_Size"`
}

// CSVDataSource reads a Timestamp,Price,Volume,Bid_Size,Ask_Size file.
// The whole file is parsed on Initialize.
type CSVDataSource struct {
	ticks  []types.Tick
	logger *logger.Logger
}

func NewCSVDataSource(log *logger.Logger) *CSVDataSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVDataSource{logger: log}
}

func (c *CSVDataSource) Initialize(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []*csvTick
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return errors.Wrapf(errors.ErrCodeTickParseFailed, err, "failed to parse %s", path)
	}

	c.ticks = make([]types.Tick, 0, len(rows))
	for _, row := range rows {
		c.ticks = append(c.ticks, types.Tick{
			Timestamp: int64(row.Timestamp),
			Price:     row.Price,
			Volume:    row.Volume,
			BidSize:   row.BidSize,
			AskSize:   row.AskSize,
		})
	}

	c.logger.Debug("loaded csv ticks", zap.String("path", path), zap.Int("count", len(c.ticks)))

	return nil
}

func (c *CSVDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool) {
	return func(yield func(types.Tick, error) bool) {
		for _, tick := range c.ticks {
			if !inWindow(tick.Timestamp, start, end) {
				continue
			}

			if !yield(tick, nil) {
				return
			}
		}
	}
}

func (c *CSVDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, tick := range c.ticks {
		if inWindow(tick.Timestamp, start, end) {
			count++
		}
	}

	return count, nil
}

func (c *CSVDataSource) Close() error {
	c.ticks = nil

	return nil
}
