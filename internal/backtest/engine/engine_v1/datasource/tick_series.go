package datasource

import (
	"slices"
	"sort"

	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

// TickSeries is a timestamp-sorted copy of a symbol's ticks used for fill
// price and last-tick lookups. Ticks with equal timestamps keep input order.
type TickSeries struct {
	ticks []types.Tick
}

func NewTickSeries(ticks []types.Tick) *TickSeries {
	sorted := slices.Clone(ticks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	return &TickSeries{ticks: sorted}
}

// FirstAtOrAfter returns the earliest tick with timestamp >= ts.
func (s *TickSeries) FirstAtOrAfter(ts int64) (types.Tick, bool) {
	i := sort.Search(len(s.ticks), func(i int) bool {
		return s.ticks[i].Timestamp >= ts
	})

	if i == len(s.ticks) {
		return types.Tick{}, false
	}

	return s.ticks[i], true
}

// Last returns the tick with the greatest timestamp.
func (s *TickSeries) Last() (types.Tick, bool) {
	if len(s.ticks) == 0 {
		return types.Tick{}, false
	}

	return s.ticks[len(s.ticks)-1], true
}

func (s *TickSeries) Len() int {
	return len(s.ticks)
}
