package marker

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// Marker records annotated points of a replay.
type Marker interface {
	Mark(mark types.Mark) error
	// GetMarks returns all marks ordered by timestamp.
	GetMarks() ([]types.Mark, error)
}
