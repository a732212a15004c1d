package types

import "github.com/moznion/go-optional"

type MarkColor string

const (
	MarkColorGreen MarkColor = "green"
	MarkColorRed   MarkColor = "red"
	MarkColorBlue  MarkColor = "blue"
)

// Mark annotates a point of the replay, usually a signal and the rule
// that produced it.
type Mark struct {
	Timestamp int64
	Symbol    string
	Color     MarkColor
	Title     string
	Message   string
	Signal    optional.Option[Signal]
}

// NewSignalMark builds the mark recorded for every dispatched signal.
func NewSignalMark(s Signal) Mark {
	color := MarkColorBlue

	switch s.Direction {
	case DirectionLong:
		color = MarkColorGreen
	case DirectionExit, DirectionShort:
		color = MarkColorRed
	}

	return Mark{
		Timestamp: s.Time,
		Symbol:    s.Symbol,
		Color:     color,
		Title:     string(s.Direction),
		Message:   s.Reason,
		Signal:    optional.Some(s),
	}
}
