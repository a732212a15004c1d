package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type EventTestSuite struct {
	suite.Suite
}

func TestEventSuite(t *testing.T) {
	suite.Run(t, new(EventTestSuite))
}

func (suite *EventTestSuite) TestEventAccessors() {
	tests := []struct {
		name       string
		event      Event
		wantKind   EventKind
		wantTime   int64
		wantSymbol string
	}{
		{
			name:       "market update uses tick timestamp",
			event:      MarketUpdate{Symbol: "ACME", Tick: Tick{Timestamp: 10, Price: 1}},
			wantKind:   EventKindMarketUpdate,
			wantTime:   10,
			wantSymbol: "ACME",
		},
		{
			name:       "signal",
			event:      Signal{Time: 20, Symbol: "ACME", Direction: DirectionLong},
			wantKind:   EventKindSignal,
			wantTime:   20,
			wantSymbol: "ACME",
		},
		{
			name:       "order",
			event:      Order{Time: 30, Symbol: "BETA"},
			wantKind:   EventKindOrder,
			wantTime:   30,
			wantSymbol: "BETA",
		},
		{
			name:       "fill",
			event:      Fill{Time: 40, Symbol: "BETA"},
			wantKind:   EventKindFill,
			wantTime:   40,
			wantSymbol: "BETA",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.wantKind, tc.event.Kind())
			suite.Equal(tc.wantTime, tc.event.EventTime())
			suite.Equal(tc.wantSymbol, tc.event.EventSymbol())
		})
	}
}

func (suite *EventTestSuite) TestNewOrderFromSignal() {
	signal := Signal{
		Time:      1_000,
		Symbol:    "ACME",
		Direction: DirectionLong,
		Quantity:  150,
		Price:     11.5,
		Regime:    RegimeTrending,
		Reason:    "gap and volume breakout",
	}

	order := NewOrderFromSignal(signal)
	suite.Equal(Order{
		Time:      1_000,
		Symbol:    "ACME",
		Direction: DirectionLong,
		Quantity:  150,
		Price:     11.5,
		Regime:    RegimeTrending,
		Reason:    "gap and volume breakout",
	}, order)
}

func (suite *EventTestSuite) TestDirectionIsEntry() {
	suite.True(DirectionLong.IsEntry())
	suite.True(DirectionShort.IsEntry())
	suite.False(DirectionExit.IsEntry())
}

func (suite *EventTestSuite) TestSignalMark() {
	mark := NewSignalMark(Signal{Time: 5, Symbol: "ACME", Direction: DirectionExit, Reason: "price below vwap"})
	suite.Equal(MarkColorRed, mark.Color)
	suite.Equal("EXIT", mark.Title)
	suite.Equal("price below vwap", mark.Message)
	suite.True(mark.Signal.IsSome())
}
