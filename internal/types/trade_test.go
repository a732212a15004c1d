package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestAddFillAveragesByVolume() {
	fills := []struct {
		price    float64
		quantity float64
	}{
		{price: 10.0, quantity: 100},
		{price: 12.0, quantity: 50},
		{price: 11.0, quantity: 50},
	}

	position := Position{Symbol: "ACME", Direction: DirectionLong}
	var notional, quantity float64
	for _, f := range fills {
		position.AddFill(f.price, f.quantity, 0.1)
		notional += f.price * f.quantity
		quantity += f.quantity
	}

	suite.InDelta(notional/quantity, position.AveragePrice, 1e-9)
	suite.InDelta(200.0, position.Quantity, 1e-12)
	suite.InDelta(0.3, position.Commission, 1e-12)
}

func (suite *TradeTestSuite) TestRealizedPnL() {
	tests := []struct {
		name      string
		direction Direction
		exit      float64
		want      float64
	}{
		{name: "long profit", direction: DirectionLong, exit: 12, want: 300},
		{name: "long loss", direction: DirectionLong, exit: 9, want: -150},
		{name: "short profit", direction: DirectionShort, exit: 9, want: 150},
		{name: "short loss", direction: DirectionShort, exit: 12, want: -300},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			position := Position{Direction: tc.direction, Quantity: 150, AveragePrice: 10}
			got, _ := position.RealizedPnL(tc.exit).Float64()
			suite.InDelta(tc.want, got, 1e-9)
		})
	}
}

func (suite *TradeTestSuite) TestHoldingTime() {
	trade := TradeRecord{EntryTimestamp: 1_000_000, ExitTimestamp: 3_500_000}
	suite.Equal(2500*time.Millisecond, trade.HoldingTime())
}

func (suite *TradeTestSuite) TestTick() {
	tick := Tick{Timestamp: 1_700_000_000_000_000, BidSize: 300, AskSize: 150}
	suite.Equal(2.0, tick.BidAskRatio())
	suite.Equal(int64(1_700_000_000), tick.Time().Unix())

	suite.Equal(0.0, Tick{BidSize: 300}.BidAskRatio())
}

func (suite *TradeTestSuite) TestRegimeMultiplier() {
	suite.Equal(0.0, RegimeChoppy.PositionMultiplier())
	suite.Equal(1.5, RegimeTrending.PositionMultiplier())
	suite.Equal(1.0, RegimeUnknown.PositionMultiplier())
}
