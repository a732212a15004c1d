package types

import "time"

// Tick is a single market observation. Timestamp is in microseconds since
// the Unix epoch.
type Tick struct {
	Timestamp int64   `csv:"Timestamp" json:"timestamp" yaml:"timestamp"`
	Price     float64 `csv:"Price" json:"price" yaml:"price"`
	Volume    int64   `csv:"Volume" json:"volume" yaml:"volume"`
	BidSize   float64 `csv:"Bid_Size" json:"bid_size" yaml:"bid_size"`
	AskSize   float64 `csv:"Ask_Size" json:"ask_size" yaml:"ask_size"`
}

func (t Tick) Time() time.Time {
	return time.UnixMicro(t.Timestamp).UTC()
}

// BidAskRatio returns bid size over ask size, or 0 when the ask side is empty.
func (t Tick) BidAskRatio() float64 {
	if t.AskSize <= 0 {
		return 0
	}

	return t.BidSize / t.AskSize
}
