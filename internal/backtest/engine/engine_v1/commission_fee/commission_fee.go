package commission_fee

// CommissionFee prices a single fill.
type CommissionFee interface {
	// Calculate returns the fee in USD for filling quantity at price.
	Calculate(price float64, quantity float64) float64
}

type Broker string

const (
	BrokerFixedRate         Broker = "fixed_rate"
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

// DefaultCommissionRate is the fraction of notional charged by the fixed rate model.
const DefaultCommissionRate = 0.0001

var AllBrokers = []any{
	BrokerFixedRate,
	BrokerInteractiveBroker,
	BrokerZero,
}

// IsValid reports whether b names a known commission model.
func (b Broker) IsValid() bool {
	for _, broker := range AllBrokers {
		if broker == b {
			return true
		}
	}

	return false
}

// GetCommissionFeeHandler returns the model for broker. rate is only used by
// the fixed rate model. Unknown brokers fall back to the fixed rate model.
func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewFixedRateCommissionFee(rate)
	}
}
