package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-catalyst/internal/utils"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"gopkg.in/yaml.v3"
)

const StrategyNameNewsMomentum = "news_momentum"

// NewsMomentumConfig holds the entry thresholds and sizing of the news
// momentum strategy.
type NewsMomentumConfig struct {
	MinRelativeVolume float64 `yaml:"min_relative_volume" json:"min_relative_volume" jsonschema:"default=5" validate:"gt=0"`
	MinGapPercent     float64 `yaml:"min_gap_percent" json:"min_gap_percent" jsonschema:"default=10"`
	MinBidAskRatio    float64 `yaml:"min_bid_ask_ratio" json:"min_bid_ask_ratio" jsonschema:"default=1.5" validate:"gte=0"`
	BasePositionSize  float64 `yaml:"base_position_size" json:"base_position_size" jsonschema:"default=100" validate:"gt=0"`
	FastEMA           int     `yaml:"fast_ema" json:"fast_ema" jsonschema:"default=9" validate:"gte=1,ltfield=TrendEMA"`
	TrendEMA          int     `yaml:"trend_ema" json:"trend_ema" jsonschema:"default=90" validate:"gte=1,ltfield=LongEMA"`
	LongEMA           int     `yaml:"long_ema" json:"long_ema" jsonschema:"default=200" validate:"gte=1"`
	// StrictCrossover requires the fast EMA to cross above the trend EMA on
	// the entry tick instead of merely being above it.
	StrictCrossover bool `yaml:"strict_crossover" json:"strict_crossover" jsonschema:"default=false"`
}

// Config selects a strategy by name and carries its parameters.
type Config struct {
	Name         string `yaml:"name" json:"name" jsonschema:"enum=news_momentum,default=news_momentum" validate:"required"`
	NewsMomentum NewsMomentumConfig `yaml:",inline" json:"news_momentum"`
}

func DefaultNewsMomentumConfig() NewsMomentumConfig {
	return NewsMomentumConfig{
		MinRelativeVolume: 5.0,
		MinGapPercent:     10.0,
		MinBidAskRatio:    1.5,
		BasePositionSize:  100.0,
		FastEMA:           9,
		TrendEMA:          90,
		LongEMA:           200,
		StrictCrossover:   false,
	}
}

func DefaultConfig() Config {
	return Config{
		Name:         StrategyNameNewsMomentum,
		NewsMomentum: DefaultNewsMomentumConfig(),
	}
}

// ParseConfig decodes YAML over the defaults, so omitted keys keep their
// default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	return nil
}

// GenerateSchemaJSON returns the JSON schema of the strategy section of a
// run config. The strategy parameters sit next to name, as in YAML.
func (c Config) GenerateSchemaJSON() (string, error) {
	type strategySection struct {
		Name string `json:"name" jsonschema:"title=Strategy,enum=news_momentum,default=news_momentum"`
		NewsMomentumConfig
	}

	return utils.ToJSONSchema(strategySection{Name: c.Name, NewsMomentumConfig: c.NewsMomentum})
}
