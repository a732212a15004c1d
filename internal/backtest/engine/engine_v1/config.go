package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-catalyst/internal/version"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultLatency is the delay between an order and its fill.
const DefaultLatency = 200 * time.Millisecond

type BacktestEngineV1Config struct {
	Latency            time.Duration              `yaml:"latency" json:"latency" jsonschema:"title=Latency,description=Delay between an order and its fill (e.g. 200ms)" validate:"gte=0"`
	Broker             commission_fee.Broker      `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The commission model applied to every fill" validate:"required"`
	CommissionRate     float64                    `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Fraction of notional charged by the fixed_rate broker,minimum=0" validate:"gte=0"`
	StartTime          optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the replay window"`
	EndTime            optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the replay window"`
	StrategyAPIVersion string                     `yaml:"strategy_api_version" json:"strategy_api_version" jsonschema:"title=Strategy API Version,description=Version strategies must be compatible with"`
}

// UnmarshalYAML overlays the document on EmptyConfig so missing keys keep
// their defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Latency            *string                `yaml:"latency"`
		Broker             *commission_fee.Broker `yaml:"broker"`
		CommissionRate     *float64               `yaml:"commission_rate"`
		StartTime          *time.Time             `yaml:"start_time"`
		EndTime            *time.Time             `yaml:"end_time"`
		StrategyAPIVersion *string                `yaml:"strategy_api_version"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = EmptyConfig()

	if raw.Latency != nil {
		latency, err := time.ParseDuration(*raw.Latency)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidLatency, err, "invalid latency %q", *raw.Latency)
		}

		c.Latency = latency
	}

	if raw.Broker != nil {
		c.Broker = *raw.Broker
	}

	if raw.CommissionRate != nil {
		c.CommissionRate = *raw.CommissionRate
	}

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	}

	if raw.StrategyAPIVersion != nil {
		c.StrategyAPIVersion = *raw.StrategyAPIVersion
	}

	return nil
}

// ParseConfig decodes and validates an engine config document. An empty
// document yields EmptyConfig.
func ParseConfig(content string) (BacktestEngineV1Config, error) {
	config := EmptyConfig()

	if strings.TrimSpace(content) == "" {
		return config, nil
	}

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidLatency) {
			return config, err
		}

		return config, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse engine config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	if !c.Broker.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidBroker, "unknown broker %q", c.Broker)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidPeriod, "end_time is before start_time")
	}

	return nil
}

// LatencyMicros returns the fill latency in microseconds.
func (c BacktestEngineV1Config) LatencyMicros() int64 {
	return c.Latency.Microseconds()
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t.String() == "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case t == reflect.TypeOf(time.Duration(0)):
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
				}
			case strings.Contains(t.String(), "commission_fee.Broker"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a config with a fixed replay window.
func TestConfig(startTime time.Time, endTime time.Time, broker commission_fee.Broker) BacktestEngineV1Config {
	config := EmptyConfig()
	config.Broker = broker
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Latency:            DefaultLatency,
		Broker:             commission_fee.BrokerFixedRate,
		CommissionRate:     commission_fee.DefaultCommissionRate,
		StartTime:          optional.None[time.Time](),
		EndTime:            optional.None[time.Time](),
		StrategyAPIVersion: version.StrategyAPIVersion,
	}
}
