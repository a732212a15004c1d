package regime

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-catalyst/internal/utils"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

const (
	DefaultLookback    = 100
	DefaultNumClusters = 2

	// MinTicks is the history length below which the regime is forced to CHOPPY.
	MinTicks = 20
	// FeatureWindow is the number of returns each clustering sample spans.
	FeatureWindow = 10
)

// Config configures the regime classifier.
type Config struct {
	// Lookback is the number of ticks kept in the rolling window.
	Lookback int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,description=Ticks kept in the rolling window,default=100" validate:"gte=1"`
	// NumClusters is k for the k-means fit.
	NumClusters int `yaml:"num_clusters" json:"num_clusters" jsonschema:"title=Clusters,description=Number of k-means clusters,default=2" validate:"gte=1,lte=16"`
}

func DefaultConfig() Config {
	return Config{
		Lookback:    DefaultLookback,
		NumClusters: DefaultNumClusters,
	}
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid regime config", err)
	}

	return nil
}

func (c Config) GenerateSchemaJSON() (string, error) {
	return utils.ToJSONSchema(c)
}
