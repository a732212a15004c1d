// Package regime labels the market state of a symbol by clustering
// volatility, direction and relative volume over a rolling tick window.
package regime

import (
	"github.com/rxtech-lab/argo-catalyst/internal/indicator"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"go.uber.org/zap"
)

// Classifier re-fits k-means on every update and labels the latest tick.
type Classifier struct {
	config    Config
	history   *indicator.Window[types.Tick]
	kmeans    *KMeans
	policy    LabelPolicy
	centroids []Feature
	current   types.Regime
	log       *logger.Logger
}

type Option func(*Classifier)

// WithLabelPolicy replaces DefaultLabelPolicy.
func WithLabelPolicy(policy LabelPolicy) Option {
	return func(c *Classifier) {
		c.policy = policy
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Classifier) {
		c.log = log
	}
}

func NewClassifier(config Config, opts ...Option) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		config:  config,
		history: indicator.NewWindow[types.Tick](config.Lookback),
		kmeans:  NewKMeans(),
		policy:  DefaultLabelPolicy,
		current: types.RegimeChoppy,
		log:     logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// UpdateAndClassify appends tick to the window and returns the regime of
// the latest tick. Fewer than MinTicks retained ticks yield CHOPPY.
func (c *Classifier) UpdateAndClassify(tick types.Tick) types.Regime {
	c.history.Push(tick)

	if c.history.Len() < MinTicks {
		c.current = types.RegimeChoppy

		return c.current
	}

	ticks := c.history.Values()

	fit, err := c.kmeans.Fit(ExtractFeatures(ticks), c.config.NumClusters)
	if err != nil {
		c.log.Debug("regime fit skipped", zap.Error(err))
		c.current = types.RegimeChoppy

		return c.current
	}

	c.centroids = fit.Centroids

	current := NewFeature(ticks, tick.Volume)
	cluster := Nearest(current, c.centroids)
	c.current = c.policy(cluster, current)

	c.log.Debug("regime classified",
		zap.Int64("timestamp", tick.Timestamp),
		zap.Int("cluster", cluster),
		zap.Int("iterations", fit.Iterations),
		zap.Float64("volatility", current.Volatility),
		zap.Float64("direction", current.Direction),
		zap.Float64("volume_norm", current.VolumeNorm),
		zap.String("regime", string(c.current)),
	)

	return c.current
}

func (c *Classifier) CurrentRegime() types.Regime {
	return c.current
}

func (c *Classifier) PositionMultiplier() float64 {
	return c.current.PositionMultiplier()
}

// Centroids returns a copy of the centroids from the latest fit.
func (c *Classifier) Centroids() []Feature {
	out := make([]Feature, len(c.centroids))
	copy(out, c.centroids)

	return out
}

// Reset drops the window and returns to CHOPPY.
func (c *Classifier) Reset() {
	c.history.Clear()
	c.centroids = nil
	c.current = types.RegimeChoppy
}
