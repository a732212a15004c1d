package regime

import "github.com/rxtech-lab/argo-catalyst/internal/types"

// LabelPolicy maps the cluster a feature was assigned to onto a regime.
type LabelPolicy func(cluster int, feature Feature) types.Regime

const (
	trendingVolatility = 0.02
	trendingDirection  = 0.01
)

// DefaultLabelPolicy treats cluster 0 as choppy unless the feature itself is
// both volatile and directional. Every other cluster is trending.
func DefaultLabelPolicy(cluster int, feature Feature) types.Regime {
	if cluster != 0 {
		return types.RegimeTrending
	}

	if feature.Volatility > trendingVolatility && feature.Direction > trendingDirection {
		return types.RegimeTrending
	}

	return types.RegimeChoppy
}
