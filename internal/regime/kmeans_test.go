package regime

import (
	"testing"

	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type KMeansTestSuite struct {
	suite.Suite
}

func TestKMeansSuite(t *testing.T) {
	suite.Run(t, new(KMeansTestSuite))
}

func (suite *KMeansTestSuite) TestInitialCentroidsUsePercentiles() {
	features := make([]Feature, 8)
	for i := range features {
		v := float64(8 - i)
		features[i] = Feature{Volatility: v, Direction: v * 10, VolumeNorm: v * 100}
	}

	centroids := InitialCentroids(features, 2)
	suite.Require().Len(centroids, 2)
	// sorted values 1..8: index 2 and index 6
	suite.Equal(Feature{Volatility: 3, Direction: 30, VolumeNorm: 300}, centroids[0])
	suite.Equal(Feature{Volatility: 7, Direction: 70, VolumeNorm: 700}, centroids[1])

	single := InitialCentroids(features, 1)
	suite.Equal(5.0, single[0].Volatility, "k=1 seeds at the median index")
}

func (suite *KMeansTestSuite) TestFitSeparatesBlobs() {
	var features []Feature
	for i := range 10 {
		jitter := float64(i%3) * 0.001
		features = append(features,
			Feature{Volatility: 0.001 + jitter, Direction: 0.001, VolumeNorm: 1 + jitter},
			Feature{Volatility: 0.05 + jitter, Direction: 0.02, VolumeNorm: 4 + jitter},
		)
	}

	result, err := NewKMeans().Fit(features, 2)
	suite.Require().NoError(err)
	suite.True(result.Converged)
	suite.LessOrEqual(result.Iterations, DefaultMaxIterations)

	low := result.Centroids[Nearest(Feature{Volatility: 0, Direction: 0, VolumeNorm: 1}, result.Centroids)]
	high := result.Centroids[Nearest(Feature{Volatility: 0.05, Direction: 0.02, VolumeNorm: 4}, result.Centroids)]

	suite.InDelta(1.0009, low.VolumeNorm, 1e-3)
	suite.InDelta(4.0009, high.VolumeNorm, 1e-3)
	suite.NotEqual(low, high)
}

func (suite *KMeansTestSuite) TestFitStopsAtMaxIterations() {
	features := []Feature{{Volatility: 0}, {Volatility: 1}, {Volatility: 2}, {Volatility: 10}}

	km := &KMeans{MaxIterations: 1, Tolerance: 0}
	result, err := km.Fit(features, 2)
	suite.Require().NoError(err)
	suite.Equal(1, result.Iterations)
}

func (suite *KMeansTestSuite) TestIdenticalFeaturesConvergeImmediately() {
	features := make([]Feature, 12)
	for i := range features {
		features[i] = Feature{Volatility: 0.01, Direction: 0.002, VolumeNorm: 1}
	}

	result, err := NewKMeans().Fit(features, 2)
	suite.Require().NoError(err)
	suite.True(result.Converged)
	suite.Equal(1, result.Iterations)
	// every feature lands in cluster 0, cluster 1 keeps its seed
	suite.InDelta(0.0, features[0].Distance(result.Centroids[0]), 1e-12)
	suite.Equal(features[0], result.Centroids[1])
}

func (suite *KMeansTestSuite) TestFitErrors() {
	_, err := NewKMeans().Fit(nil, 2)
	suite.True(errors.IsInsufficientDataError(err))

	_, err = NewKMeans().Fit([]Feature{{}}, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *KMeansTestSuite) TestNearestTieGoesToLowestIndex() {
	centroids := []Feature{{Volatility: 1}, {Volatility: -1}}
	suite.Equal(0, Nearest(Feature{}, centroids))
}
