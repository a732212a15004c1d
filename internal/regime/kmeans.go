package regime

import (
	"math"
	"sort"

	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

const (
	DefaultMaxIterations = 10
	DefaultTolerance     = 0.001
)

// KMeans is a deterministic Lloyd's k-means over Features. Centroids start
// at per-dimension percentiles, so identical input always yields identical
// centroids.
type KMeans struct {
	MaxIterations int
	Tolerance     float64
}

func NewKMeans() *KMeans {
	return &KMeans{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance}
}

type FitResult struct {
	Centroids []Feature
	// Iterations is the number of assignment rounds executed.
	Iterations int
	Converged  bool
}

// Fit clusters features into k groups. Empty clusters keep their previous
// centroid. Iteration stops once no centroid moves more than Tolerance.
func (km *KMeans) Fit(features []Feature, k int) (FitResult, error) {
	if len(features) == 0 {
		return FitResult{}, errors.NewInsufficientDataError(1, 0, "k-means needs at least one feature")
	}

	if k < 1 {
		return FitResult{}, errors.Newf(errors.ErrCodeInvalidParameter, "k must be positive, got %d", k)
	}

	centroids := InitialCentroids(features, k)
	result := FitResult{Centroids: centroids}

	for result.Iterations < km.MaxIterations {
		result.Iterations++

		sums := make([]Feature, k)
		counts := make([]int, k)

		for _, f := range features {
			c := Nearest(f, centroids)
			sums[c].Volatility += f.Volatility
			sums[c].Direction += f.Direction
			sums[c].VolumeNorm += f.VolumeNorm
			counts[c]++
		}

		converged := true

		for i := range centroids {
			if counts[i] == 0 {
				continue
			}

			n := float64(counts[i])
			next := Feature{
				Volatility: sums[i].Volatility / n,
				Direction:  sums[i].Direction / n,
				VolumeNorm: sums[i].VolumeNorm / n,
			}

			if next.Distance(centroids[i]) > km.Tolerance {
				converged = false
			}

			centroids[i] = next
		}

		if converged {
			result.Converged = true

			break
		}
	}

	return result, nil
}

// InitialCentroids seeds centroid j of k with the (2j+1)/(2k) quantile of
// each dimension, i.e. the 25th and 75th percentiles when k is 2.
func InitialCentroids(features []Feature, k int) []Feature {
	n := len(features)
	centroids := make([]Feature, k)

	for d := range featureDims {
		values := make([]float64, n)
		for i, f := range features {
			values[i] = f.dim(d)
		}

		sort.Float64s(values)

		for j := range k {
			idx := (2*j + 1) * n / (2 * k)
			if idx >= n {
				idx = n - 1
			}

			centroids[j].setDim(d, values[idx])
		}
	}

	return centroids
}

// Nearest returns the index of the closest centroid. Ties go to the lowest index.
func Nearest(f Feature, centroids []Feature) int {
	best := 0
	bestDist := math.MaxFloat64

	for i, c := range centroids {
		if d := f.Distance(c); d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best
}
