package distance

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricSquaredEuclidean
	MetricManhattan
	MetricCosine
	MetricMeanSquared
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredEuclidean:
		return "SquaredEuclidean"
	case MetricManhattan:
		return "Manhattan"
	case MetricCosine:
		return "Cosine"
	case MetricMeanSquared:
		return "MeanSquared"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric returns the metric named s, ignoring case.
func ParseMetric(s string) (Metric, error) {
	for m := MetricEuclidean; m <= MetricMeanSquared; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Func is a function type for distance calculation.
type Func[T dtype.Float] func(e *engine.Engine, a, b segment.Segment[T]) (T, error)

// Provider returns the distance function for the given metric.
func Provider[T dtype.Float](m Metric) (Func[T], error) {
	switch m {
	case MetricEuclidean:
		return Euclidean[T], nil
	case MetricSquaredEuclidean:
		return SquaredEuclidean[T], nil
	case MetricManhattan:
		return Manhattan[T], nil
	case MetricCosine:
		return Cosine[T], nil
	case MetricMeanSquared:
		return MeanSquared[T], nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
