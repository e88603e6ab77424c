// Package distance provides norms, distances, statistics and neural
// activation functions over pooled segments.
//
// Every function is expressed through the engine's primitives, so it picks
// up scalar, parallel or vectorised dispatch from the engine's thresholds.
// Intermediate segments are released before returning.
//
// # Supported Metrics
//
//   - MetricEuclidean: sqrt(sum((a-b)^2))
//   - MetricSquaredEuclidean: sum((a-b)^2)
//   - MetricManhattan: sum(|a-b|)
//   - MetricCosine: 1 - dot(a,b) / (|a| * |b|)
//   - MetricMeanSquared: sum((a-b)^2) / n
//
// # Usage
//
//	d, err := distance.Cosine(e, a, b)
//	fn, err := distance.Provider[float32](distance.MetricEuclidean)
//	probs, err := distance.Softmax(e, logits)
//
// Zero vectors are not special-cased: their cosine distance is NaN.
package distance
