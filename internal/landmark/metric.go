package landmark

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MetricKind tags the family of matching metric a target was built with.
type MetricKind int

const (
	// KindPoint compares template and target point by point.
	KindPoint MetricKind = iota
	// KindConnectivity weights the comparison by the target's topology and
	// bandwidth. Reserved: which point set each topology indexes is not yet
	// settled, so New rejects it.
	KindConnectivity
)

func (k MetricKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Metric computes a data-attachment cost between a template slice x and
// target points y, both dim×n, and its gradient with respect to x.
// Implementations may assume the shapes agree; Target checks them first.
type Metric interface {
	Kind() MetricKind
	Cost(x, y mat.Matrix) float64
	Grad(x, y mat.Matrix) *mat.Dense
}

// PointMetric is the sum of squared distances between corresponding
// columns: sum_ij (x_ij - y_ij)^2, with gradient 2(x - y).
type PointMetric struct{}

// Kind implements Metric.
func (PointMetric) Kind() MetricKind { return KindPoint }

// Cost implements Metric.
func (PointMetric) Cost(x, y mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(x, y)
	raw := diff.RawMatrix()
	var sum float64
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		sum += floats.Dot(row, row)
	}
	return sum
}

// Grad implements Metric.
func (PointMetric) Grad(x, y mat.Matrix) *mat.Dense {
	var g mat.Dense
	g.Sub(x, y)
	g.Scale(2, &g)
	return &g
}

func metricFor(kind MetricKind) (Metric, error) {
	switch kind {
	case KindPoint:
		return PointMetric{}, nil
	default:
		return nil, ErrUnsupportedMetric
	}
}
