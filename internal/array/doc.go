// Package array holds the dense containers shared by targets and their
// consumers.
//
// Real-valued 2D data (target points, gradients) is carried as gonum
// *mat.Dense with rows indexing the spatial axis and columns indexing
// points. This package adds the two shapes gonum does not provide: an
// integer index array for connectivity (Topology) and a 3D array of
// template positions over time (State).
//
// Axis naming follows the registration code that consumes these arrays:
// Length is the outer (spatial) extent and Width is the point-count extent.
package array
