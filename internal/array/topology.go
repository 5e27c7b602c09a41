package array

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when an index falls outside an array's extents.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDataLength is returned when backing data does not match the requested extents.
	ErrDataLength = errors.New("data length does not match extents")
)

// Topology is a dense rows×cols array of integer indices stored row-major.
// Each column is one simplex or edge; each row is one vertex slot.
// The zero value is an empty 0×0 topology.
type Topology struct {
	rows, cols int
	data       []int
}

// NewTopology allocates a zero-filled rows×cols topology.
// Negative extents are clamped to zero.
func NewTopology(rows, cols int) Topology {
	rows, cols = max(rows, 0), max(cols, 0)
	return Topology{rows: rows, cols: cols, data: make([]int, rows*cols)}
}

// TopologyFrom builds a topology over a copy of data, which must hold
// rows*cols entries in row-major order.
func TopologyFrom(rows, cols int, data []int) (Topology, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Topology{}, fmt.Errorf("topology %dx%d with %d entries: %w", rows, cols, len(data), ErrDataLength)
	}
	cp := make([]int, len(data))
	copy(cp, data)
	return Topology{rows: rows, cols: cols, data: cp}, nil
}

// Dims returns the row and column extents.
func (t Topology) Dims() (rows, cols int) { return t.rows, t.cols }

// Length returns the number of rows (vertices per simplex).
func (t Topology) Length() int { return t.rows }

// Width returns the number of columns (simplex count).
func (t Topology) Width() int { return t.cols }

// At returns the index stored at (i, j). It panics when out of range,
// matching gonum's mat.Dense.At.
func (t Topology) At(i, j int) int {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic(fmt.Sprintf("array: topology index (%d,%d) outside %dx%d", i, j, t.rows, t.cols))
	}
	return t.data[i*t.cols+j]
}

// Set stores v at (i, j).
func (t Topology) Set(i, j, v int) error {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		return fmt.Errorf("topology set (%d,%d) in %dx%d: %w", i, j, t.rows, t.cols, ErrIndexOutOfRange)
	}
	t.data[i*t.cols+j] = v
	return nil
}

// Clone returns a deep copy that shares no storage with t.
func (t Topology) Clone() Topology {
	cp := make([]int, len(t.data))
	copy(cp, t.data)
	return Topology{rows: t.rows, cols: t.cols, data: cp}
}

// Equal reports whether both topologies have the same extents and entries.
func (t Topology) Equal(o Topology) bool {
	if t.rows != o.rows || t.cols != o.cols {
		return false
	}
	for i := range t.data {
		if t.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
