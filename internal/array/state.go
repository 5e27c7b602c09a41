package array

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// State is a dense 3D array of template positions with axes
// (dimension, point, time step). Storage is time-major so each time slice
// is one contiguous dim×n row-major block.
type State struct {
	dim, n, steps int
	data          []float64
}

// NewState allocates a zero-filled dim×n×steps state.
func NewState(dim, n, steps int) *State {
	dim, n, steps = max(dim, 0), max(n, 0), max(steps, 0)
	return &State{dim: dim, n: n, steps: steps, data: make([]float64, dim*n*steps)}
}

// StateFrom builds a state over a copy of data laid out time-major:
// data[t*dim*n + i*n + j] is the value at (i, j, t).
func StateFrom(dim, n, steps int, data []float64) (*State, error) {
	if dim < 0 || n < 0 || steps < 0 || len(data) != dim*n*steps {
		return nil, fmt.Errorf("state %dx%dx%d with %d entries: %w", dim, n, steps, len(data), ErrDataLength)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return &State{dim: dim, n: n, steps: steps, data: cp}, nil
}

// Dims returns the three extents.
func (s *State) Dims() (dim, n, steps int) { return s.dim, s.n, s.steps }

// Length returns the spatial dimension.
func (s *State) Length() int { return s.dim }

// Width returns the point count.
func (s *State) Width() int { return s.n }

// Steps returns the number of time steps.
func (s *State) Steps() int { return s.steps }

func (s *State) offset(i, j, t int) int {
	return t*s.dim*s.n + i*s.n + j
}

func (s *State) inRange(i, j, t int) bool {
	return i >= 0 && i < s.dim && j >= 0 && j < s.n && t >= 0 && t < s.steps
}

// At returns the value at (i, j, t). It panics when out of range.
func (s *State) At(i, j, t int) float64 {
	if !s.inRange(i, j, t) {
		panic(fmt.Sprintf("array: state index (%d,%d,%d) outside %dx%dx%d", i, j, t, s.dim, s.n, s.steps))
	}
	return s.data[s.offset(i, j, t)]
}

// Set stores v at (i, j, t).
func (s *State) Set(i, j, t int, v float64) error {
	if !s.inRange(i, j, t) {
		return fmt.Errorf("state set (%d,%d,%d) in %dx%dx%d: %w", i, j, t, s.dim, s.n, s.steps, ErrIndexOutOfRange)
	}
	s.data[s.offset(i, j, t)] = v
	return nil
}

// Slice returns a copy of time step t as a dim×n matrix.
// A state with zero dimension or points yields a nil matrix, since gonum
// does not allow empty dense matrices.
func (s *State) Slice(t int) (*mat.Dense, error) {
	if t < 0 || t >= s.steps {
		return nil, fmt.Errorf("state slice %d of %d steps: %w", t, s.steps, ErrIndexOutOfRange)
	}
	if s.dim == 0 || s.n == 0 {
		return nil, nil
	}
	block := s.data[s.offset(0, 0, t) : s.offset(0, 0, t)+s.dim*s.n]
	cp := make([]float64, len(block))
	copy(cp, block)
	return mat.NewDense(s.dim, s.n, cp), nil
}

// View returns time step t as a dim×n matrix sharing storage with s.
// Writes through the view are visible in s.
func (s *State) View(t int) (*mat.Dense, error) {
	if t < 0 || t >= s.steps {
		return nil, fmt.Errorf("state view %d of %d steps: %w", t, s.steps, ErrIndexOutOfRange)
	}
	if s.dim == 0 || s.n == 0 {
		return nil, nil
	}
	off := s.offset(0, 0, t)
	return mat.NewDense(s.dim, s.n, s.data[off:off+s.dim*s.n]), nil
}

// SetSlice overwrites time step t with m, which must be dim×n.
func (s *State) SetSlice(t int, m mat.Matrix) error {
	if t < 0 || t >= s.steps {
		return fmt.Errorf("state set slice %d of %d steps: %w", t, s.steps, ErrIndexOutOfRange)
	}
	r, c := m.Dims()
	if r != s.dim || c != s.n {
		return fmt.Errorf("state set slice %dx%d into %dx%d: %w", r, c, s.dim, s.n, ErrDataLength)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s.data[s.offset(i, j, t)] = m.At(i, j)
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	cp := make([]float64, len(s.data))
	copy(cp, s.data)
	return &State{dim: s.dim, n: s.n, steps: s.steps, data: cp}
}
