package testutil

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("test error"))
}

func TestAssertErrorIs(t *testing.T) {
	t.Parallel()
	base := errors.New("base")
	AssertErrorIs(t, errors.Join(errors.New("other"), base), base)
}

func TestAssertMatrixApprox(t *testing.T) {
	t.Parallel()
	a := mat.NewDense(1, 2, []float64{1, 2})
	b := mat.NewDense(1, 2, []float64{1, 2 + 1e-12})
	AssertMatrixApprox(t, a, b, 1e-9)
}

func TestPointsLayout(t *testing.T) {
	t.Parallel()
	m := Points([]float64{0, 1}, []float64{2, 3}, []float64{4, 5})

	r, c := m.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", r, c)
	}
	if m.At(0, 2) != 4 || m.At(1, 1) != 3 {
		t.Errorf("unexpected layout: %v", mat.Formatted(m))
	}
	if Points() != nil {
		t.Error("Points() with no input should be nil")
	}
}

func TestStateOf(t *testing.T) {
	t.Parallel()
	a := Points([]float64{1, 2})
	b := Points([]float64{3, 4})
	s := StateOf(t, a, b)

	if s.Steps() != 2 {
		t.Fatalf("Steps() = %d, want 2", s.Steps())
	}
	if s.At(1, 0, 1) != 4 {
		t.Errorf("At(1,0,1) = %f, want 4", s.At(1, 0, 1))
	}
}
