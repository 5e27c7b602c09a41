// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/shapereg/internal/array"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertMatrixApprox fails the test unless got and want have the same
// shape and every entry agrees within tol.
func AssertMatrixApprox(t *testing.T, got, want mat.Matrix, tol float64) {
	t.Helper()
	if got == nil || want == nil {
		t.Fatalf("matrix = %v, want %v", got, want)
	}
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("matrix dims = %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	if !mat.EqualApprox(got, want, tol) {
		t.Errorf("matrix mismatch\n got: %v\nwant: %v", mat.Formatted(got), mat.Formatted(want))
	}
}

// Points builds a dim×n matrix from per-point coordinates, one slice per
// point, so fixtures read as point lists rather than axis rows.
func Points(pts ...[]float64) *mat.Dense {
	if len(pts) == 0 {
		return nil
	}
	dim := len(pts[0])
	m := mat.NewDense(dim, len(pts), nil)
	for j, p := range pts {
		for i := 0; i < dim; i++ {
			m.Set(i, j, p[i])
		}
	}
	return m
}

// StateOf builds a State whose time slices are the given dim×n matrices.
func StateOf(t *testing.T, slices ...*mat.Dense) *array.State {
	t.Helper()
	if len(slices) == 0 {
		t.Fatal("StateOf needs at least one slice")
	}
	dim, n := slices[0].Dims()
	s := array.NewState(dim, n, len(slices))
	for k, m := range slices {
		if err := s.SetSlice(k, m); err != nil {
			t.Fatalf("StateOf slice %d: %v", k, err)
		}
	}
	return s
}
