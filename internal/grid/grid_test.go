package grid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGridWithin2D(t *testing.T) {
	g := New()
	g.Insert(0, []float64{0, 0})
	g.Insert(1, []float64{1, 0})
	g.Insert(2, []float64{3, 4})

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []int{0, 1}, g.Within([]float64{0, 0}, 1))
	assert.Equal(t, []int{0, 1, 2}, g.Within([]float64{0, 0}, 5))
	assert.Empty(t, g.Within([]float64{10, 10}, 1))
	assert.Nil(t, g.Within([]float64{0, 0}, -1))
}

func TestGridWithin3DFiltersThirdAxis(t *testing.T) {
	g := New()
	g.Insert(0, []float64{0, 0, 0})
	g.Insert(1, []float64{0, 0, 10})

	// Both share the planar position; only the exact check separates them.
	assert.Equal(t, []int{0}, g.Within([]float64{0, 0, 0}, 1))
	assert.Equal(t, []int{1}, g.Within([]float64{0, 0, 10}, 1))
}

func TestGridInsertReplaces(t *testing.T) {
	g := New()
	g.Insert(7, []float64{0, 0})
	g.Insert(7, []float64{5, 5})

	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Within([]float64{0, 0}, 1))
	assert.Equal(t, []int{7}, g.Within([]float64{5, 5}, 0.1))
}

func TestGridBuildFromColumns(t *testing.T) {
	// Columns are points: (0,0), (1,1), (2,2).
	pts := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		0, 1, 2,
	})
	g := New()
	g.Build(pts)

	require.Equal(t, 3, g.Len())
	assert.Equal(t, []int{1, 2}, g.Within([]float64{1.5, 1.5}, 1))
}

func TestGridReferenceCounting(t *testing.T) {
	g := New()
	g.Insert(0, []float64{1, 1})
	assert.Equal(t, 1, g.Refs())

	g.Retain()
	assert.Equal(t, 2, g.Refs())

	assert.False(t, g.Release())
	assert.Equal(t, 1, g.Len(), "index survives while references remain")

	assert.True(t, g.Release())
	assert.Equal(t, 0, g.Refs())
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, g.Within([]float64{1, 1}, 1))

	// Released grids ignore further use.
	assert.False(t, g.Release())
	g.Retain()
	assert.Equal(t, 0, g.Refs())
	g.Insert(1, []float64{0, 0})
	assert.Equal(t, 0, g.Len())
}

func TestGridConcurrentAccess(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				g.Insert(w*100+i, []float64{float64(w), float64(i)})
				_ = g.Within([]float64{float64(w), float64(i)}, 1)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 400, g.Len())
}
