// Package grid provides the spatial acceleration structure attached to
// registration targets.
//
// A Grid indexes point coordinates for radius queries. The first two axes
// go into an R-tree; any further axes are checked exactly when a query
// walks the candidates, so the same structure serves 1D, 2D and 3D point
// sets.
//
// A Grid is reference counted. Targets that are copied share one Grid and
// each copy holds its own reference; the index is dropped when the last
// reference is released. All methods are safe for concurrent use.
package grid

import (
	"math"
	"sort"
	"sync"

	"github.com/tidwall/rtree"
	"gonum.org/v1/gonum/mat"
)

// Grid is a reference-counted spatial index over point coordinates.
type Grid struct {
	mu     sync.RWMutex
	refs   int
	tree   *rtree.RTreeG[int]
	coords map[int][]float64
}

// New returns an empty grid holding one reference.
func New() *Grid {
	return &Grid{
		refs:   1,
		tree:   &rtree.RTreeG[int]{},
		coords: make(map[int][]float64),
	}
}

// Retain adds a reference and returns g for chaining.
func (g *Grid) Retain() *Grid {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refs > 0 {
		g.refs++
	}
	return g
}

// Release drops one reference. When the count reaches zero the index is
// discarded and later calls become no-ops. It reports whether this call
// released the last reference.
func (g *Grid) Release() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refs == 0 {
		return false
	}
	g.refs--
	if g.refs > 0 {
		return false
	}
	g.tree = nil
	g.coords = nil
	return true
}

// Refs returns the current reference count.
func (g *Grid) Refs() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.refs
}

// Len returns the number of indexed points.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.coords)
}

func planar(coord []float64) [2]float64 {
	var p [2]float64
	copy(p[:], coord)
	return p
}

// Insert indexes coord under id. Re-inserting an id replaces its coordinate.
// Inserting into a released grid does nothing.
func (g *Grid) Insert(id int, coord []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tree == nil {
		return
	}
	if old, ok := g.coords[id]; ok {
		p := planar(old)
		g.tree.Delete(p, p, id)
	}
	cp := make([]float64, len(coord))
	copy(cp, coord)
	g.coords[id] = cp
	p := planar(cp)
	g.tree.Insert(p, p, id)
}

// Build indexes every column of points, using the column number as id.
func (g *Grid) Build(points mat.Matrix) {
	if points == nil {
		return
	}
	dim, n := points.Dims()
	coord := make([]float64, dim)
	for j := 0; j < n; j++ {
		for i := 0; i < dim; i++ {
			coord[i] = points.At(i, j)
		}
		g.Insert(j, coord)
	}
}

// Within returns the ids of all indexed points whose Euclidean distance to
// center is at most radius, in ascending order.
func (g *Grid) Within(center []float64, radius float64) []int {
	if radius < 0 || math.IsNaN(radius) {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.tree == nil {
		return nil
	}

	c := planar(center)
	lo := [2]float64{c[0] - radius, c[1] - radius}
	hi := [2]float64{c[0] + radius, c[1] + radius}
	r2 := radius * radius

	var ids []int
	g.tree.Search(lo, hi, func(_, _ [2]float64, id int) bool {
		if sqDist(g.coords[id], center) <= r2 {
			ids = append(ids, id)
		}
		return true
	})
	sort.Ints(ids)
	return ids
}

// sqDist treats missing trailing axes as zero so points of different
// dimension still compare.
func sqDist(a, b []float64) float64 {
	n := max(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		d := x - y
		sum += d * d
	}
	return sum
}
