package landmark

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/shapereg/internal/array"
	"github.com/banshee-data/shapereg/internal/config"
	"github.com/banshee-data/shapereg/internal/grid"
)

// UnsetTimeIndex marks a target that has not been placed on the time
// discretisation.
const UnsetTimeIndex = -1

// Config carries the scalar parameters of a target.
type Config struct {
	Bandwidth    float64    // kernel width for connectivity metrics; >= 0
	TimeValue    float64    // physical time of the observation
	TimeIndex    int        // index into the caller's time discretisation, or UnsetTimeIndex
	Weight       float64    // relative importance across targets; >= 0
	Metric       MetricKind // matching metric family
	PopulateGrid bool       // index the target points in the grid at construction
}

// DefaultConfig returns a Config with weight 1, an unset time index and the
// point metric.
func DefaultConfig() Config {
	return Config{
		TimeIndex: UnsetTimeIndex,
		Weight:    1.0,
		Metric:    KindPoint,
	}
}

// ConfigFromTuning builds a Config from a loaded MatchingConfig. Time fields
// are per-target and stay at their defaults.
func ConfigFromTuning(cfg *config.MatchingConfig) Config {
	c := DefaultConfig()
	c.Weight = cfg.GetDefaultWeight()
	c.Bandwidth = cfg.GetDefaultBandwidth()
	c.PopulateGrid = cfg.GetPopulateGrid()
	return c
}

// Target is a landmark observation: dim×n fixed points matched against the
// template at TimeIndex.
//
// Points and topologies are immutable after construction; accessors return
// copies. Matching and GradMatching may run concurrently. Assign and Close
// mutate the target and must not overlap with other calls on it.
type Target struct {
	id        uuid.UUID
	points    *mat.Dense
	topologyA array.Topology
	topologyB array.Topology
	bandwidth float64
	timeValue float64
	timeIndex int
	weight    float64
	metric    Metric
	grid      *grid.Grid
}

// New builds a target from its points (dim×n, one column per point), two
// connectivity arrays and cfg. Inputs are copied. The target owns a fresh
// grid reference; call Close when done with it.
//
// Bandwidth and weight are not range checked here; use Validate.
func New(points *mat.Dense, topoA, topoB array.Topology, cfg Config) (*Target, error) {
	if points == nil || points.IsEmpty() {
		return nil, ErrNilPoints
	}
	metric, err := metricFor(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("new target with %s metric: %w", cfg.Metric, err)
	}

	t := &Target{
		id:        uuid.New(),
		points:    mat.DenseCopyOf(points),
		topologyA: topoA.Clone(),
		topologyB: topoB.Clone(),
		bandwidth: cfg.Bandwidth,
		timeValue: cfg.TimeValue,
		timeIndex: cfg.TimeIndex,
		weight:    cfg.Weight,
		metric:    metric,
		grid:      grid.New(),
	}
	if cfg.PopulateGrid {
		t.grid.Build(t.points)
	}

	dim, n := t.points.Dims()
	Diagf("created target id=%s metric=%s dim=%d points=%d topo_a=%d topo_b=%d time=%.4f index=%d weight=%.4f bandwidth=%.4f",
		t.id, metric.Kind(), dim, n, t.topologyA.Width(), t.topologyB.Width(), t.timeValue, t.timeIndex, t.weight, t.bandwidth)
	return t, nil
}

// Empty returns a placeholder target with no points, no grid, weight 0 and
// an unset time index. It exists to be overwritten with Assign; evaluating
// it returns ErrEmptyTarget.
func Empty() *Target {
	return &Target{timeIndex: UnsetTimeIndex}
}

// IsEmpty reports whether t is a placeholder without points.
func (t *Target) IsEmpty() bool { return t.points == nil }

// Copy returns a target with copies of every value field. The grid is
// shared with t and gains a reference.
func (t *Target) Copy() *Target {
	c := &Target{}
	c.copyFrom(t)
	return c
}

// Assign overwrites t with the contents of src, sharing src's grid.
// Assigning a target to itself does nothing. Assigning nil resets t to an
// empty placeholder.
func (t *Target) Assign(src *Target) {
	if t == src {
		return
	}
	old := t.grid
	if src == nil {
		*t = Target{timeIndex: UnsetTimeIndex}
	} else {
		t.copyFrom(src)
	}
	// Retained in copyFrom before the old reference goes, so assigning
	// between two holders of the same grid never drops it to zero.
	if old != nil {
		old.Release()
	}
}

func (t *Target) copyFrom(src *Target) {
	t.id = src.id
	t.points = nil
	if src.points != nil {
		t.points = mat.DenseCopyOf(src.points)
	}
	t.topologyA = src.topologyA.Clone()
	t.topologyB = src.topologyB.Clone()
	t.bandwidth = src.bandwidth
	t.timeValue = src.timeValue
	t.timeIndex = src.timeIndex
	t.weight = src.weight
	t.metric = src.metric
	t.grid = nil
	if src.grid != nil {
		t.grid = src.grid.Retain()
	}
}

// Close releases t's grid reference. It is safe to call more than once.
func (t *Target) Close() {
	if t.grid != nil {
		t.grid.Release()
		t.grid = nil
	}
}

// ID identifies the observation. Copies share the ID of their source.
func (t *Target) ID() uuid.UUID { return t.id }

// Points returns a copy of the target points, or nil for an empty target.
func (t *Target) Points() *mat.Dense {
	if t.points == nil {
		return nil
	}
	return mat.DenseCopyOf(t.points)
}

// Dim returns the spatial dimension of the points.
func (t *Target) Dim() int {
	if t.points == nil {
		return 0
	}
	r, _ := t.points.Dims()
	return r
}

// PointCount returns the number of target points.
func (t *Target) PointCount() int {
	if t.points == nil {
		return 0
	}
	_, c := t.points.Dims()
	return c
}

// TopologyA returns a copy of the first connectivity array.
func (t *Target) TopologyA() array.Topology { return t.topologyA.Clone() }

// TopologyB returns a copy of the second connectivity array.
func (t *Target) TopologyB() array.Topology { return t.topologyB.Clone() }

// TopologyACount returns the number of simplices in the first topology.
func (t *Target) TopologyACount() int { return t.topologyA.Width() }

// TopologyBCount returns the number of simplices in the second topology.
func (t *Target) TopologyBCount() int { return t.topologyB.Width() }

// Bandwidth returns the kernel width.
func (t *Target) Bandwidth() float64 { return t.bandwidth }

// TimeValue returns the physical time of the observation.
func (t *Target) TimeValue() float64 { return t.timeValue }

// TimeIndex returns the discretisation index, or UnsetTimeIndex.
func (t *Target) TimeIndex() int { return t.timeIndex }

// Weight returns the target's importance.
func (t *Target) Weight() float64 { return t.weight }

// Grid returns the shared spatial index, or nil for an empty or closed target.
func (t *Target) Grid() *grid.Grid { return t.grid }

// MetricKind returns the metric family the target evaluates with.
func (t *Target) MetricKind() MetricKind {
	if t.metric == nil {
		return KindPoint
	}
	return t.metric.Kind()
}

// slice checks state against the target and returns the selected time
// slice as a view into state.
func (t *Target) slice(op string, state *array.State, slot int) (*mat.Dense, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("landmark %s: %w", op, ErrEmptyTarget)
	}
	dim, n := t.points.Dims()
	shapeErr := &ShapeError{Op: op, WantDim: dim, WantPoints: n, Slot: slot}
	if state == nil {
		return nil, shapeErr
	}
	shapeErr.GotDim, shapeErr.GotPoints, shapeErr.Steps = state.Dims()
	if slot < 0 || slot >= shapeErr.Steps || shapeErr.GotDim != dim || shapeErr.GotPoints != n {
		return nil, shapeErr
	}
	return state.View(slot)
}

// Matching returns the unweighted data-attachment cost between time slot
// slot of state and the target points. State must be dim×n×steps with the
// target's dim and n.
func (t *Target) Matching(state *array.State, slot int) (float64, error) {
	x, err := t.slice("Matching", state, slot)
	if err != nil {
		return 0, err
	}
	return t.metric.Cost(x, t.points), nil
}

// GradMatching returns the gradient of Matching with respect to the
// template positions at slot, as a new dim×n matrix.
func (t *Target) GradMatching(state *array.State, slot int) (*mat.Dense, error) {
	x, err := t.slice("GradMatching", state, slot)
	if err != nil {
		return nil, err
	}
	return t.metric.Grad(x, t.points), nil
}

// WeightedMatching returns Weight() * Matching(state, slot).
func (t *Target) WeightedMatching(state *array.State, slot int) (float64, error) {
	cost, err := t.Matching(state, slot)
	if err != nil {
		return 0, err
	}
	return t.weight * cost, nil
}

// Validate reports scalar parameters out of range and non-finite points.
func (t *Target) Validate() error {
	if t.IsEmpty() {
		return fmt.Errorf("validate: %w", ErrEmptyTarget)
	}
	if math.IsNaN(t.bandwidth) || t.bandwidth < 0 {
		return fmt.Errorf("bandwidth %f must be non-negative: %w", t.bandwidth, ErrInvalidTarget)
	}
	if math.IsNaN(t.weight) || t.weight < 0 {
		return fmt.Errorf("weight %f must be non-negative: %w", t.weight, ErrInvalidTarget)
	}
	if t.timeIndex < UnsetTimeIndex {
		return fmt.Errorf("time index %d below %d: %w", t.timeIndex, UnsetTimeIndex, ErrInvalidTarget)
	}
	dim, n := t.points.Dims()
	for i := 0; i < dim; i++ {
		for j := 0; j < n; j++ {
			if v := t.points.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point (%d,%d) is %f: %w", i, j, v, ErrInvalidTarget)
			}
		}
	}
	return nil
}

// PopulateGrid indexes the target points in the shared grid. Every copy
// sharing the grid sees the result.
func (t *Target) PopulateGrid() error {
	if t.IsEmpty() {
		return fmt.Errorf("populate grid: %w", ErrEmptyTarget)
	}
	if t.grid == nil {
		return fmt.Errorf("populate grid: target is closed: %w", ErrEmptyTarget)
	}
	t.grid.Build(t.points)
	Diagf("populated grid for target id=%s: %d points", t.id, t.grid.Len())
	return nil
}

// Neighbours returns the indices of target points within radius of coord,
// using the grid. The grid must have been populated.
func (t *Target) Neighbours(coord []float64, radius float64) []int {
	if t.grid == nil {
		return nil
	}
	return t.grid.Within(coord, radius)
}
