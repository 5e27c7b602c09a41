// Package objective combines the matching terms of many landmark targets
// into one weighted cost and gradient for a template state.
//
// It is the consumer side of the landmark contract: each target is
// evaluated at its own time index, scaled by its weight, and the gradients
// are accumulated into the matching time slice. The optimisation loop that
// drives repeated evaluations lives with the caller.
package objective

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/shapereg/internal/array"
	"github.com/banshee-data/shapereg/internal/config"
	"github.com/banshee-data/shapereg/internal/landmark"
	"github.com/banshee-data/shapereg/internal/timeutil"
)

var (
	// ErrDuplicateTarget is returned when a target ID is already in the set.
	ErrDuplicateTarget = errors.New("target already in set")
	// ErrNilState is returned when Evaluate is called without a state.
	ErrNilState = errors.New("state is nil")
)

// Options controls evaluation.
type Options struct {
	MaxConcurrency int           // targets evaluated at once; <= 0 means GOMAXPROCS
	Timeout        time.Duration // per-evaluation deadline; 0 disables
	Clock          timeutil.Clock
}

// DefaultOptions returns Options with no timeout and the real clock.
func DefaultOptions() Options {
	return Options{Clock: timeutil.RealClock{}}
}

// OptionsFromTuning builds Options from a loaded MatchingConfig.
func OptionsFromTuning(cfg *config.MatchingConfig) Options {
	opts := DefaultOptions()
	opts.MaxConcurrency = cfg.GetMaxConcurrency()
	opts.Timeout = cfg.GetEvaluationTimeout()
	return opts
}

// Result is the outcome of one evaluation.
type Result struct {
	Cost      float64               // sum of weight * matching cost
	Gradient  *array.State          // same extents as the evaluated state
	PerTarget map[uuid.UUID]float64 // unweighted matching cost per evaluated target
	Skipped   []uuid.UUID           // targets without a time index
	Elapsed   time.Duration
}

// Set is an ordered collection of targets keyed by ID. It is safe for
// concurrent use; Evaluate works on a snapshot of the membership.
type Set struct {
	mu      sync.RWMutex
	opts    Options
	targets map[uuid.UUID]*landmark.Target
	order   []uuid.UUID
}

// NewSet creates an empty set.
func NewSet(opts Options) *Set {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	return &Set{
		opts:    opts,
		targets: make(map[uuid.UUID]*landmark.Target),
	}
}

// Add inserts t. Empty targets and repeated IDs are rejected. The set does
// not take ownership; callers still Close their targets.
func (s *Set) Add(t *landmark.Target) error {
	if t == nil || t.IsEmpty() {
		return fmt.Errorf("add target: %w", landmark.ErrEmptyTarget)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := t.ID()
	if _, ok := s.targets[id]; ok {
		return fmt.Errorf("add target %s: %w", id, ErrDuplicateTarget)
	}
	s.targets[id] = t
	s.order = append(s.order, id)
	return nil
}

// Remove deletes the target with id and reports whether it was present.
func (s *Set) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[id]; !ok {
		return false
	}
	delete(s.targets, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of targets.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Targets returns the targets in insertion order.
func (s *Set) Targets() []*landmark.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*landmark.Target, len(s.order))
	for i, id := range s.order {
		out[i] = s.targets[id]
	}
	return out
}

type termResult struct {
	cost float64
	grad *mat.Dense
}

// Evaluate computes the weighted matching cost of every target against
// state and the gradient with respect to state. Each target contributes at
// its own time index; targets without one are skipped. The first failing
// target aborts the evaluation.
func (s *Set) Evaluate(ctx context.Context, state *array.State) (*Result, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.opts.Clock.Now()
	targets := s.Targets()
	terms := make([]*termResult, len(targets))
	res := &Result{PerTarget: make(map[uuid.UUID]float64, len(targets))}

	limit := s.opts.MaxConcurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, tgt := range targets {
		i, tgt := i, tgt
		slot := tgt.TimeIndex()
		if slot == landmark.UnsetTimeIndex {
			landmark.Opsf("objective: skipping target id=%s without time index", tgt.ID())
			res.Skipped = append(res.Skipped, tgt.ID())
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cost, err := tgt.Matching(state, slot)
			if err != nil {
				return fmt.Errorf("evaluate target %s: %w", tgt.ID(), err)
			}
			grad, err := tgt.GradMatching(state, slot)
			if err != nil {
				return fmt.Errorf("evaluate target %s: %w", tgt.ID(), err)
			}
			terms[i] = &termResult{cost: cost, grad: grad}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		landmark.Opsf("objective: evaluation failed: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Accumulate in insertion order so results do not depend on scheduling.
	dim, n, steps := state.Dims()
	res.Gradient = array.NewState(dim, n, steps)
	for i, term := range terms {
		if term == nil {
			continue
		}
		tgt := targets[i]
		w := tgt.Weight()
		res.Cost += w * term.cost
		res.PerTarget[tgt.ID()] = term.cost

		view, err := res.Gradient.View(tgt.TimeIndex())
		if err != nil {
			return nil, fmt.Errorf("accumulate target %s: %w", tgt.ID(), err)
		}
		var scaled mat.Dense
		scaled.Scale(w, term.grad)
		view.Add(view, &scaled)
	}

	res.Elapsed = s.opts.Clock.Since(start)
	landmark.Tracef("objective: evaluated %d targets (%d skipped) cost=%.6g in %s",
		len(res.PerTarget), len(res.Skipped), res.Cost, res.Elapsed)
	return res, nil
}
