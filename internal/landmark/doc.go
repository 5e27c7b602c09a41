// Package landmark owns the landmark target used as a data-attachment term
// in deformable-shape registration.
//
// A Target is one observation: a fixed point set the deforming template
// must reach at a given time index, with optional connectivity, a
// smoothing bandwidth and an importance weight. It reports the matching
// cost between a template state and its points, and the gradient of that
// cost with respect to the template positions.
//
// Responsibilities: target lifecycle (construction, copy, assignment),
// matching cost, matching gradient, shape validation.
// Key types: Target, Config, Metric, ShapeError.
//
// Weighting across targets and the optimisation loop belong to callers;
// see internal/objective for the weighted combination.
package landmark
