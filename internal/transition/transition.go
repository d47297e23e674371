// Package transition builds per-effect automation curves from a
// TransitionDef and the time window a queued transition occupies.
package transition

import (
	"sort"

	"github.com/sscholbe/autodj/internal/effects"
)

// Point is one control point of a TransitionDef curve: a normalised
// position in [0,1] over the transition window and the effect parameter
// value at that position.
type Point struct {
	TNorm float64
	Value float64
}

// Def maps effect id to its ordered control points. Point order within a
// slice need not be sorted by the caller; Curve builds sort them.
type Def map[string][]Point

// Curve is a per-effect function of seconds -> parameter value, obtained by
// scaling a Def's control points into an absolute time window and linearly
// interpolating, with an effect-specific clamp outside the window.
type Curve struct {
	x, y        []float64
	left, right float64
}

// Eval samples the curve at time t in source seconds.
func (c Curve) Eval(t float64) float64 {
	n := len(c.x)
	if n == 0 {
		return c.left
	}
	if t < c.x[0] {
		return c.left
	}
	if t > c.x[n-1] {
		return c.right
	}
	i := sort.SearchFloat64s(c.x, t)
	if c.x[i] == t {
		return c.y[i]
	}
	x0, x1 := c.x[i-1], c.x[i]
	y0, y1 := c.y[i-1], c.y[i]
	frac := (t - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}

// Set is the per-effect curve set for one deck's active transition, plus
// the chain order those effects must be applied in. Go maps have no stable
// iteration order, so the order is carried alongside the curves to satisfy
// the invariant that chain application order is stable across blocks.
type Set struct {
	Curves map[string]Curve
	Order  []string
}

// Empty reports whether the set carries no curves at all.
func (s Set) Empty() bool { return len(s.Order) == 0 }

// Build computes the per-effect curve set for a transition window
// [start,end] in source seconds. incoming selects the volume clamp
// direction: true fades the "vol" curve in from 0 to 1 outside the window
// reversed (0 before, 1 after — a true incoming fade), false fades it out
// (1 before, 0 after). The chain order follows the registry's own stable
// registration order restricted to the effects present in def.
func Build(registry *effects.Registry, def Def, start, end float64, incoming bool) Set {
	length := end - start
	curves := make(map[string]Curve, len(def))
	for fx, points := range def {
		sorted := make([]Point, len(points))
		copy(sorted, points)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].TNorm < sorted[j].TNorm })

		xs := make([]float64, len(sorted))
		ys := make([]float64, len(sorted))
		for i, p := range sorted {
			xs[i] = start + p.TNorm*length
			ys[i] = p.Value
		}

		left, right := clampBounds(registry, fx, incoming)
		curves[fx] = Curve{x: xs, y: ys, left: left, right: right}
	}
	var order []string
	for _, id := range registry.Order() {
		if _, ok := curves[id]; ok {
			order = append(order, id)
		}
	}
	return Set{Curves: curves, Order: order}
}

func clampBounds(registry *effects.Registry, fx string, incoming bool) (left, right float64) {
	if fx == "vol" {
		if incoming {
			return 0.0, 1.0
		}
		return 1.0, 0.0
	}
	def := float64(0)
	if e, ok := registry.Get(fx); ok {
		def = float64(e.DefaultValue())
	}
	return def, def
}
