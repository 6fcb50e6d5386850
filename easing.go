package keyline

import (
	"math"

	"github.com/tanema/gween/ease"
	"seehuhn.de/go/geom/vec"
)

// Easing maps the linear time fraction between two keyframes to an
// interpolation progress. The zero value is linear.
//
// Three forms are supported, checked in this order:
//
//   - Hold: step interpolation. Progress stays 0 until the next
//     keyframe's time, then snaps to 1.
//   - Fn: a preset easing function ([ease.TweenFunc]).
//   - Out/In: cubic bezier handles in (time-fraction, value-fraction)
//     space, the usual authoring-tool representation. Out shapes the
//     curve leaving the first keyframe, In the curve entering the
//     second. A nil handle defaults to the linear position.
type Easing struct {
	Out  *vec.Vec2
	In   *vec.Vec2
	Hold bool
	Fn   ease.TweenFunc
}

// Handle is a convenience constructor for an easing control handle.
func Handle(x, y float64) *vec.Vec2 { return &vec.Vec2{X: x, Y: y} }

// HoldEasing is the step-interpolation descriptor.
var HoldEasing = Easing{Hold: true}

// Iteration budgets for the bezier parameter solve. The curve x(s) is
// not invertible in closed form; Newton usually lands in 3-4 steps, and
// bisection bounds the worst case. Non-convergence degrades to linear
// progress rather than failing the evaluation.
const (
	easeNewtonIters = 8
	easeBisectIters = 24
	easeSolveEps    = 1e-7
)

// Progress converts a linear time fraction u in [0, 1] into eased
// progress. Pure and allocation-free.
func (e Easing) Progress(u float64) float64 {
	if e.Hold {
		if u < 1 {
			return 0
		}
		return 1
	}
	if e.Fn != nil {
		return float64(e.Fn(float32(u), 0, 1, 1))
	}
	if e.Out == nil && e.In == nil {
		return u
	}
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}

	ox, oy := 1.0/3, 1.0/3
	if e.Out != nil {
		ox, oy = e.Out.X, e.Out.Y
	}
	ix, iy := 2.0/3, 2.0/3
	if e.In != nil {
		ix, iy = e.In.X, e.In.Y
	}

	s, ok := solveEaseParam(ox, ix, u)
	if !ok {
		return u
	}
	return easeBezier(oy, iy, s)
}

// easeBezier evaluates a cubic bezier with endpoints 0 and 1 and inner
// controls c1, c2 at parameter s.
func easeBezier(c1, c2, s float64) float64 {
	m := 1 - s
	return 3*m*m*s*c1 + 3*m*s*s*c2 + s*s*s
}

func easeBezierDeriv(c1, c2, s float64) float64 {
	m := 1 - s
	return 3*m*m*c1 + 6*m*s*(c2-c1) + 3*s*s*(1-c2)
}

// solveEaseParam finds s such that the time-axis bezier through (c1, c2)
// equals x. Newton first, bisection fallback, both bounded.
func solveEaseParam(c1, c2, x float64) (float64, bool) {
	s := x
	for i := 0; i < easeNewtonIters; i++ {
		d := easeBezierDeriv(c1, c2, s)
		if math.Abs(d) < 1e-12 {
			break
		}
		next := s - (easeBezier(c1, c2, s)-x)/d
		if next < 0 {
			next = 0
		} else if next > 1 {
			next = 1
		}
		s = next
		if math.Abs(easeBezier(c1, c2, s)-x) <= easeSolveEps {
			return s, true
		}
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < easeBisectIters; i++ {
		s = (lo + hi) / 2
		v := easeBezier(c1, c2, s)
		if math.Abs(v-x) <= easeSolveEps {
			return s, true
		}
		if v < x {
			lo = s
		} else {
			hi = s
		}
	}
	// Accept a looser answer before giving up; a visually exact easing
	// beats a hard fallback to linear.
	return s, math.Abs(easeBezier(c1, c2, s)-x) <= 1e-4
}
