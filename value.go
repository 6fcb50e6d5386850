package keyline

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"seehuhn.de/go/geom/vec"
)

// Color is an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// lerpColor blends component-wise in the stored RGB representation (no
// color-space conversion); alpha interpolates linearly alongside.
func lerpColor(a, b Color, p float64) Color {
	rgb := colorful.Color{R: a.R, G: a.G, B: a.B}.
		BlendRgb(colorful.Color{R: b.R, G: b.G, B: b.B}, p)
	return Color{R: rgb.R, G: rgb.G, B: rgb.B, A: a.A + (b.A-a.A)*p}
}

func lerpFloat(a, b, p float64) float64 { return a + (b-a)*p }

func lerpVec2(a, b vec.Vec2, p float64) vec.Vec2 {
	return a.Add(b.Sub(a).Mul(p))
}

// GradientStop is one color stop of a gradient ramp.
type GradientStop struct {
	Offset float64
	Color  Color
}

// lerpStops interpolates two gradient ramps pairwise. Animated ramps
// must keep a constant stop count (Validate enforces this); if counts
// disagree at runtime the nearer ramp is held.
func lerpStops(a, b []GradientStop, p float64) []GradientStop {
	if len(a) != len(b) {
		if p < 0.5 {
			return a
		}
		return b
	}
	out := make([]GradientStop, len(a))
	for i := range a {
		out[i] = GradientStop{
			Offset: lerpFloat(a[i].Offset, b[i].Offset, p),
			Color:  lerpColor(a[i].Color, b[i].Color, p),
		}
	}
	return out
}

// Keyframe anchors a Track at a point in time. Frame times within one
// track must be strictly increasing.
//
// TanIn and TanOut are spatial bezier tangents, relative to Value, and
// are only consulted by position sampling (see [PositionValue]): they
// shape the path traveled between two 2D keyframes, independently of
// the temporal Easing.
type Keyframe[T any] struct {
	Frame  float64
	Value  T
	Easing Easing

	TanIn  vec.Vec2
	TanOut vec.Vec2
}

// lerpFunc blends two values component-wise at progress p in [0, 1].
type lerpFunc[T any] func(a, b T, p float64) T

// Track is a keyframed timeline for one property. Construct tracks
// with the New*Track functions, which attach the interpolation for the
// value type; a track built without one degrades to step
// interpolation.
//
// Sampling is a pure function of (track, frame): tracks hold no
// mutable state, so a single track may be sampled from multiple
// goroutines concurrently.
type Track[T any] struct {
	Keys []Keyframe[T]
	lerp lerpFunc[T]
}

// Typed track constructors. Each pairs the keyframe list with the
// component-wise interpolation for its value type.

func NewFloatTrack(keys ...Keyframe[float64]) *Track[float64] {
	return &Track[float64]{Keys: keys, lerp: lerpFloat}
}

func NewVec2Track(keys ...Keyframe[vec.Vec2]) *Track[vec.Vec2] {
	return &Track[vec.Vec2]{Keys: keys, lerp: lerpVec2}
}

func NewColorTrack(keys ...Keyframe[Color]) *Track[Color] {
	return &Track[Color]{Keys: keys, lerp: lerpColor}
}

func NewStopsTrack(keys ...Keyframe[[]GradientStop]) *Track[[]GradientStop] {
	return &Track[[]GradientStop]{Keys: keys, lerp: lerpStops}
}

// bracket locates the keyframe segment containing frame. When interior
// is true, keys[i] and keys[i+1] bracket the frame and u is the linear
// time fraction within the pair. Otherwise the frame clamps to keys[i].
func bracket[T any](keys []Keyframe[T], frame float64) (i int, u float64, interior bool) {
	last := len(keys) - 1
	if frame <= keys[0].Frame {
		return 0, 0, false
	}
	if frame >= keys[last].Frame {
		return last, 0, false
	}
	// First key with Frame > frame; the segment starts one before it.
	i = sort.Search(len(keys), func(k int) bool { return keys[k].Frame > frame })
	i--
	u = (frame - keys[i].Frame) / (keys[i+1].Frame - keys[i].Frame)
	return i, u, true
}

// Sample resolves the track at the given frame. Frames before the first
// keyframe clamp to the first value, frames after the last clamp to the
// last. A track with zero keyframes yields the zero value; with one, a
// constant.
func (tr *Track[T]) Sample(frame float64) T {
	var zero T
	if tr == nil || len(tr.Keys) == 0 {
		return zero
	}
	i, u, interior := bracket(tr.Keys, frame)
	if !interior {
		return tr.Keys[i].Value
	}
	if tr.lerp == nil {
		return tr.Keys[i].Value
	}
	p := tr.Keys[i].Easing.Progress(u)
	return tr.lerp(tr.Keys[i].Value, tr.Keys[i+1].Value, p)
}

// Validate checks that keyframe times are strictly increasing.
func (tr *Track[T]) Validate() error {
	if tr == nil {
		return nil
	}
	for i := 1; i < len(tr.Keys); i++ {
		if tr.Keys[i].Frame <= tr.Keys[i-1].Frame {
			return fmt.Errorf("keyframe %d (frame %g after %g): %w",
				i, tr.Keys[i].Frame, tr.Keys[i-1].Frame, ErrKeyframeOrder)
		}
	}
	return nil
}

// Value is a property that is either fixed or animated by a Track.
// The zero value is the fixed zero of T.
type Value[T any] struct {
	Fixed T
	Anim  *Track[T]
}

// Fixed wraps a constant property value.
func Fixed[T any](v T) Value[T] { return Value[T]{Fixed: v} }

// Animate wraps a keyframed track as a property value.
func Animate[T any](tr *Track[T]) Value[T] { return Value[T]{Anim: tr} }

// IsFixed reports whether the value carries no track.
func (v Value[T]) IsFixed() bool { return v.Anim == nil }

// Evaluate resolves the property at the given frame.
func (v Value[T]) Evaluate(frame float64) T {
	if v.Anim != nil {
		return v.Anim.Sample(frame)
	}
	return v.Fixed
}

func (v Value[T]) validate() error {
	if v.Anim == nil {
		return nil
	}
	return v.Anim.Validate()
}

// PositionTrack is a 2D point track whose segments may carry spatial
// bezier tangents. Temporal easing decides *when* along a segment the
// point is; the spatial tangents decide *where* the path between the
// two keyframe positions bends.
type PositionTrack struct {
	Track[vec.Vec2]
}

func NewPositionTrack(keys ...Keyframe[vec.Vec2]) *PositionTrack {
	return &PositionTrack{Track[vec.Vec2]{Keys: keys, lerp: lerpVec2}}
}

// Sample resolves the position at the given frame, following the
// spatial bezier between keyframes that carry tangents. Segments
// without tangents interpolate along a straight line.
func (tr *PositionTrack) Sample(frame float64) vec.Vec2 {
	if tr == nil || len(tr.Keys) == 0 {
		return vec.Vec2{}
	}
	i, u, interior := bracket(tr.Keys, frame)
	if !interior {
		return tr.Keys[i].Value
	}
	k0, k1 := tr.Keys[i], tr.Keys[i+1]
	p := k0.Easing.Progress(u)
	if k0.TanOut == (vec.Vec2{}) && k1.TanIn == (vec.Vec2{}) {
		return lerpVec2(k0.Value, k1.Value, p)
	}
	return cubicPoint(k0.Value, k0.Value.Add(k0.TanOut), k1.Value.Add(k1.TanIn), k1.Value, p)
}

// cubicPoint evaluates a cubic bezier at parameter s.
func cubicPoint(p0, p1, p2, p3 vec.Vec2, s float64) vec.Vec2 {
	m := 1 - s
	a := p0.Mul(m * m * m)
	b := p1.Mul(3 * m * m * s)
	c := p2.Mul(3 * m * s * s)
	d := p3.Mul(s * s * s)
	return a.Add(b).Add(c).Add(d)
}

// PositionValue is a 2D position property, fixed or animated with
// optional spatial interpolation.
type PositionValue struct {
	Fixed vec.Vec2
	Anim  *PositionTrack
}

// FixedPosition wraps a constant position.
func FixedPosition(v vec.Vec2) PositionValue { return PositionValue{Fixed: v} }

// AnimatePosition wraps a position track as a property value.
func AnimatePosition(tr *PositionTrack) PositionValue { return PositionValue{Anim: tr} }

// Evaluate resolves the position at the given frame.
func (v PositionValue) Evaluate(frame float64) vec.Vec2 {
	if v.Anim != nil {
		return v.Anim.Sample(frame)
	}
	return v.Fixed
}

func (v PositionValue) validate() error {
	if v.Anim == nil {
		return nil
	}
	return v.Anim.Validate()
}
