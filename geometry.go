package keyline

import (
	"fmt"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// kappa scales a radius to the cubic bezier control distance that best
// approximates a quarter circle.
const kappa = 0.5522847498307936

// MorphPolicy decides what happens when two path keyframes cannot be
// interpolated because their vertex counts (or closed flags) differ.
type MorphPolicy uint8

const (
	// MorphHoldNearest keeps the nearer keyframe's shape instead of
	// morphing. The default.
	MorphHoldNearest MorphPolicy = iota
	// MorphError aborts the evaluation with a typed error.
	MorphError
)

// Geometry is the closed set of shape geometry variants. Resolve
// produces the outline at a sample frame; only path morphing can fail.
type Geometry interface {
	isGeometry()
	Resolve(frame float64, policy MorphPolicy) (*path.Data, error)
}

// FixedPath is static geometry, passed through untouched.
type FixedPath struct {
	Data *path.Data
}

func (FixedPath) isGeometry() {}

func (g FixedPath) Resolve(float64, MorphPolicy) (*path.Data, error) {
	return g.Data, nil
}

// RectShape is a rectangle with animated center, size, and corner
// radius.
type RectShape struct {
	Center Value[vec.Vec2]
	Size   Value[vec.Vec2]
	Radius Value[float64]
}

func (RectShape) isGeometry() {}

func (g RectShape) Resolve(frame float64, _ MorphPolicy) (*path.Data, error) {
	c := g.Center.Evaluate(frame)
	size := g.Size.Evaluate(frame)
	r := g.Radius.Evaluate(frame)
	w, h := size.X/2, size.Y/2
	if r > w {
		r = w
	}
	if r > h {
		r = h
	}
	if r <= 0 {
		return (&path.Data{}).
			MoveTo(vec.Vec2{X: c.X - w, Y: c.Y - h}).
			LineTo(vec.Vec2{X: c.X + w, Y: c.Y - h}).
			LineTo(vec.Vec2{X: c.X + w, Y: c.Y + h}).
			LineTo(vec.Vec2{X: c.X - w, Y: c.Y + h}).
			Close(), nil
	}
	k := r * kappa
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: c.X - w + r, Y: c.Y - h}).
		LineTo(vec.Vec2{X: c.X + w - r, Y: c.Y - h}).
		CubeTo(vec.Vec2{X: c.X + w - r + k, Y: c.Y - h},
			vec.Vec2{X: c.X + w, Y: c.Y - h + r - k},
			vec.Vec2{X: c.X + w, Y: c.Y - h + r}).
		LineTo(vec.Vec2{X: c.X + w, Y: c.Y + h - r}).
		CubeTo(vec.Vec2{X: c.X + w, Y: c.Y + h - r + k},
			vec.Vec2{X: c.X + w - r + k, Y: c.Y + h},
			vec.Vec2{X: c.X + w - r, Y: c.Y + h}).
		LineTo(vec.Vec2{X: c.X - w + r, Y: c.Y + h}).
		CubeTo(vec.Vec2{X: c.X - w + r - k, Y: c.Y + h},
			vec.Vec2{X: c.X - w, Y: c.Y + h - r + k},
			vec.Vec2{X: c.X - w, Y: c.Y + h - r}).
		LineTo(vec.Vec2{X: c.X - w, Y: c.Y - h + r}).
		CubeTo(vec.Vec2{X: c.X - w, Y: c.Y - h + r - k},
			vec.Vec2{X: c.X - w + r - k, Y: c.Y - h},
			vec.Vec2{X: c.X - w + r, Y: c.Y - h}).
		Close(), nil
}

// EllipseShape is an ellipse with animated center and size (full
// extents, not radii).
type EllipseShape struct {
	Center Value[vec.Vec2]
	Size   Value[vec.Vec2]
}

func (EllipseShape) isGeometry() {}

func (g EllipseShape) Resolve(frame float64, _ MorphPolicy) (*path.Data, error) {
	c := g.Center.Evaluate(frame)
	size := g.Size.Evaluate(frame)
	rx, ry := size.X/2, size.Y/2
	kx, ky := rx*kappa, ry*kappa
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: c.X + rx, Y: c.Y}).
		CubeTo(vec.Vec2{X: c.X + rx, Y: c.Y + ky},
			vec.Vec2{X: c.X + kx, Y: c.Y + ry},
			vec.Vec2{X: c.X, Y: c.Y + ry}).
		CubeTo(vec.Vec2{X: c.X - kx, Y: c.Y + ry},
			vec.Vec2{X: c.X - rx, Y: c.Y + ky},
			vec.Vec2{X: c.X - rx, Y: c.Y}).
		CubeTo(vec.Vec2{X: c.X - rx, Y: c.Y - ky},
			vec.Vec2{X: c.X - kx, Y: c.Y - ry},
			vec.Vec2{X: c.X, Y: c.Y - ry}).
		CubeTo(vec.Vec2{X: c.X + kx, Y: c.Y - ry},
			vec.Vec2{X: c.X + rx, Y: c.Y - ky},
			vec.Vec2{X: c.X + rx, Y: c.Y}).
		Close(), nil
}

// PathVertex is one authored outline vertex: the anchor point plus its
// incoming and outgoing bezier control handles. Handles are offsets
// relative to the anchor, so the zero value is a corner vertex with
// straight edges.
type PathVertex struct {
	Point vec.Vec2
	In    vec.Vec2
	Out   vec.Vec2
}

// PathSpec is a bezier outline as authored by a design tool: an ordered
// vertex list and a closed flag.
type PathSpec struct {
	Vertices []PathVertex
	Closed   bool
}

// Path converts the outline to concrete path geometry. Each edge
// becomes a cubic from one anchor's Out handle to the next anchor's In
// handle.
func (s PathSpec) Path() *path.Data {
	out := &path.Data{}
	n := len(s.Vertices)
	if n == 0 {
		return out
	}
	out.MoveTo(s.Vertices[0].Point)
	for i := 1; i < n; i++ {
		a, b := s.Vertices[i-1], s.Vertices[i]
		out.CubeTo(a.Point.Add(a.Out), b.Point.Add(b.In), b.Point)
	}
	if s.Closed && n > 1 {
		a, b := s.Vertices[n-1], s.Vertices[0]
		out.CubeTo(a.Point.Add(a.Out), b.Point.Add(b.In), b.Point)
		out.Close()
	}
	return out
}

// lerpPathSpec morphs two outlines at progress p. Anchors and handles
// interpolate independently, component-wise, by vertex index — no
// vertex correspondence beyond position in the list is attempted.
func lerpPathSpec(a, b PathSpec, p float64) (PathSpec, error) {
	if len(a.Vertices) != len(b.Vertices) {
		return PathSpec{}, fmt.Errorf("%d vs %d vertices: %w",
			len(a.Vertices), len(b.Vertices), ErrVertexCountMismatch)
	}
	if a.Closed != b.Closed {
		return PathSpec{}, ErrClosedMismatch
	}
	out := PathSpec{
		Vertices: make([]PathVertex, len(a.Vertices)),
		Closed:   a.Closed,
	}
	for i := range a.Vertices {
		out.Vertices[i] = PathVertex{
			Point: lerpVec2(a.Vertices[i].Point, b.Vertices[i].Point, p),
			In:    lerpVec2(a.Vertices[i].In, b.Vertices[i].In, p),
			Out:   lerpVec2(a.Vertices[i].Out, b.Vertices[i].Out, p),
		}
	}
	return out, nil
}

// MorphPath is keyframed outline geometry. Between two keyframes the
// vertices morph; before the first and after the last the outline
// clamps like any other track.
type MorphPath struct {
	Keys []Keyframe[PathSpec]
}

func (*MorphPath) isGeometry() {}

func (g *MorphPath) Resolve(frame float64, policy MorphPolicy) (*path.Data, error) {
	if len(g.Keys) == 0 {
		return &path.Data{}, nil
	}
	i, u, interior := bracket(g.Keys, frame)
	if !interior {
		return g.Keys[i].Value.Path(), nil
	}
	k0, k1 := g.Keys[i], g.Keys[i+1]
	p := k0.Easing.Progress(u)
	spec, err := lerpPathSpec(k0.Value, k1.Value, p)
	if err != nil {
		if policy == MorphError {
			return nil, err
		}
		// Hold the nearer keyframe's shape.
		if p < 0.5 {
			return k0.Value.Path(), nil
		}
		return k1.Value.Path(), nil
	}
	return spec.Path(), nil
}

// Validate checks keyframe ordering and that adjacent keyframes are
// structurally morphable, so mismatches surface at load time rather
// than mid-playback.
func (g *MorphPath) Validate() error {
	for i := 1; i < len(g.Keys); i++ {
		if g.Keys[i].Frame <= g.Keys[i-1].Frame {
			return fmt.Errorf("path keyframe %d: %w", i, ErrKeyframeOrder)
		}
		if len(g.Keys[i].Value.Vertices) != len(g.Keys[i-1].Value.Vertices) {
			return fmt.Errorf("path keyframes %d-%d: %w", i-1, i, ErrVertexCountMismatch)
		}
		if g.Keys[i].Value.Closed != g.Keys[i-1].Value.Closed {
			return fmt.Errorf("path keyframes %d-%d: %w", i-1, i, ErrClosedMismatch)
		}
	}
	return nil
}

// emptyPath reports whether p contains no drawable coordinates.
func emptyPath(p *path.Data) bool {
	return p == nil || len(p.Coords) == 0
}
