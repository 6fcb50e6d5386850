package keyline

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Transform is a layer or group transform built from independently
// animated properties. Angles are in degrees; scale is a ratio
// (1.0 = 100%).
type Transform struct {
	Anchor   Value[vec.Vec2]
	Position PositionValue
	Scale    Value[vec.Vec2]
	Rotation Value[float64]
	Skew     Value[float64]
	SkewAxis Value[float64]
}

// IdentityTransform returns a transform that resolves to the identity
// matrix at every frame. Note that the zero value of Transform is NOT
// identity (its scale is zero).
func IdentityTransform() Transform {
	return Transform{Scale: Fixed(vec.Vec2{X: 1, Y: 1})}
}

// Resolve samples every property track at the given frame and composes
// the affine matrix in the fixed order
//
//	translate(-anchor) -> scale -> skew -> rotate -> translate(position)
//
// Opacity is deliberately not part of the matrix; it is a separate
// scalar composed multiplicatively during tree evaluation.
func (t Transform) Resolve(frame float64) matrix.Matrix {
	anchor := t.Anchor.Evaluate(frame)
	pos := t.Position.Evaluate(frame)
	scale := t.Scale.Evaluate(frame)
	if t.Scale.Anim == nil && scale == (vec.Vec2{}) {
		// An unset constant scale reads as 100%, so the zero value of
		// Transform does not collapse geometry to a point. Animated
		// tracks may still pass through zero.
		scale = vec.Vec2{X: 1, Y: 1}
	}
	rot := t.Rotation.Evaluate(frame) * math.Pi / 180
	skew := t.Skew.Evaluate(frame) * math.Pi / 180

	m := matrix.Matrix{scale.X, 0, 0, scale.Y, -anchor.X * scale.X, -anchor.Y * scale.Y}
	if skew != 0 {
		axis := t.SkewAxis.Evaluate(frame) * math.Pi / 180
		m = mulMatrix(skewMatrix(skew, axis), m)
	}
	if rot != 0 {
		sin, cos := math.Sincos(rot)
		m = mulMatrix(matrix.Matrix{cos, sin, -sin, cos, 0, 0}, m)
	}
	m[4] += pos.X
	m[5] += pos.Y
	return m
}

func (t Transform) validate() error {
	for _, err := range []error{
		t.Anchor.validate(), t.Position.validate(), t.Scale.validate(),
		t.Rotation.validate(), t.Skew.validate(), t.SkewAxis.validate(),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// skewMatrix shears along an arbitrary axis: rotate the axis onto x,
// shear in x, rotate back. The negated tangent matches the authoring
// convention where positive skew leans right.
func skewMatrix(skew, axis float64) matrix.Matrix {
	t := math.Tan(-skew)
	if axis == 0 {
		return matrix.Matrix{1, 0, t, 1, 0, 0}
	}
	sin, cos := math.Sincos(axis)
	rot := matrix.Matrix{cos, sin, -sin, cos, 0, 0}
	inv := matrix.Matrix{cos, -sin, sin, cos, 0, 0}
	return mulMatrix(rot, mulMatrix(matrix.Matrix{1, 0, t, 1, 0, 0}, inv))
}

// mulMatrix multiplies two affine matrices: result = p * c, i.e. c is
// applied first. Matrix layout [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func mulMatrix(p, c matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invMatrix computes the inverse of an affine matrix. A singular
// matrix inverts to identity.
func invMatrix(m matrix.Matrix) matrix.Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return matrix.Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return matrix.Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// applyMatrix transforms a point by an affine matrix.
func applyMatrix(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// transformPath returns a copy of p with every coordinate (anchors and
// control points alike) mapped through m. Affine maps commute with
// bezier evaluation, so transforming the control polygon transforms the
// curve.
func transformPath(m matrix.Matrix, p *path.Data) *path.Data {
	if p == nil {
		return nil
	}
	if m == matrix.Identity {
		return p
	}
	out := &path.Data{}
	ci := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			out.MoveTo(applyMatrix(m, p.Coords[ci]))
			ci++
		case path.CmdLineTo:
			out.LineTo(applyMatrix(m, p.Coords[ci]))
			ci++
		case path.CmdQuadTo:
			out.QuadTo(applyMatrix(m, p.Coords[ci]), applyMatrix(m, p.Coords[ci+1]))
			ci += 2
		case path.CmdCubeTo:
			out.CubeTo(applyMatrix(m, p.Coords[ci]), applyMatrix(m, p.Coords[ci+1]),
				applyMatrix(m, p.Coords[ci+2]))
			ci += 3
		case path.CmdClose:
			out.Close()
		}
	}
	return out
}
