package keyline

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// --- Resolve ---

func TestTransformIdentity(t *testing.T) {
	got := IdentityTransform().Resolve(0)
	assertMatrix(t, "identity", got, matrix.Identity)
}

func TestTransformZeroValueResolvesToIdentity(t *testing.T) {
	var tr Transform
	assertMatrix(t, "zero value", tr.Resolve(0), matrix.Identity)
}

func TestTransformTranslation(t *testing.T) {
	tr := IdentityTransform()
	tr.Position = FixedPosition(vec.Vec2{X: 10, Y: 20})
	assertMatrix(t, "translation", tr.Resolve(0), matrix.Matrix{1, 0, 0, 1, 10, 20})
}

func TestTransformScale(t *testing.T) {
	tr := IdentityTransform()
	tr.Scale = Fixed(vec.Vec2{X: 2, Y: 3})
	assertMatrix(t, "scale", tr.Resolve(0), matrix.Matrix{2, 0, 0, 3, 0, 0})
}

func TestTransformRotation90(t *testing.T) {
	tr := IdentityTransform()
	tr.Rotation = Fixed(90.0)
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", tr.Resolve(0), matrix.Matrix{0, 1, -1, 0, 0, 0})
}

func TestTransformAnchor(t *testing.T) {
	// Scaling around an anchor keeps the anchor point fixed in place.
	tr := IdentityTransform()
	tr.Anchor = Fixed(vec.Vec2{X: 100, Y: 50})
	tr.Position = FixedPosition(vec.Vec2{X: 100, Y: 50})
	tr.Scale = Fixed(vec.Vec2{X: 2, Y: 2})
	m := tr.Resolve(0)
	assertVec(t, "anchor stays", applyMatrix(m, vec.Vec2{X: 100, Y: 50}), vec.Vec2{X: 100, Y: 50})
	assertVec(t, "offset doubles", applyMatrix(m, vec.Vec2{X: 101, Y: 50}), vec.Vec2{X: 102, Y: 50})
}

func TestTransformOrderScaleBeforeRotate(t *testing.T) {
	// Non-uniform scale then rotate: the unit x vector stretches to
	// (2,0) first, then rotates onto the y axis. The order is
	// observable because the operations do not commute.
	tr := IdentityTransform()
	tr.Scale = Fixed(vec.Vec2{X: 2, Y: 1})
	tr.Rotation = Fixed(90.0)
	got := applyMatrix(tr.Resolve(0), vec.Vec2{X: 1, Y: 0})
	assertVec(t, "scale-then-rotate", got, vec.Vec2{X: 0, Y: 2})
}

func TestTransformSkew(t *testing.T) {
	tr := IdentityTransform()
	tr.Skew = Fixed(45.0)
	m := tr.Resolve(0)
	// Horizontal shear: y=1 shifts x by -tan(45) = -1, y stays.
	assertVec(t, "skewed", applyMatrix(m, vec.Vec2{X: 0, Y: 1}), vec.Vec2{X: -1, Y: 1})
	assertVec(t, "x axis fixed", applyMatrix(m, vec.Vec2{X: 1, Y: 0}), vec.Vec2{X: 1, Y: 0})
}

func TestTransformAnimated(t *testing.T) {
	tr := IdentityTransform()
	tr.Position = AnimatePosition(NewPositionTrack(
		Keyframe[vec.Vec2]{Frame: 0, Value: vec.Vec2{X: 0, Y: 0}},
		Keyframe[vec.Vec2]{Frame: 10, Value: vec.Vec2{X: 100, Y: 0}},
	))
	assertMatrix(t, "frame 5", tr.Resolve(5), matrix.Matrix{1, 0, 0, 1, 50, 0})
}

// --- Matrix helpers ---

func TestMulMatrixIdentity(t *testing.T) {
	m := matrix.Matrix{2, 0.5, -1, 3, 10, -20}
	assertMatrix(t, "left identity", mulMatrix(matrix.Identity, m), m)
	assertMatrix(t, "right identity", mulMatrix(m, matrix.Identity), m)
}

func TestMulMatrixAppliesChildFirst(t *testing.T) {
	scale := matrix.Matrix{2, 0, 0, 2, 0, 0}
	translate := matrix.Matrix{1, 0, 0, 1, 10, 0}
	// parent=translate, child=scale: a point scales, then translates.
	m := mulMatrix(translate, scale)
	assertVec(t, "composed", applyMatrix(m, vec.Vec2{X: 3, Y: 4}), vec.Vec2{X: 16, Y: 8})
}

func TestInvMatrixRoundTrip(t *testing.T) {
	m := matrix.Matrix{2, 0.3, -0.5, 1.5, 12, -7}
	assertMatrix(t, "m·inv(m)", mulMatrix(m, invMatrix(m)), matrix.Identity)
	assertMatrix(t, "inv(m)·m", mulMatrix(invMatrix(m), m), matrix.Identity)
}

func TestInvMatrixSingular(t *testing.T) {
	assertMatrix(t, "singular", invMatrix(matrix.Matrix{0, 0, 0, 0, 5, 5}), matrix.Identity)
}

func TestSkewMatrixPreservesArea(t *testing.T) {
	// A pure shear has determinant 1 for any axis.
	for _, axis := range []float64{0, 0.3, 1.1, math.Pi / 2} {
		m := skewMatrix(0.5, axis)
		det := m[0]*m[3] - m[2]*m[1]
		assertNearTol(t, "det", det, 1, 1e-9)
	}
}

// --- transformPath ---

func TestTransformPathIdentityReturnsInput(t *testing.T) {
	p := (&path.Data{}).MoveTo(vec.Vec2{}).LineTo(vec.Vec2{X: 1}).Close()
	if got := transformPath(matrix.Identity, p); got != p {
		t.Error("identity transform should return the input path unchanged")
	}
}

func TestTransformPathMapsAllCoords(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 1, Y: 1}).
		CubeTo(vec.Vec2{X: 2, Y: 1}, vec.Vec2{X: 3, Y: 2}, vec.Vec2{X: 4, Y: 2}).
		Close()
	m := matrix.Matrix{2, 0, 0, 2, 10, 0}
	got := transformPath(m, p)
	if len(got.Coords) != len(p.Coords) {
		t.Fatalf("coord count %d, want %d", len(got.Coords), len(p.Coords))
	}
	for i, c := range p.Coords {
		assertVec(t, "coord", got.Coords[i], vec.Vec2{X: c.X*2 + 10, Y: c.Y * 2})
	}
	if len(got.Cmds) != len(p.Cmds) {
		t.Fatalf("cmd count %d, want %d", len(got.Cmds), len(p.Cmds))
	}
}

// --- Parent chains ---

func TestResolveLayerTransformMatchesManualComposition(t *testing.T) {
	grand := NewLayer("grand")
	grand.Transform.Position = FixedPosition(vec.Vec2{X: 7, Y: 0})
	grand.Transform.Rotation = Fixed(30.0)

	parent := NewLayer("parent")
	parent.Parent = 0
	parent.Transform.Scale = Fixed(vec.Vec2{X: 2, Y: 2})

	child := NewLayer("child")
	child.Parent = 1
	child.Transform.Position = FixedPosition(vec.Vec2{X: 1, Y: 2})

	c := &Composition{Layers: []Layer{grand, parent, child}}
	got, err := ResolveLayerTransform(c, 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	want := mulMatrix(grand.Transform.Resolve(0),
		mulMatrix(parent.Transform.Resolve(0), child.Transform.Resolve(0)))
	assertMatrix(t, "chain", got, want)

	// Associativity: composing the outer pair first gives the same
	// matrix.
	alt := mulMatrix(mulMatrix(grand.Transform.Resolve(0), parent.Transform.Resolve(0)),
		child.Transform.Resolve(0))
	assertMatrix(t, "associative", got, alt)
}

func TestResolveLayerTransformBadIndex(t *testing.T) {
	c := &Composition{Layers: []Layer{NewLayer("only")}}
	if _, err := ResolveLayerTransform(c, 5, 0); err == nil {
		t.Error("expected error for out-of-range index")
	}
}
