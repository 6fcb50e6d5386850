package keyline

import (
	"errors"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func validComp() *Composition {
	shape := NewLayer("shape")
	shape.OutPoint = 100
	shape.Content = &ShapeContent{Shapes: []Shape{
		&GeometryShape{Name: "box", Geometry: RectShape{
			Center: Fixed(vec.Vec2{X: 50, Y: 50}),
			Size:   Fixed(vec.Vec2{X: 40, Y: 40}),
		}},
		&Fill{Name: "paint", Brush: SolidBrush{Color: Fixed(Color{R: 1, A: 1})}, Opacity: Fixed(1.0)},
	}}
	return &Composition{
		Name:      "test",
		FrameRate: 60,
		EndFrame:  100,
		Width:     200,
		Height:    200,
		Layers:    []Layer{shape},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validComp().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateBadParentIndex(t *testing.T) {
	c := validComp()
	c.Layers[0].Parent = 7
	if err := c.Validate(); !errors.Is(err, ErrBadParent) {
		t.Errorf("Validate() = %v, want ErrBadParent", err)
	}
}

func TestValidateParentCycle(t *testing.T) {
	a := NewLayer("a")
	a.OutPoint = 10
	a.Parent = 1
	b := NewLayer("b")
	b.OutPoint = 10
	b.Parent = 0
	c := &Composition{Layers: []Layer{a, b}}
	if err := c.Validate(); !errors.Is(err, ErrParentCycle) {
		t.Errorf("Validate() = %v, want ErrParentCycle", err)
	}
}

func TestValidateSelfParentCycle(t *testing.T) {
	a := NewLayer("a")
	a.Parent = 0
	c := &Composition{Layers: []Layer{a}}
	if err := c.Validate(); !errors.Is(err, ErrParentCycle) {
		t.Errorf("Validate() = %v, want ErrParentCycle", err)
	}
}

func TestValidateMatteWithoutSource(t *testing.T) {
	c := validComp()
	// Topmost layer cannot have a matte: nothing sits above it.
	c.Layers[len(c.Layers)-1].Matte = MatteAlpha
	if err := c.Validate(); !errors.Is(err, ErrBadMatte) {
		t.Errorf("Validate() = %v, want ErrBadMatte", err)
	}
}

func TestValidateUnknownAsset(t *testing.T) {
	l := NewLayer("inst")
	l.OutPoint = 10
	l.Content = &InstanceContent{Asset: "missing"}
	c := &Composition{Layers: []Layer{l}}
	if err := c.Validate(); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("Validate() = %v, want ErrUnknownAsset", err)
	}
}

func TestValidateKeyframeOrderInTransform(t *testing.T) {
	c := validComp()
	c.Layers[0].Transform.Rotation = Animate(NewFloatTrack(
		Keyframe[float64]{Frame: 10, Value: 0},
		Keyframe[float64]{Frame: 5, Value: 90},
	))
	if err := c.Validate(); !errors.Is(err, ErrKeyframeOrder) {
		t.Errorf("Validate() = %v, want ErrKeyframeOrder", err)
	}
}

func TestValidateMorphMismatchInShape(t *testing.T) {
	c := validComp()
	c.Layers[0].Content = &ShapeContent{Shapes: []Shape{
		&GeometryShape{Name: "morph", Geometry: mismatchedMorph()},
	}}
	if err := c.Validate(); !errors.Is(err, ErrVertexCountMismatch) {
		t.Errorf("Validate() = %v, want ErrVertexCountMismatch", err)
	}
}

func TestValidateChecksAssets(t *testing.T) {
	bad := NewLayer("bad")
	bad.Parent = 5
	c := validComp()
	c.Assets = map[string][]Layer{"sub": {bad}}
	if err := c.Validate(); !errors.Is(err, ErrBadParent) {
		t.Errorf("Validate() = %v, want ErrBadParent for asset layer", err)
	}
}

func TestValidateGradientStopCountMismatch(t *testing.T) {
	c := validComp()
	c.Layers[0].Content = &ShapeContent{Shapes: []Shape{
		&Fill{Name: "grad", Brush: GradientBrush{
			Stops: Animate(NewStopsTrack(
				Keyframe[[]GradientStop]{Frame: 0, Value: []GradientStop{{}, {}}},
				Keyframe[[]GradientStop]{Frame: 10, Value: []GradientStop{{}, {}, {}}},
			)),
		}},
	}}
	if err := c.Validate(); err == nil {
		t.Error("Validate() = nil, want gradient stop count error")
	}
}

func TestBlendModeString(t *testing.T) {
	if got := BlendMultiply.String(); got != "Multiply" {
		t.Errorf("String() = %q, want Multiply", got)
	}
	if got := BlendMode(99).String(); got != "BlendMode(99)" {
		t.Errorf("String() = %q", got)
	}
}
