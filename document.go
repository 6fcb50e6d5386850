package keyline

import (
	"fmt"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// BlendMode selects how a layer composites over the content below it.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendAdd
	BlendDifference
	BlendExclusion
	BlendHardLight
	BlendSoftLight
)

var blendNames = [...]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"Add", "Difference", "Exclusion", "HardLight", "SoftLight",
}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(b))
}

// FillRule selects the rule deciding interior points of a fill.
type FillRule uint8

const (
	FillNonZero FillRule = iota
	FillEvenOdd
)

// MaskMode is the combination mode of a layer mask. Multiple masks on
// one layer combine in list order.
type MaskMode uint8

const (
	MaskAdd MaskMode = iota
	MaskSubtract
	MaskIntersect
	MaskDifference
)

// Mask is one animated mask path attached to a layer. Mask geometry is
// authored in layer space and resolved to world space during
// evaluation.
type Mask struct {
	Mode     MaskMode
	Geometry Geometry
	Opacity  Value[float64]
}

// MatteMode declares how a track matte gates a layer. The matte source
// is always the layer directly above the matted layer in document
// order; the source is resolved but not drawn on its own.
type MatteMode uint8

const (
	MatteNone MatteMode = iota
	MatteAlpha
	MatteAlphaInvert
	MatteLuma
	MatteLumaInvert
)

// GradientKind distinguishes linear from radial gradients.
type GradientKind uint8

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// Brush is the closed set of paint sources for fills and strokes.
type Brush interface{ isBrush() }

// SolidBrush paints a single (possibly animated) color.
type SolidBrush struct {
	Color Value[Color]
}

func (SolidBrush) isBrush() {}

// GradientBrush paints a linear or radial gradient. For linear
// gradients Start and End are the axis endpoints; for radial, Start is
// the center and End a point on the outer rim.
type GradientBrush struct {
	Kind  GradientKind
	Start Value[vec.Vec2]
	End   Value[vec.Vec2]
	Stops Value[[]GradientStop]
}

func (GradientBrush) isBrush() {}

// Shape is the closed set of shape layer elements. The variant set is
// fixed; evaluation matches exhaustively.
type Shape interface{ isShape() }

// Group nests shapes under an extra transform and opacity. Child
// transforms compose multiplicatively, child-to-parent.
type Group struct {
	Name      string
	Transform Transform
	Opacity   Value[float64]
	Shapes    []Shape
}

func (*Group) isShape() {}

// GeometryShape contributes outline geometry to the enclosing group.
type GeometryShape struct {
	Name     string
	Geometry Geometry
}

func (*GeometryShape) isShape() {}

// Fill paints the geometry accumulated so far in the enclosing group.
type Fill struct {
	Name    string
	Brush   Brush
	Opacity Value[float64]
	Rule    FillRule
}

func (*Fill) isShape() {}

// Stroke outlines the geometry accumulated so far in the enclosing
// group.
type Stroke struct {
	Name       string
	Brush      Brush
	Opacity    Value[float64]
	Width      Value[float64]
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
	Dash       []Value[float64]
	DashOffset Value[float64]
}

func (*Stroke) isShape() {}

// TrimPath restricts the geometry accumulated so far to an arc-length
// sub-range. Start and End are fractions in [0, 1]; Offset rotates the
// range around the path (in turns), and wraparound is handled when the
// effective start passes the end.
type TrimPath struct {
	Name   string
	Start  Value[float64]
	End    Value[float64]
	Offset Value[float64]
}

func (*TrimPath) isShape() {}

// Repeater duplicates the group content accumulated so far N times,
// applying an incremental transform per copy and ramping opacity from
// StartOpacity to EndOpacity across the copies.
type Repeater struct {
	Name         string
	Copies       Value[float64]
	Offset       Value[float64]
	Anchor       Value[vec.Vec2]
	Position     Value[vec.Vec2]
	Scale        Value[vec.Vec2]
	Rotation     Value[float64]
	StartOpacity Value[float64]
	EndOpacity   Value[float64]
}

func (*Repeater) isShape() {}

// Content is the closed set of layer content variants. A nil Content
// is a null layer: transform-only, nothing drawn.
type Content interface{ isContent() }

// ShapeContent is a vector shape stack.
type ShapeContent struct {
	Shapes []Shape
}

func (*ShapeContent) isContent() {}

// SolidContent is a full-size colored rectangle.
type SolidContent struct {
	Color  Color
	Width  float64
	Height float64
}

func (*SolidContent) isContent() {}

// InstanceContent references a precomposed asset by name, optionally
// remapping time into the asset's own timeline.
type InstanceContent struct {
	Asset     string
	TimeRemap *Track[float64]
}

func (*InstanceContent) isContent() {}

// Layer is one element of a composition's layer stack.
//
// Parent is an index back-reference into the same layer list (-1 for
// none); it contributes transform and opacity but never draws on the
// layer's behalf. InPoint/OutPoint bound the layer's visibility window
// in local frames: the layer is live for adjusted times in
// [InPoint, OutPoint).
type Layer struct {
	Name   string
	Parent int

	Transform Transform
	Opacity   Value[float64]

	InPoint    float64
	OutPoint   float64
	StartFrame float64
	Stretch    float64 // 0 is treated as 1
	TimeRemap  *Track[float64]

	Masks     []Mask
	Matte     MatteMode
	BlendMode BlendMode
	Content   Content
}

// NewLayer returns a layer with an identity transform, full opacity,
// and no parent. InPoint/OutPoint start at zero; set OutPoint before
// the layer can appear.
func NewLayer(name string) Layer {
	return Layer{
		Name:      name,
		Parent:    -1,
		Transform: IdentityTransform(),
		Opacity:   Fixed(1.0),
	}
}

// Composition is the full animation document: global metadata, named
// precomposed assets, and the layer stack in back-to-front order
// (layers later in the slice draw on top).
//
// A composition is immutable once loaded. Evaluation never writes to
// it, so one composition may be evaluated at several frames
// concurrently.
type Composition struct {
	Name                 string
	FrameRate            float64
	StartFrame, EndFrame float64
	Width, Height        int

	Assets map[string][]Layer
	Layers []Layer
}

// Validate eagerly checks the structural invariants that evaluation
// relies on: parent references in range and acyclic, matte receivers
// with a source layer above them, instance assets resolvable, keyframe
// times strictly increasing, and path keyframes morphable. Run it once
// after loading; evaluation assumes it has passed.
func (c *Composition) Validate() error {
	if err := validateLayers(c, c.Layers, ""); err != nil {
		return err
	}
	for name, layers := range c.Assets {
		if err := validateLayers(c, layers, name); err != nil {
			return err
		}
	}
	return nil
}

func validateLayers(c *Composition, layers []Layer, scope string) error {
	where := func(i int, name string) string {
		if scope == "" {
			return fmt.Sprintf("layer %q (#%d)", name, i)
		}
		return fmt.Sprintf("asset %q layer %q (#%d)", scope, name, i)
	}
	for i := range layers {
		l := &layers[i]

		if l.Parent >= len(layers) || l.Parent < -1 {
			return fmt.Errorf("%s: parent %d: %w", where(i, l.Name), l.Parent, ErrBadParent)
		}
		// Cycle check: a parent chain can visit at most len(layers)
		// distinct layers before it must have looped.
		steps := 0
		for p := l.Parent; p >= 0; p = layers[p].Parent {
			steps++
			if steps > len(layers) {
				return fmt.Errorf("%s: %w", where(i, l.Name), ErrParentCycle)
			}
		}

		if l.Matte != MatteNone && i+1 >= len(layers) {
			return fmt.Errorf("%s: %w", where(i, l.Name), ErrBadMatte)
		}

		if err := l.validate(c); err != nil {
			return fmt.Errorf("%s: %w", where(i, l.Name), err)
		}
	}
	return nil
}

func (l *Layer) validate(c *Composition) error {
	if err := l.Transform.validate(); err != nil {
		return err
	}
	if err := l.Opacity.validate(); err != nil {
		return err
	}
	if err := l.TimeRemap.Validate(); err != nil {
		return fmt.Errorf("time remap: %w", err)
	}
	for mi := range l.Masks {
		if err := validateGeometry(l.Masks[mi].Geometry); err != nil {
			return fmt.Errorf("mask %d: %w", mi, err)
		}
		if err := l.Masks[mi].Opacity.validate(); err != nil {
			return fmt.Errorf("mask %d: %w", mi, err)
		}
	}
	switch content := l.Content.(type) {
	case nil:
		// Null layer: transform only.
	case *ShapeContent:
		if err := validateShapes(content.Shapes); err != nil {
			return err
		}
	case *SolidContent:
		// Static, nothing to check.
	case *InstanceContent:
		if _, ok := c.Assets[content.Asset]; !ok {
			return fmt.Errorf("asset %q: %w", content.Asset, ErrUnknownAsset)
		}
		if err := content.TimeRemap.Validate(); err != nil {
			return fmt.Errorf("instance time remap: %w", err)
		}
	}
	return nil
}

func validateGeometry(g Geometry) error {
	switch geo := g.(type) {
	case nil:
		return nil
	case FixedPath, RectShape, EllipseShape:
		return nil
	case *MorphPath:
		return geo.Validate()
	}
	return nil
}

func validateShapes(shapes []Shape) error {
	for _, s := range shapes {
		switch sh := s.(type) {
		case *Group:
			if err := sh.Transform.validate(); err != nil {
				return fmt.Errorf("group %q: %w", sh.Name, err)
			}
			if err := sh.Opacity.validate(); err != nil {
				return fmt.Errorf("group %q: %w", sh.Name, err)
			}
			if err := validateShapes(sh.Shapes); err != nil {
				return err
			}
		case *GeometryShape:
			if err := validateGeometry(sh.Geometry); err != nil {
				return fmt.Errorf("shape %q: %w", sh.Name, err)
			}
		case *Fill:
			if err := validateBrush(sh.Brush); err != nil {
				return fmt.Errorf("fill %q: %w", sh.Name, err)
			}
		case *Stroke:
			if err := validateBrush(sh.Brush); err != nil {
				return fmt.Errorf("stroke %q: %w", sh.Name, err)
			}
			if err := sh.Width.validate(); err != nil {
				return fmt.Errorf("stroke %q: %w", sh.Name, err)
			}
		case *TrimPath:
			for _, v := range []Value[float64]{sh.Start, sh.End, sh.Offset} {
				if err := v.validate(); err != nil {
					return fmt.Errorf("trim %q: %w", sh.Name, err)
				}
			}
		case *Repeater:
			for _, v := range []Value[float64]{sh.Copies, sh.Offset, sh.Rotation, sh.StartOpacity, sh.EndOpacity} {
				if err := v.validate(); err != nil {
					return fmt.Errorf("repeater %q: %w", sh.Name, err)
				}
			}
		}
	}
	return nil
}

func validateBrush(b Brush) error {
	switch br := b.(type) {
	case nil:
		return nil
	case SolidBrush:
		return br.Color.validate()
	case GradientBrush:
		for _, err := range []error{br.Start.validate(), br.End.validate(), br.Stops.validate()} {
			if err != nil {
				return err
			}
		}
		if tr := br.Stops.Anim; tr != nil {
			for i := 1; i < len(tr.Keys); i++ {
				if len(tr.Keys[i].Value) != len(tr.Keys[i-1].Value) {
					return fmt.Errorf("gradient stop keyframes %d-%d have %d vs %d stops",
						i-1, i, len(tr.Keys[i-1].Value), len(tr.Keys[i].Value))
				}
			}
		}
	}
	return nil
}
