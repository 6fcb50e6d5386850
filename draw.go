package keyline

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// ResolvedGradient is a gradient brush with every track sampled.
// Start and End are in world coordinates.
type ResolvedGradient struct {
	Kind  GradientKind
	Start vec.Vec2
	End   vec.Vec2
	Stops []GradientStop
}

// ResolvedBrush is a brush with the animation evaluated away. Either
// Gradient is nil and Color holds a solid paint, or Gradient describes
// the ramp and Color is unused.
type ResolvedBrush struct {
	Color    Color
	Gradient *ResolvedGradient
}

// FillPaint describes how to fill a draw command's geometry.
type FillPaint struct {
	Brush ResolvedBrush
	Rule  FillRule
}

// StrokePaint describes how to stroke a draw command's geometry. Width
// is in world units after layer scaling has been applied to the
// geometry, not to the width itself. An empty Dash means a solid line.
type StrokePaint struct {
	Brush      ResolvedBrush
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
	Dash       []float64
	DashOffset float64
}

// Paint carries exactly one of a fill or a stroke.
type Paint struct {
	Fill   *FillPaint
	Stroke *StrokePaint
}

// ResolvedMask is a layer mask with its geometry transformed into
// world coordinates.
type ResolvedMask struct {
	Mode     MaskMode
	Geometry *path.Data
	Opacity  float64
}

// MatteRef points a layer at the layer state whose rendered coverage
// gates it. Source is nil when the matte layer is outside its frame
// window at the evaluated time; renderers should treat a nil source as
// empty coverage for Alpha and Luma modes and full coverage for the
// inverted modes.
type MatteRef struct {
	Mode   MatteMode
	Source *LayerState
}

// ResolvedDraw is one fill or stroke produced by a layer's content,
// with geometry in world coordinates. Opacity folds in the content's
// own opacity chain (groups, fill opacity) but not the layer's.
type ResolvedDraw struct {
	Geometry *path.Data
	Paint    Paint
	Opacity  float64
}

// LayerState is the result of evaluating one layer at one frame.
// Matrix is the full world transform including every ancestor in the
// parent chain; Draws already have it baked into their geometry.
// Children holds the grafted states of a precomposition instance, in
// stacking order.
type LayerState struct {
	Name      string
	Index     int
	Matrix    matrix.Matrix
	Opacity   float64
	BlendMode BlendMode
	Draws     []ResolvedDraw
	Masks     []ResolvedMask
	Matte     *MatteRef
	Children  []*LayerState

	matteSource bool
}

// DrawCommand is one renderer-facing paint operation: geometry in
// world coordinates, a resolved paint, and the clip state inherited
// from the owning layer. Opacity is the final multiplied value.
type DrawCommand struct {
	Layer      string
	LayerIndex int
	Geometry   *path.Data
	Paint      Paint
	Opacity    float64
	BlendMode  BlendMode
	Masks      []ResolvedMask
	Matte      *MatteRef
}

// DrawList is a flat, ordered list of draw commands for one frame.
// Commands are emitted bottom layer first, so painting them in order
// reproduces the stacking of the composition.
type DrawList struct {
	Commands []DrawCommand
}

// composeDrawList flattens evaluated layer states into renderer-facing
// commands. Matte source layers contribute coverage through MatteRef
// and are not drawn directly. Fully transparent or empty draws are
// dropped.
func composeDrawList(states []*LayerState) *DrawList {
	list := &DrawList{}
	appendStates(list, states)
	return list
}

func appendStates(list *DrawList, states []*LayerState) {
	// Document order is back-to-front: later layers paint on top.
	for _, st := range states {
		if st.matteSource {
			continue
		}
		appendState(list, st, 1)
	}
}

func appendState(list *DrawList, st *LayerState, opacity float64) {
	op := opacity * st.Opacity
	if op <= 0 {
		return
	}
	for _, d := range st.Draws {
		final := op * d.Opacity
		if final <= 0 || emptyPath(d.Geometry) {
			continue
		}
		list.Commands = append(list.Commands, DrawCommand{
			Layer:      st.Name,
			LayerIndex: st.Index,
			Geometry:   d.Geometry,
			Paint:      d.Paint,
			Opacity:    final,
			BlendMode:  st.BlendMode,
			Masks:      st.Masks,
			Matte:      st.Matte,
		})
	}
	for _, c := range st.Children {
		if c.matteSource {
			continue
		}
		appendState(list, c, op)
	}
}

// mergePaths concatenates subpaths into a single path so one fill or
// stroke covers everything a shape scope accumulated.
func mergePaths(ps []*path.Data) *path.Data {
	switch len(ps) {
	case 0:
		return &path.Data{}
	case 1:
		return ps[0]
	}
	out := &path.Data{}
	for _, p := range ps {
		if p == nil {
			continue
		}
		out.Cmds = append(out.Cmds, p.Cmds...)
		out.Coords = append(out.Coords, p.Coords...)
	}
	return out
}
