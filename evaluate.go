package keyline

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// EvalOptions tunes evaluation behavior. The zero value is the
// recommended default.
type EvalOptions struct {
	// OnMorphMismatch decides what happens when two path keyframes
	// cannot be interpolated because their vertex counts differ.
	OnMorphMismatch MorphPolicy
}

// maxInstanceDepth bounds precomposition nesting so that an asset
// which (directly or indirectly) instances itself fails with
// ErrInstanceDepth instead of recursing forever.
const maxInstanceDepth = 16

// Evaluate resolves the composition at the given frame and flattens
// the result into an ordered draw command list. It is a pure function
// of its inputs: the composition is never written to, and the returned
// list is freshly allocated, so concurrent calls on one composition
// are safe.
func Evaluate(c *Composition, frame float64, opts EvalOptions) (*DrawList, error) {
	states, err := EvaluateLayers(c, frame, opts)
	if err != nil {
		return nil, err
	}
	return composeDrawList(states), nil
}

// EvaluateLayers resolves the composition's layer stack at the given
// frame without flattening, returning one state per visible layer in
// document (back-to-front) order. Layers outside their frame window
// are omitted. Matte source layers are included, carrying their
// coverage geometry, but are flagged so composeDrawList skips them.
func EvaluateLayers(c *Composition, frame float64, opts EvalOptions) ([]*LayerState, error) {
	ev := &evaluator{comp: c, opts: opts}
	return ev.evalStack(c.Layers, frame, 0)
}

// ResolveLayerTransform computes a single layer's world matrix at the
// given frame by walking its parent chain, without evaluating any
// content. Useful for attaching external elements to an animated
// layer.
func ResolveLayerTransform(c *Composition, index int, frame float64) (matrix.Matrix, error) {
	if index < 0 || index >= len(c.Layers) {
		return matrix.Identity, fmt.Errorf("layer index %d out of range: %w", index, ErrBadParent)
	}
	m := matrix.Identity
	steps := 0
	for i := index; i >= 0; i = c.Layers[i].Parent {
		if c.Layers[i].Parent >= len(c.Layers) {
			return matrix.Identity, fmt.Errorf("layer %d: parent %d out of range: %w", i, c.Layers[i].Parent, ErrBadParent)
		}
		steps++
		if steps > len(c.Layers) {
			return matrix.Identity, ErrParentCycle
		}
		local, _ := layerLocalFrame(&c.Layers[i], frame)
		m = mulMatrix(c.Layers[i].Transform.Resolve(local), m)
	}
	return m, nil
}

type evaluator struct {
	comp *Composition
	opts EvalOptions
}

// layerLocalFrame maps a composition frame into a layer's local
// timeline (start offset, stretch, then time remap) and reports
// whether the layer is inside its [InPoint, OutPoint) window.
func layerLocalFrame(l *Layer, frame float64) (float64, bool) {
	stretch := l.Stretch
	if stretch == 0 {
		stretch = 1
	}
	local := (frame - l.StartFrame) / stretch
	live := local >= l.InPoint && local < l.OutPoint
	if l.TimeRemap != nil {
		local = l.TimeRemap.Sample(local)
	}
	return local, live
}

// evalStack resolves one layer list (the composition's or a
// precomposed asset's) at the given frame.
func (ev *evaluator) evalStack(layers []Layer, frame float64, depth int) ([]*LayerState, error) {
	local := make([]float64, len(layers))
	live := make([]bool, len(layers))
	for i := range layers {
		local[i], live[i] = layerLocalFrame(&layers[i], frame)
	}

	// World transform and inherited opacity per layer, memoized so
	// shared ancestors are resolved once. Each ancestor is sampled at
	// its own local frame; parents contribute even while invisible.
	type chainState struct {
		m    matrix.Matrix
		op   float64
		done bool
	}
	chains := make([]chainState, len(layers))
	var chain func(i int) chainState
	chain = func(i int) chainState {
		if chains[i].done {
			return chains[i]
		}
		l := &layers[i]
		cs := chainState{
			m:    l.Transform.Resolve(local[i]),
			op:   opacityOr1(l.Opacity, local[i]),
			done: true,
		}
		if l.Parent >= 0 {
			pc := chain(l.Parent)
			cs.m = mulMatrix(pc.m, cs.m)
			cs.op *= pc.op
		}
		chains[i] = cs
		return cs
	}

	states := make([]*LayerState, 0, len(layers))
	byIndex := make([]*LayerState, len(layers))
	for i := range layers {
		if !live[i] {
			continue
		}
		l := &layers[i]
		cs := chain(i)
		st := &LayerState{
			Name:      l.Name,
			Index:     i,
			Matrix:    cs.m,
			Opacity:   cs.op,
			BlendMode: l.BlendMode,
		}

		for mi := range l.Masks {
			mk := &l.Masks[mi]
			if mk.Geometry == nil {
				continue
			}
			geo, err := mk.Geometry.Resolve(local[i], ev.opts.OnMorphMismatch)
			if err != nil {
				return nil, evalErr(l.Name, i, fmt.Sprintf("mask %d", mi), frame, err)
			}
			st.Masks = append(st.Masks, ResolvedMask{
				Mode:     mk.Mode,
				Geometry: transformPath(cs.m, geo),
				Opacity:  opacityOr1(mk.Opacity, local[i]),
			})
		}

		switch content := l.Content.(type) {
		case nil:
			// Null layer: transform carrier only.

		case *ShapeContent:
			lc := layerCtx{name: l.Name, index: i, frame: frame}
			var draws []ResolvedDraw
			if _, err := ev.walkShapes(content.Shapes, local[i], cs.m, 1, lc, &draws); err != nil {
				return nil, err
			}
			st.Draws = draws

		case *SolidContent:
			geo := (&path.Data{}).
				MoveTo(vec.Vec2{}).
				LineTo(vec.Vec2{X: content.Width}).
				LineTo(vec.Vec2{X: content.Width, Y: content.Height}).
				LineTo(vec.Vec2{Y: content.Height}).
				Close()
			st.Draws = []ResolvedDraw{{
				Geometry: transformPath(cs.m, geo),
				Paint:    Paint{Fill: &FillPaint{Brush: ResolvedBrush{Color: content.Color}}},
				Opacity:  1,
			}}

		case *InstanceContent:
			if depth >= maxInstanceDepth {
				return nil, evalErr(l.Name, i, "instance", frame, ErrInstanceDepth)
			}
			assetFrame := local[i]
			if content.TimeRemap != nil {
				assetFrame = content.TimeRemap.Sample(local[i])
			}
			sub, err := ev.evalStack(ev.comp.Assets[content.Asset], assetFrame, depth+1)
			if err != nil {
				return nil, err
			}
			for _, ss := range sub {
				graftState(ss, cs.m)
			}
			st.Children = sub
		}

		byIndex[i] = st
		states = append(states, st)
	}

	// Matte wiring: the source is the layer directly above (i+1). The
	// source is consumed even when the matted layer is outside its
	// window; a source outside its own window leaves a nil Source on
	// the reference.
	for i := range layers {
		if layers[i].Matte == MatteNone {
			continue
		}
		if i+1 < len(layers) && byIndex[i+1] != nil {
			byIndex[i+1].matteSource = true
		}
		st := byIndex[i]
		if st == nil {
			continue
		}
		ref := &MatteRef{Mode: layers[i].Matte}
		if i+1 < len(layers) {
			ref.Source = byIndex[i+1]
		}
		st.Matte = ref
	}

	return states, nil
}

// graftState reparents a precomposed layer state under an instance's
// world matrix: draw and mask geometry are re-transformed, the matrix
// is composed, and opacity is left for the draw pass to multiply via
// the owning instance state.
func graftState(st *LayerState, m matrix.Matrix) {
	st.Matrix = mulMatrix(m, st.Matrix)
	for di := range st.Draws {
		st.Draws[di].Geometry = transformPath(m, st.Draws[di].Geometry)
	}
	for mi := range st.Masks {
		st.Masks[mi].Geometry = transformPath(m, st.Masks[mi].Geometry)
	}
	for _, c := range st.Children {
		graftState(c, m)
	}
}

type layerCtx struct {
	name  string
	index int
	frame float64
}

// walkShapes evaluates one shape scope (a layer's top level or a
// group's children) in document order. Geometry shapes accumulate
// world-space outlines; Fill and Stroke paint everything accumulated
// so far in this scope; TrimPath rewrites it; Repeater duplicates both
// the accumulated geometry and the draws already emitted by this
// scope. The scope's final geometry is returned so enclosing groups
// can paint it too.
func (ev *evaluator) walkShapes(shapes []Shape, frame float64, m matrix.Matrix, opacity float64, lc layerCtx, draws *[]ResolvedDraw) ([]*path.Data, error) {
	var geoms []*path.Data
	drawStart := len(*draws)

	for _, s := range shapes {
		switch sh := s.(type) {
		case *Group:
			gm := mulMatrix(m, sh.Transform.Resolve(frame))
			gop := opacity * opacityOr1(sh.Opacity, frame)
			sub, err := ev.walkShapes(sh.Shapes, frame, gm, gop, lc, draws)
			if err != nil {
				return nil, err
			}
			geoms = append(geoms, sub...)

		case *GeometryShape:
			if sh.Geometry == nil {
				continue
			}
			geo, err := sh.Geometry.Resolve(frame, ev.opts.OnMorphMismatch)
			if err != nil {
				return nil, evalErr(lc.name, lc.index, "shape "+sh.Name, lc.frame, err)
			}
			geoms = append(geoms, transformPath(m, geo))

		case *Fill:
			*draws = append(*draws, ResolvedDraw{
				Geometry: mergePaths(geoms),
				Paint: Paint{Fill: &FillPaint{
					Brush: resolveBrush(sh.Brush, frame, m),
					Rule:  sh.Rule,
				}},
				Opacity: opacity * opacityOr1(sh.Opacity, frame),
			})

		case *Stroke:
			var dash []float64
			for _, d := range sh.Dash {
				dash = append(dash, d.Evaluate(frame))
			}
			*draws = append(*draws, ResolvedDraw{
				Geometry: mergePaths(geoms),
				Paint: Paint{Stroke: &StrokePaint{
					Brush:      resolveBrush(sh.Brush, frame, m),
					Width:      sh.Width.Evaluate(frame),
					Cap:        sh.Cap,
					Join:       sh.Join,
					MiterLimit: sh.MiterLimit,
					Dash:       dash,
					DashOffset: sh.DashOffset.Evaluate(frame),
				}},
				Opacity: opacity * opacityOr1(sh.Opacity, frame),
			})

		case *TrimPath:
			start := sh.Start.Evaluate(frame)
			end := sh.End.Evaluate(frame)
			offset := sh.Offset.Evaluate(frame)
			for gi := range geoms {
				geoms[gi] = trimGeometry(geoms[gi], start, end, offset)
			}

		case *Repeater:
			n := int(math.Round(sh.Copies.Evaluate(frame)))
			scope := (*draws)[drawStart:]
			if n <= 0 {
				*draws = (*draws)[:drawStart]
				geoms = nil
				continue
			}
			offset := sh.Offset.Evaluate(frame)
			inv := invMatrix(m)
			startOp := opacityOr1(sh.StartOpacity, frame)
			endOp := opacityOr1(sh.EndOpacity, frame)

			expanded := make([]ResolvedDraw, 0, n*len(scope))
			var expGeoms []*path.Data
			for k := 0; k < n; k++ {
				// The per-copy transform acts in this scope's local
				// space, so conjugate it with the world matrix.
				rk := ev.repeaterMatrix(sh, frame, float64(k)+offset)
				wk := mulMatrix(m, mulMatrix(rk, inv))
				t := 0.0
				if n > 1 {
					t = float64(k) / float64(n-1)
				}
				alpha := lerpFloat(startOp, endOp, t)
				for _, d := range scope {
					expanded = append(expanded, ResolvedDraw{
						Geometry: transformPath(wk, d.Geometry),
						Paint:    d.Paint,
						Opacity:  d.Opacity * alpha,
					})
				}
				for _, g := range geoms {
					expGeoms = append(expGeoms, transformPath(wk, g))
				}
			}
			*draws = append((*draws)[:drawStart], expanded...)
			geoms = expGeoms
		}
	}
	return geoms, nil
}

// repeaterMatrix builds the transform of copy i: scale and rotation
// compound per copy around the anchor, position offsets accumulate
// linearly.
func (ev *evaluator) repeaterMatrix(r *Repeater, frame, i float64) matrix.Matrix {
	anchor := r.Anchor.Evaluate(frame)
	pos := r.Position.Evaluate(frame)
	scale := r.Scale.Evaluate(frame)
	if r.Scale.IsFixed() && scale == (vec.Vec2{}) {
		scale = vec.Vec2{X: 1, Y: 1}
	}
	rot := r.Rotation.Evaluate(frame) * math.Pi / 180 * i
	sx := math.Pow(scale.X, i)
	sy := math.Pow(scale.Y, i)

	m := matrix.Matrix{sx, 0, 0, sy, -anchor.X * sx, -anchor.Y * sy}
	if rot != 0 {
		sin, cos := math.Sincos(rot)
		m = mulMatrix(matrix.Matrix{cos, sin, -sin, cos, 0, 0}, m)
	}
	m[4] += anchor.X + pos.X*i
	m[5] += anchor.Y + pos.Y*i
	return m
}

// resolveBrush samples a brush at the given frame. Gradient endpoints
// are authored in shape space and mapped through the world matrix.
func resolveBrush(b Brush, frame float64, m matrix.Matrix) ResolvedBrush {
	switch br := b.(type) {
	case SolidBrush:
		return ResolvedBrush{Color: br.Color.Evaluate(frame)}
	case GradientBrush:
		return ResolvedBrush{Gradient: &ResolvedGradient{
			Kind:  br.Kind,
			Start: applyMatrix(m, br.Start.Evaluate(frame)),
			End:   applyMatrix(m, br.End.Evaluate(frame)),
			Stops: br.Stops.Evaluate(frame),
		}}
	}
	return ResolvedBrush{}
}

// opacityOr1 evaluates an opacity property, treating the unset zero
// value as fully opaque so plain struct literals do not silently
// vanish. An explicitly invisible property should animate to zero.
func opacityOr1(v Value[float64], frame float64) float64 {
	if v == (Value[float64]{}) {
		return 1
	}
	return clamp01(v.Evaluate(frame))
}
