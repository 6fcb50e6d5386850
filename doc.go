// Package keyline evaluates declaratively-authored vector animations —
// nested layers, shapes, transforms, masks — into an ordered list of
// renderer-agnostic draw commands for an arbitrary sample time.
//
// Keyline is the interpolation and composition core only. It does not
// parse any file format, rasterize anything, or run a playback loop:
// a loader constructs a [Composition] in memory, and a renderer consumes
// the [DrawList] that [Evaluate] returns. Evaluation is a pure function
// of (composition, frame); the same composition may be evaluated at
// different frames concurrently.
//
// # Quick start
//
//	comp := &keyline.Composition{
//		FrameRate: 30, EndFrame: 120, Width: 640, Height: 480,
//	}
//	layer := keyline.NewLayer("box")
//	layer.OutPoint = 120
//	layer.Content = &keyline.ShapeContent{Shapes: []keyline.Shape{
//		&keyline.GeometryShape{Geometry: keyline.RectShape{
//			Center: keyline.Fixed(vec.Vec2{X: 320, Y: 240}),
//			Size:   keyline.Fixed(vec.Vec2{X: 80, Y: 40}),
//		}},
//		&keyline.Fill{Brush: keyline.SolidBrush{Color: keyline.Fixed(keyline.Color{R: 1, A: 1})}},
//	}}
//	comp.Layers = append(comp.Layers, layer)
//
//	if err := comp.Validate(); err != nil { ... }
//	list, err := keyline.Evaluate(comp, 15, keyline.EvalOptions{})
//
// Each [DrawCommand] carries world-space geometry (a [path.Data] from
// seehuhn.de/go/geom), a resolved fill or stroke paint, the layer's
// blend mode, and any active mask or track-matte reference.
//
// # Animated values
//
// Every animatable property is a [Value], either fixed or backed by a
// keyframed [Track]. Keyframes carry an [Easing] descriptor: cubic
// bezier handles, a hold flag for step interpolation, or a preset
// easing function from github.com/tanema/gween/ease. Position tracks
// additionally support spatial bezier tangents, so a point can travel a
// curved path through space independently of its temporal easing.
//
// Times are expressed in frames throughout, matching the composition's
// frame rate.
package keyline
