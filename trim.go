package keyline

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// trimSamples is the number of uniform parameter steps used to build
// each segment's arc-length table. Chord sampling is deterministic and
// plenty accurate for trim offsets; trimming is a visual operator, not
// a measurement tool.
const trimSamples = 32

// trimSeg is one cubic segment with a precomputed arc-length table.
// Lines and quadratics are promoted to cubics so that splitting is
// uniform.
type trimSeg struct {
	p0, p1, p2, p3 vec.Vec2
	length         float64
	arc            [trimSamples + 1]float64
}

type trimSubpath struct {
	segs   []trimSeg
	closed bool
	length float64
}

func makeSeg(p0, p1, p2, p3 vec.Vec2) trimSeg {
	sg := trimSeg{p0: p0, p1: p1, p2: p2, p3: p3}
	prev := p0
	for i := 1; i <= trimSamples; i++ {
		pt := cubicPoint(p0, p1, p2, p3, float64(i)/trimSamples)
		d := pt.Sub(prev)
		sg.arc[i] = sg.arc[i-1] + math.Hypot(d.X, d.Y)
		prev = pt
	}
	sg.length = sg.arc[trimSamples]
	return sg
}

func lineSeg(a, b vec.Vec2) trimSeg {
	d := b.Sub(a)
	return makeSeg(a, a.Add(d.Mul(1.0/3)), a.Add(d.Mul(2.0/3)), b)
}

func quadSeg(p0, c, p1 vec.Vec2) trimSeg {
	// Degree elevation of a quadratic to a cubic.
	c1 := p0.Add(c.Sub(p0).Mul(2.0 / 3))
	c2 := p1.Add(c.Sub(p1).Mul(2.0 / 3))
	return makeSeg(p0, c1, c2, p1)
}

// splitSubpaths decomposes a path into measured cubic subpaths. A
// closing edge is materialized for closed subpaths whose endpoints
// differ.
func splitSubpaths(p *path.Data) []trimSubpath {
	var subs []trimSubpath
	var cur trimSubpath
	var current, start vec.Vec2
	open := false

	flush := func() {
		if open && len(cur.segs) > 0 {
			for i := range cur.segs {
				cur.length += cur.segs[i].length
			}
			subs = append(subs, cur)
		}
		cur = trimSubpath{}
		open = false
	}

	ci := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			flush()
			current = p.Coords[ci]
			start = current
			open = true
			ci++
		case path.CmdLineTo:
			cur.segs = append(cur.segs, lineSeg(current, p.Coords[ci]))
			current = p.Coords[ci]
			ci++
		case path.CmdQuadTo:
			cur.segs = append(cur.segs, quadSeg(current, p.Coords[ci], p.Coords[ci+1]))
			current = p.Coords[ci+1]
			ci += 2
		case path.CmdCubeTo:
			cur.segs = append(cur.segs, makeSeg(current, p.Coords[ci], p.Coords[ci+1], p.Coords[ci+2]))
			current = p.Coords[ci+2]
			ci += 3
		case path.CmdClose:
			if current != start {
				cur.segs = append(cur.segs, lineSeg(current, start))
			}
			cur.closed = true
			current = start
		}
	}
	flush()
	return subs
}

// paramAt inverts the arc-length table: the bezier parameter at which
// the segment has covered target length.
func (sg *trimSeg) paramAt(target float64) float64 {
	if target <= 0 {
		return 0
	}
	if target >= sg.length {
		return 1
	}
	for i := 1; i <= trimSamples; i++ {
		if sg.arc[i] >= target {
			span := sg.arc[i] - sg.arc[i-1]
			f := 0.0
			if span > 0 {
				f = (target - sg.arc[i-1]) / span
			}
			return (float64(i-1) + f) / trimSamples
		}
	}
	return 1
}

// splitCubicAt splits a cubic at t by de Casteljau, returning the
// control points of both halves (the middle point is shared).
func splitCubicAt(p0, p1, p2, p3 vec.Vec2, t float64) (l1, l2, mid, r1, r2 vec.Vec2) {
	a := lerpVec2(p0, p1, t)
	b := lerpVec2(p1, p2, t)
	c := lerpVec2(p2, p3, t)
	ab := lerpVec2(a, b, t)
	bc := lerpVec2(b, c, t)
	mid = lerpVec2(ab, bc, t)
	return a, ab, mid, bc, c
}

// cubicSlice extracts the sub-curve for parameters [t0, t1].
func cubicSlice(p0, p1, p2, p3 vec.Vec2, t0, t1 float64) (q0, q1, q2, q3 vec.Vec2) {
	if t0 > 0 {
		_, _, mid, r1, r2 := splitCubicAt(p0, p1, p2, p3, t0)
		p0, p1, p2 = mid, r1, r2
		t1 = (t1 - t0) / (1 - t0)
	}
	if t1 < 1 {
		l1, l2, mid, _, _ := splitCubicAt(p0, p1, p2, p3, t1)
		return p0, l1, l2, mid
	}
	return p0, p1, p2, p3
}

// emitRange appends the arc-length range [l0, l1] of a subpath to out.
// When cont is true the range continues the previous subpath (no
// MoveTo), which is how a wrapped range on a closed subpath stays one
// connected piece.
func emitRange(out *path.Data, sp *trimSubpath, l0, l1 float64, cont bool) bool {
	if l1 <= l0 {
		return cont
	}
	started := cont
	pos := 0.0
	for i := range sp.segs {
		sg := &sp.segs[i]
		segEnd := pos + sg.length
		if segEnd <= l0 || sg.length == 0 {
			pos = segEnd
			continue
		}
		if pos >= l1 {
			break
		}
		t0, t1 := 0.0, 1.0
		if l0 > pos {
			t0 = sg.paramAt(l0 - pos)
		}
		if l1 < segEnd {
			t1 = sg.paramAt(l1 - pos)
		}
		q0, q1, q2, q3 := cubicSlice(sg.p0, sg.p1, sg.p2, sg.p3, t0, t1)
		if !started {
			out.MoveTo(q0)
			started = true
		}
		out.CubeTo(q1, q2, q3)
		pos = segEnd
	}
	return started
}

// trimGeometry restricts p to the arc-length range [start, end] (both
// fractions of each subpath's total length), rotated by offset turns.
// start > end wraps through the subpath's end. The identity trim
// returns p untouched; start == end yields an empty path.
func trimGeometry(p *path.Data, start, end, offset float64) *path.Data {
	if p == nil {
		return &path.Data{}
	}
	start = clamp01(start)
	end = clamp01(end)

	span := end - start
	if span < 0 {
		span++
	}
	off := math.Mod(start+offset, 1)
	if off < 0 {
		off++
	}

	if start == end && span == 0 {
		return &path.Data{}
	}
	if span >= 1 || (start <= 0 && end >= 1 && off == 0) {
		if off == 0 {
			return p
		}
		span = 1
	}

	out := &path.Data{}
	for _, sp := range splitSubpaths(p) {
		if sp.length == 0 {
			continue
		}
		a := off * sp.length
		b := a + span*sp.length
		if b <= sp.length {
			emitRange(out, &sp, a, b, false)
			continue
		}
		// Wrapped: tail of the subpath, then its head. On a closed
		// subpath the two pieces are one connected stroke.
		started := emitRange(out, &sp, a, sp.length, false)
		emitRange(out, &sp, 0, b-sp.length, sp.closed && started)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
