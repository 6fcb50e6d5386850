package keyline

import (
	"testing"

	"github.com/tanema/gween/ease"
)

// --- Progress ---

func TestEasingLinearZeroValue(t *testing.T) {
	var e Easing
	for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assertNear(t, "linear", e.Progress(u), u)
	}
}

func TestEasingHold(t *testing.T) {
	e := HoldEasing
	assertNear(t, "at 0", e.Progress(0), 0)
	assertNear(t, "before end", e.Progress(0.999), 0)
	assertNear(t, "at 1", e.Progress(1), 1)
}

func TestEasingEndpoints(t *testing.T) {
	e := Easing{Out: Handle(0.42, 0), In: Handle(0.58, 1)}
	assertNear(t, "start", e.Progress(0), 0)
	assertNear(t, "end", e.Progress(1), 1)
}

func TestEasingSymmetricSCurve(t *testing.T) {
	// Symmetric handles give a point-symmetric curve: p(0.5) = 0.5 and
	// p(u) + p(1-u) = 1.
	e := Easing{Out: Handle(0.42, 0), In: Handle(0.58, 1)}
	assertNearTol(t, "midpoint", e.Progress(0.5), 0.5, 1e-6)
	for _, u := range []float64{0.1, 0.2, 0.3, 0.4} {
		assertNearTol(t, "symmetry", e.Progress(u)+e.Progress(1-u), 1, 1e-6)
	}
}

func TestEasingSlowStart(t *testing.T) {
	e := Easing{Out: Handle(0.9, 0), In: Handle(1, 1)}
	if got := e.Progress(0.3); got >= 0.3 {
		t.Errorf("Progress(0.3) = %v, want below linear for a slow start", got)
	}
}

func TestEasingMonotonic(t *testing.T) {
	e := Easing{Out: Handle(0.33, 0.1), In: Handle(0.67, 0.9)}
	prev := -1.0
	for i := 0; i <= 200; i++ {
		u := float64(i) / 200
		p := e.Progress(u)
		if p < prev-1e-9 {
			t.Fatalf("Progress not monotonic at u=%v: %v after %v", u, p, prev)
		}
		prev = p
	}
}

func TestEasingNilHandleDefaultsLinearSide(t *testing.T) {
	// Only the out handle set: curve still hits both endpoints.
	e := Easing{Out: Handle(0.8, 0.2)}
	assertNear(t, "start", e.Progress(0), 0)
	assertNear(t, "end", e.Progress(1), 1)
}

// --- Preset functions ---

func TestEasingPresetFn(t *testing.T) {
	e := Easing{Fn: ease.Linear}
	assertNearTol(t, "linear preset", e.Progress(0.5), 0.5, 1e-6)

	cubic := Easing{Fn: ease.OutCubic}
	if got := cubic.Progress(0.3); got <= 0.3 {
		t.Errorf("OutCubic Progress(0.3) = %v, want above linear", got)
	}
	assertNearTol(t, "OutCubic end", cubic.Progress(1), 1, 1e-6)
}

func TestEasingFnWinsOverHandles(t *testing.T) {
	// A preset function takes precedence over handle data when both are
	// set.
	e := Easing{Fn: ease.Linear, Out: Handle(0.9, 0), In: Handle(0.1, 1)}
	assertNearTol(t, "fn precedence", e.Progress(0.25), 0.25, 1e-6)
}

// --- Track integration ---

func TestTrackWithEasedKeyframe(t *testing.T) {
	tr := NewFloatTrack(
		Keyframe[float64]{Frame: 0, Value: 0, Easing: Easing{Out: Handle(0.9, 0), In: Handle(1, 1)}},
		Keyframe[float64]{Frame: 10, Value: 100},
	)
	if got := tr.Sample(3); got >= 30 {
		t.Errorf("eased Sample(3) = %v, want below the linear value 30", got)
	}
	assertNear(t, "endpoint exact", tr.Sample(10), 100)
}
