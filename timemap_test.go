package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- EffectiveTransition ---

func TestEffectiveTransition(t *testing.T) {
	tests := []struct {
		name   string
		dA, dB float64
		hasB   bool
		tr     Transition
		want   float64
	}{
		{"single clip", 10, 0, false, Transition{TransitionCrossfade, 2}, 0},
		{"none", 10, 8, true, Transition{TransitionNone, 2}, 0},
		{"unknown type", 10, 8, true, Transition{"spin", 2}, 0},
		{"crossfade", 10, 8, true, Transition{TransitionCrossfade, 2}, 2},
		{"clamped to shorter clip", 10, 3, true, Transition{TransitionWipeLeft, 5}, 3},
		{"negative", 10, 8, true, Transition{TransitionCrossfade, -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveTransition(tt.dA, tt.dB, tt.hasB, tt.tr))
		})
	}
}

// --- TotalDuration ---

func TestTotalDuration(t *testing.T) {
	cf := Transition{Type: TransitionCrossfade, Duration: 2}
	assert.Equal(t, 16.0, TotalDuration(10, 8, true, cf))
	assert.Equal(t, 18.0, TotalDuration(10, 8, true, Transition{Type: TransitionNone, Duration: 2}))
	assert.Equal(t, 10.0, TotalDuration(10, 0, false, cf))
	assert.Equal(t, 0.0, TotalDuration(-1, 0, false, cf))
}

// --- MapTime ---

func TestMapTimeTransitionWindow(t *testing.T) {
	cf := Transition{Type: TransitionCrossfade, Duration: 2}

	st := MapTime(7.999, 10, 8, true, cf)
	assert.Equal(t, PhaseA, st.Phase)
	assert.InDelta(t, 7.999, st.LocalA, 1e-12)
	assert.Zero(t, st.Progress)

	st = MapTime(8, 10, 8, true, cf)
	assert.Equal(t, PhaseTransition, st.Phase)
	assert.Zero(t, st.Progress)
	assert.Zero(t, st.LocalB)

	st = MapTime(9, 10, 8, true, cf)
	assert.Equal(t, PhaseTransition, st.Phase)
	assert.InDelta(t, 0.5, st.Progress, 1e-12)
	assert.InDelta(t, 9, st.LocalA, 1e-12)
	assert.InDelta(t, 1, st.LocalB, 1e-12)

	st = MapTime(10, 10, 8, true, cf)
	assert.Equal(t, PhaseB, st.Phase)
	assert.InDelta(t, 2, st.LocalB, 1e-12)

	st = MapTime(16, 10, 8, true, cf)
	assert.Equal(t, PhaseB, st.Phase)
	assert.InDelta(t, 8, st.LocalB, 1e-12)
}

func TestMapTimeNoTransition(t *testing.T) {
	st := MapTime(10, 10, 8, true, Transition{Type: TransitionNone})
	assert.Equal(t, PhaseB, st.Phase)
	assert.Zero(t, st.LocalB)

	st = MapTime(9.5, 10, 8, true, Transition{})
	assert.Equal(t, PhaseA, st.Phase)
}

func TestMapTimeSingleAndEmpty(t *testing.T) {
	assert.Equal(t, PhaseEmpty, MapTime(1, 0, 0, false, Transition{}).Phase)
	st := MapTime(3, 5, 0, false, Transition{Type: TransitionCrossfade, Duration: 1})
	assert.Equal(t, PhaseA, st.Phase)
	assert.Equal(t, 3.0, st.LocalA)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "a", PhaseA.String())
	assert.Equal(t, "transition", PhaseTransition.String())
	assert.Equal(t, "b", PhaseB.String())
	assert.Equal(t, "empty", PhaseEmpty.String())
}

// --- Snapshot ---

func TestSnapshotTimeMapping(t *testing.T) {
	a := NewClip(NewSolidSource(4, 4, ColorBlack, 12), 12)
	a.TrimStart, a.TrimEnd = 1, 11
	b := NewClip(NewSolidSource(4, 4, ColorWhite, 8), 8)
	snap := &Snapshot{
		Width: 4, Height: 4,
		Clips:      []Clip{a, b},
		Transition: Transition{Type: TransitionCrossfade, Duration: 2},
	}
	assert.Equal(t, 16.0, snap.TotalDuration())
	st := snap.MapTime(9)
	assert.Equal(t, PhaseTransition, st.Phase)
	assert.InDelta(t, 0.5, st.Progress, 1e-12)

	snap.Clips = snap.Clips[:1]
	assert.Equal(t, 10.0, snap.TotalDuration())
	snap.Clips = nil
	assert.Equal(t, 0.0, snap.TotalDuration())
	assert.Equal(t, PhaseEmpty, snap.MapTime(0).Phase)
}
