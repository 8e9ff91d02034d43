package splice

// Phase identifies which clips contribute to a frame.
type Phase int

const (
	// PhaseEmpty means no clip covers the time; the frame is background only.
	PhaseEmpty Phase = iota
	// PhaseA renders clip A alone.
	PhaseA
	// PhaseTransition blends clip A into clip B.
	PhaseTransition
	// PhaseB renders clip B alone.
	PhaseB
)

func (p Phase) String() string {
	switch p {
	case PhaseA:
		return "a"
	case PhaseTransition:
		return "transition"
	case PhaseB:
		return "b"
	default:
		return "empty"
	}
}

// TimeState is the result of mapping a global timeline time onto the clips.
type TimeState struct {
	Phase Phase
	// LocalA is the time inside clip A's trimmed window (PhaseA, PhaseTransition).
	LocalA float64
	// LocalB is the time inside clip B's trimmed window (PhaseTransition, PhaseB).
	LocalB float64
	// Progress is the transition progress in [0, 1]; zero outside the window.
	Progress float64
}

// EffectiveTransition returns the transition length actually used between
// clips of trimmed lengths dA and dB. It is zero unless both clips exist and
// the type is not none, and never exceeds either clip.
func EffectiveTransition(dA, dB float64, hasB bool, tr Transition) float64 {
	if !hasB || tr.Type == TransitionNone || !tr.Type.Valid() {
		return 0
	}
	return clamp(tr.Duration, 0, min(dA, dB))
}

// TotalDuration returns max(0, dA + dB − transition).
func TotalDuration(dA, dB float64, hasB bool, tr Transition) float64 {
	if !hasB {
		return max(0, dA)
	}
	return max(0, dA+dB-EffectiveTransition(dA, dB, hasB, tr))
}

// MapTime resolves global time t against clip A (trimmed length dA) and an
// optional clip B (trimmed length dB).
func MapTime(t, dA, dB float64, hasB bool, tr Transition) TimeState {
	if dA <= 0 {
		return TimeState{Phase: PhaseEmpty}
	}
	if !hasB {
		return TimeState{Phase: PhaseA, LocalA: t}
	}

	td := EffectiveTransition(dA, dB, hasB, tr)
	start := dA - td
	switch {
	case t < start:
		return TimeState{Phase: PhaseA, LocalA: t}
	case t < dA:
		return TimeState{
			Phase:    PhaseTransition,
			LocalA:   t,
			LocalB:   t - start,
			Progress: clamp01((t - start) / td),
		}
	default:
		return TimeState{Phase: PhaseB, LocalB: t - start}
	}
}

// MapTime resolves t against the snapshot's clips and transition.
func (s *Snapshot) MapTime(t float64) TimeState {
	switch len(s.Clips) {
	case 0:
		return TimeState{Phase: PhaseEmpty}
	case 1:
		return MapTime(t, s.Clips[0].Trimmed(), 0, false, s.Transition)
	default:
		return MapTime(t, s.Clips[0].Trimmed(), s.Clips[1].Trimmed(), true, s.Transition)
	}
}

// TotalDuration returns the length of the snapshot's timeline in seconds.
func (s *Snapshot) TotalDuration() float64 {
	switch len(s.Clips) {
	case 0:
		return 0
	case 1:
		return s.Clips[0].Trimmed()
	default:
		return TotalDuration(s.Clips[0].Trimmed(), s.Clips[1].Trimmed(), true, s.Transition)
	}
}
