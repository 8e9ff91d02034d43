package splice

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// AnimationDuration is the length in seconds of every overlay in/out animation.
const AnimationDuration = 0.5

// AnimationKind selects how an overlay enters or leaves the frame.
type AnimationKind string

const (
	AnimationNone        AnimationKind = "none"
	AnimationFade        AnimationKind = "fade"
	AnimationSlideLeft   AnimationKind = "slide-left"
	AnimationSlideRight  AnimationKind = "slide-right"
	AnimationSlideTop    AnimationKind = "slide-top"
	AnimationSlideBottom AnimationKind = "slide-bottom"
	AnimationSlideCenter AnimationKind = "slide-center"
)

var animationKinds = []any{
	AnimationNone, AnimationFade, AnimationSlideLeft, AnimationSlideRight,
	AnimationSlideTop, AnimationSlideBottom, AnimationSlideCenter,
}

// AnimationState is an overlay's animated presentation at one instant.
// Translations are percentages of the frame dimensions.
type AnimationState struct {
	Visible    bool
	Opacity    float64
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// restState is the presentation outside any animation window.
var restState = AnimationState{Visible: true, Opacity: 1, Scale: 1}

// Animate computes the overlay's state at timeline time t. The in animation
// runs over the first AnimationDuration seconds, the out animation over the
// last. When both windows overlap the opacities multiply and the out
// animation supplies translation and scale.
func Animate(o *Overlay, t float64) AnimationState {
	if !o.VisibleAt(t) {
		return AnimationState{}
	}
	st := restState

	if timeIn := t - o.Start; isAnimated(o.AnimationIn) && timeIn < AnimationDuration {
		in := animationFrame(o.AnimationIn, timeIn/AnimationDuration)
		st.Opacity *= in.Opacity
		st.TranslateX, st.TranslateY, st.Scale = in.TranslateX, in.TranslateY, in.Scale
	}
	if timeToEnd := o.End - t; isAnimated(o.AnimationOut) && timeToEnd < AnimationDuration {
		out := animationFrame(o.AnimationOut, timeToEnd/AnimationDuration)
		st.Opacity *= out.Opacity
		st.TranslateX, st.TranslateY, st.Scale = out.TranslateX, out.TranslateY, out.Scale
	}
	return st
}

func isAnimated(k AnimationKind) bool {
	return k != "" && k != AnimationNone
}

// animationFrame evaluates one animation at progress p, where p = 1 is the
// rest position. Out animations run the same curve backwards, so a slide
// leaves toward the side it names.
func animationFrame(kind AnimationKind, p float64) AnimationState {
	p = clamp01(p)
	st := restState
	switch kind {
	case AnimationFade:
		st.Opacity = tween(0, 1, p, ease.Linear)
	case AnimationSlideLeft:
		st.TranslateX = tween(-100, 0, p, ease.OutQuad)
	case AnimationSlideRight:
		st.TranslateX = tween(100, 0, p, ease.OutQuad)
	case AnimationSlideTop:
		st.TranslateY = tween(-100, 0, p, ease.OutQuad)
	case AnimationSlideBottom:
		st.TranslateY = tween(100, 0, p, ease.OutQuad)
	case AnimationSlideCenter:
		v := tween(0, 1, p, ease.OutQuad)
		st.Opacity = v
		st.Scale = v
	}
	return st
}

// tween evaluates a unit-length gween tween from begin to end at progress p.
func tween(begin, end, p float64, fn ease.TweenFunc) float64 {
	tw := gween.New(float32(begin), float32(end), 1, fn)
	v, _ := tw.Set(float32(p))
	return float64(v)
}
