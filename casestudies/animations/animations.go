// Package animations shows state driving animations: a circle follows taps, can
// be scaled through a toggle binding, and cycles through the rainbow on a timer.
package animations

import (
	"time"

	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/scheduler"
	"github.com/on-the-ground/effect_ive_flow/store"
)

type Point struct {
	X, Y float64
}

type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Orange Color = "orange"
	Pink   Color = "pink"
	Purple Color = "purple"
	Yellow Color = "yellow"
	White  Color = "white"
)

// Rainbow is the color sequence of the rainbow button, one second per color.
var Rainbow = []Color{Red, Blue, Green, Orange, Pink, Purple, Yellow, White}

const frameDuration = time.Second

type State struct {
	CircleCenter   Point
	CircleColor    Color
	IsCircleScaled bool
}

func NewState() State {
	return State{CircleCenter: Point{X: 50, Y: 50}, CircleColor: White}
}

type Action interface{ isAnimationsAction() }

type (
	CircleScaleToggleChanged struct{ IsScaled bool }
	RainbowButtonTapped      struct{}
	SetColor                 struct{ Color Color }
	Tapped                   struct{ Point Point }
)

func (CircleScaleToggleChanged) isAnimationsAction() {}
func (RainbowButtonTapped) isAnimationsAction()      {}
func (SetColor) isAnimationsAction()                 {}
func (Tapped) isAnimationsAction()                   {}

type Environment struct {
	Scheduler scheduler.Scheduler
}

func Reduce(s State, a Action, env Environment) (State, effects.Effect[Action]) {
	switch a := a.(type) {
	case CircleScaleToggleChanged:
		s.IsCircleScaled = a.IsScaled
		return s, effects.None[Action]()

	case RainbowButtonTapped:
		frames := make([]effects.Frame[Action], len(Rainbow))
		for i, c := range Rainbow {
			frames[i] = effects.Frame[Action]{Value: SetColor{Color: c}, Duration: frameDuration}
		}
		return s, effects.KeyFrames(frames, env.Scheduler)

	case SetColor:
		s.CircleColor = a.Color
		return s, effects.None[Action]()

	case Tapped:
		s.CircleCenter = a.Point
		return s, effects.None[Action]()

	default:
		panic("exhaustive match")
	}
}

// ScaleBinding backs the "big mode" toggle.
func ScaleBinding(s *store.Store[State, Action]) store.Binding[bool] {
	return store.NewBinding(s,
		func(st State) bool { return st.IsCircleScaled },
		func(scaled bool) Action { return CircleScaleToggleChanged{IsScaled: scaled} },
	)
}
