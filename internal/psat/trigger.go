package psat

import (
	"fmt"
	"time"
)

// TriggerKind tags the variant carried by a Trigger.
type TriggerKind int

// Trigger variants.
const (
	KindDelayedAction TriggerKind = iota
	KindPlaySound
)

func (k TriggerKind) String() string {
	switch k {
	case KindDelayedAction:
		return "DelayedAction"
	case KindPlaySound:
		return "PlaySound"
	default:
		return fmt.Sprintf("TriggerKind(%d)", int(k))
	}
}

// Trigger is a side effect the driver must realize after a transition.
type Trigger[PQ any, A any] struct {
	Kind TriggerKind

	// DelayedAction: redeliver Action after Delay.
	Delay  time.Duration
	Action Action[A]

	// PlaySound: cue Stimulus when HasStimulus is set.
	Stimulus    PQ
	HasStimulus bool
}

// DelayedAction schedules action to be fed back into Update after delay.
func DelayedAction[PQ any, A any](delay time.Duration, action Action[A]) Trigger[PQ, A] {
	return Trigger[PQ, A]{Kind: KindDelayedAction, Delay: delay, Action: action}
}

// PlaySound requests a cue for the most recently presented stimulus.
func PlaySound[PQ any, A any](stimulus PQ, ok bool) Trigger[PQ, A] {
	t := Trigger[PQ, A]{Kind: KindPlaySound, HasStimulus: ok}
	if ok {
		t.Stimulus = stimulus
	}
	return t
}

// Triggers derives the effects that follow a transition. m is the
// post-transition model and action is the action that produced it.
func Triggers[PQ any, A comparable](m Model[PQ, A], action Action[A]) []Trigger[PQ, A] {
	switch action.Kind {
	case KindStart:
		stop := DelayedAction[PQ](time.Duration(m.duration)*time.Minute, AutomaticStop[A](m.sessionID))
		return append([]Trigger[PQ, A]{stop}, newStimulusTriggers(m)...)
	case KindAnswerTimeout:
		if action.SessionID != m.sessionID || !m.running {
			return nil
		}
		return newStimulusTriggers(m)
	case KindUserAnswers, KindManualStop, KindAutomaticStop, KindUpdateIsi, KindUpdateDuration:
		return nil
	default:
		panic(fmt.Sprintf("psat: unhandled action kind %s", action.Kind))
	}
}

func newStimulusTriggers[PQ any, A comparable](m Model[PQ, A]) []Trigger[PQ, A] {
	head, ok := m.Current()
	return []Trigger[PQ, A]{
		DelayedAction[PQ](time.Duration(m.isi)*time.Millisecond, AnswerTimeout[A](m.sessionID)),
		PlaySound[PQ, A](head, ok),
	}
}
