package psat

import (
	"fmt"
	"time"
)

// SessionID identifies one Start..Stop run.
type SessionID int

// ActionKind tags the variant carried by an Action.
type ActionKind int

// Action variants.
const (
	KindAnswerTimeout ActionKind = iota
	KindUserAnswers
	KindStart
	KindManualStop
	KindAutomaticStop
	KindUpdateIsi
	KindUpdateDuration
)

// AllActionKinds lists every action variant.
var AllActionKinds = []ActionKind{
	KindAnswerTimeout,
	KindUserAnswers,
	KindStart,
	KindManualStop,
	KindAutomaticStop,
	KindUpdateIsi,
	KindUpdateDuration,
}

func (k ActionKind) String() string {
	switch k {
	case KindAnswerTimeout:
		return "AnswerTimeout"
	case KindUserAnswers:
		return "UserAnswers"
	case KindStart:
		return "Start"
	case KindManualStop:
		return "ManualStop"
	case KindAutomaticStop:
		return "AutomaticStop"
	case KindUpdateIsi:
		return "UpdateIsi"
	case KindUpdateDuration:
		return "UpdateDuration"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is an input to Update. Only the payload field that belongs to Kind is meaningful.
type Action[A any] struct {
	Kind      ActionKind
	SessionID SessionID // AnswerTimeout, AutomaticStop
	Answer    A         // UserAnswers
	Text      string    // UpdateIsi, UpdateDuration
}

// AnswerTimeout reports that the answer window of session sid elapsed.
func AnswerTimeout[A any](sid SessionID) Action[A] {
	return Action[A]{Kind: KindAnswerTimeout, SessionID: sid}
}

// UserAnswers submits an answer for the current stimulus.
func UserAnswers[A any](answer A) Action[A] {
	return Action[A]{Kind: KindUserAnswers, Answer: answer}
}

// Start begins a new session.
func Start[A any]() Action[A] {
	return Action[A]{Kind: KindStart}
}

// ManualStop ends the running session on user request.
func ManualStop[A any]() Action[A] {
	return Action[A]{Kind: KindManualStop}
}

// AutomaticStop ends session sid once its duration elapsed.
func AutomaticStop[A any](sid SessionID) Action[A] {
	return Action[A]{Kind: KindAutomaticStop, SessionID: sid}
}

// UpdateIsi sets the inter-stimulus interval from a raw settings string.
func UpdateIsi[A any](text string) Action[A] {
	return Action[A]{Kind: KindUpdateIsi, Text: text}
}

// UpdateDuration sets the session length in minutes from a raw settings string.
func UpdateDuration[A any](text string) Action[A] {
	return Action[A]{Kind: KindUpdateDuration, Text: text}
}

func (a Action[A]) String() string {
	switch a.Kind {
	case KindAnswerTimeout, KindAutomaticStop:
		return fmt.Sprintf("%s(%d)", a.Kind, a.SessionID)
	case KindUserAnswers:
		return fmt.Sprintf("%s(%v)", a.Kind, a.Answer)
	case KindUpdateIsi, KindUpdateDuration:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
	default:
		return a.Kind.String()
	}
}

// LogEntry records one processed action.
type LogEntry[A any] struct {
	At     time.Time
	Action Action[A]
}
