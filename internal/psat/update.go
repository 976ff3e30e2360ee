package psat

import (
	"fmt"
	"strconv"
	"time"
)

// Update applies action at time at and returns the next model together with the
// triggers the driver has to realize. Actions that do not apply in the current
// state leave everything but the log untouched.
func Update[PQ any, A comparable](at time.Time, action Action[A], m Model[PQ, A]) (Model[PQ, A], []Trigger[PQ, A]) {
	m.log = prepend(LogEntry[A]{At: at, Action: action}, m.log)
	if m.running {
		m = updateRunning(action, m)
	} else {
		m = updateIdle(action, m)
	}
	return m, Triggers(m, action)
}

func updateRunning[PQ any, A comparable](action Action[A], m Model[PQ, A]) Model[PQ, A] {
	switch action.Kind {
	case KindManualStop:
		m.running = false
		return m
	case KindAutomaticStop:
		if action.SessionID != m.sessionID {
			return m
		}
		m.running = false
		return m
	case KindUserAnswers:
		return setAnswer(m, action.Answer, true)
	case KindAnswerTimeout:
		if action.SessionID != m.sessionID {
			return m
		}
		var none A
		return addRandomPq(setAnswer(m, none, false))
	case KindStart, KindUpdateIsi, KindUpdateDuration:
		return m
	default:
		panic(fmt.Sprintf("psat: unhandled action kind %s", action.Kind))
	}
}

func updateIdle[PQ any, A comparable](action Action[A], m Model[PQ, A]) Model[PQ, A] {
	switch action.Kind {
	case KindStart:
		m.sessionID++
		m.running = true
		m.presented = nil
		m.outcomes = nil
		return addRandomPq(m)
	case KindUpdateIsi:
		if v, err := strconv.Atoi(action.Text); err == nil {
			m.isi = v
		}
		return m
	case KindUpdateDuration:
		if v, err := strconv.Atoi(action.Text); err == nil {
			m.duration = v
		}
		return m
	case KindAnswerTimeout, KindUserAnswers, KindManualStop, KindAutomaticStop:
		return m
	default:
		panic(fmt.Sprintf("psat: unhandled action kind %s", action.Kind))
	}
}

// setAnswer scores the current stimulus. ok=false means no answer was given.
func setAnswer[PQ any, A comparable](m Model[PQ, A], answer A, ok bool) Model[PQ, A] {
	expected, derivable := m.key(m.presented)
	if !derivable {
		return m
	}
	switch {
	case !ok:
		return setOutcome(m, Missed)
	case answer == expected:
		return setOutcome(m, Right)
	default:
		return setOutcome(m, Wrong)
	}
}

func setOutcome[PQ any, A comparable](m Model[PQ, A], outcome Outcome) Model[PQ, A] {
	if m.answered {
		return m
	}
	m.answered = true
	m.outcomes = prepend(outcome, m.outcomes)
	m.isi = NextISI(m.isi, m.outcomes)
	return m
}

func addRandomPq[PQ any, A comparable](m Model[PQ, A]) Model[PQ, A] {
	if len(m.pool) == 0 {
		panic("psat: empty stimulus pool")
	}
	idx, seed := m.seed.IntN(len(m.pool))
	m.seed = seed
	m.presented = prepend(m.pool[idx], m.presented)
	m.answered = false
	return m
}
