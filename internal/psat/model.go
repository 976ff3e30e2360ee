package psat

import (
	"errors"
	"fmt"
)

// Key derives the expected answer from the presented stimuli, most-recent-first.
// It reports false when no answer can be derived yet.
type Key[PQ any, A any] func(presented []PQ) (A, bool)

// Configuration errors returned by New.
var (
	ErrEmptyPool = errors.New("stimulus pool is empty")
	ErrNilKey    = errors.New("answer key is nil")
)

// ConfigError reports an invalid model configuration.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds the values a Model is constructed from.
type Config[PQ any, A any] struct {
	Key      Key[PQ, A]
	Pool     []PQ
	ISI      int // milliseconds
	Duration int // minutes
	Seed     Seed
}

// Model is the complete session state. It is a value: Update returns a new
// Model and never mutates the one it was given.
type Model[PQ any, A comparable] struct {
	key       Key[PQ, A]
	pool      []PQ
	answered  bool
	running   bool
	presented []PQ
	isi       int
	sessionID SessionID
	duration  int
	seed      Seed
	log       []LogEntry[A]
	outcomes  []Outcome
}

// New validates cfg and returns an idle model.
func New[PQ any, A comparable](cfg Config[PQ, A]) (Model[PQ, A], error) {
	if cfg.Key == nil {
		return Model[PQ, A]{}, &ConfigError{Field: "key", Err: ErrNilKey}
	}
	if len(cfg.Pool) == 0 {
		return Model[PQ, A]{}, &ConfigError{Field: "pool", Err: ErrEmptyPool}
	}
	return Model[PQ, A]{
		key:      cfg.Key,
		pool:     append([]PQ(nil), cfg.Pool...),
		answered: true,
		isi:      cfg.ISI,
		duration: cfg.Duration,
		seed:     cfg.Seed,
	}, nil
}

// Running reports whether a session is active.
func (m Model[PQ, A]) Running() bool { return m.running }

// Answered reports whether the current stimulus has been resolved.
func (m Model[PQ, A]) Answered() bool { return m.answered }

// ISI returns the inter-stimulus interval in milliseconds.
func (m Model[PQ, A]) ISI() int { return m.isi }

// Duration returns the configured session length in minutes.
func (m Model[PQ, A]) Duration() int { return m.duration }

// SessionID returns the current session epoch.
func (m Model[PQ, A]) SessionID() SessionID { return m.sessionID }

// Seed returns the current random state.
func (m Model[PQ, A]) Seed() Seed { return m.seed }

// Pool returns a copy of the candidate stimuli.
func (m Model[PQ, A]) Pool() []PQ { return append([]PQ(nil), m.pool...) }

// Presented returns a copy of the presented stimuli, most-recent-first.
func (m Model[PQ, A]) Presented() []PQ { return append([]PQ(nil), m.presented...) }

// Outcomes returns a copy of the recorded outcomes, most-recent-first.
func (m Model[PQ, A]) Outcomes() []Outcome { return append([]Outcome(nil), m.outcomes...) }

// Log returns a copy of every processed action, most-recent-first.
func (m Model[PQ, A]) Log() []LogEntry[A] { return append([]LogEntry[A](nil), m.log...) }

// OutcomeCount returns the number of resolved trials in the session.
func (m Model[PQ, A]) OutcomeCount() int { return len(m.outcomes) }

// LastOutcome returns the most recently recorded outcome.
func (m Model[PQ, A]) LastOutcome() (Outcome, bool) {
	if len(m.outcomes) == 0 {
		return 0, false
	}
	return m.outcomes[0], true
}

// Current returns the most recently presented stimulus.
func (m Model[PQ, A]) Current() (PQ, bool) {
	if len(m.presented) == 0 {
		var zero PQ
		return zero, false
	}
	return m.presented[0], true
}

// Expected returns the answer the key derives from the presented stimuli.
func (m Model[PQ, A]) Expected() (A, bool) {
	return m.key(m.presented)
}

func prepend[T any](v T, s []T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}
