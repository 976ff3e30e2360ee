// Package psat implements the paced serial addition session engine.
package psat

import "fmt"

// Outcome is the result of a single resolved trial.
type Outcome int

// Trial outcomes.
const (
	Right Outcome = iota
	Wrong
	Missed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Right:
		return "right"
	case Wrong:
		return "wrong"
	case Missed:
		return "missed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	switch o {
	case Right, Wrong, Missed:
		return []byte(o.String()), nil
	default:
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome parses a name produced by Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "right":
		return Right, nil
	case "wrong":
		return Wrong, nil
	case "missed":
		return Missed, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

func isRight(o Outcome) bool {
	return o == Right
}

func isNotRight(o Outcome) bool {
	return o != Right
}

// Summary counts outcomes for reporting.
type Summary struct {
	Right              int
	Wrong              int
	Missed             int
	Total              int
	LongestRightStreak int
}

// Summarize counts outcomes given most-recent-first.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	run := 0
	for _, o := range outcomes {
		switch o {
		case Right:
			s.Right++
			run++
			s.LongestRightStreak = max(s.LongestRightStreak, run)
		case Wrong:
			s.Wrong++
			run = 0
		case Missed:
			s.Missed++
			run = 0
		}
	}
	return s
}

// Accuracy returns the share of right answers, or 0 without trials.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Right) / float64(s.Total)
}
