package psat

const (
	// StreakSize is the run of equal-polarity outcomes that moves the ISI.
	StreakSize = 4
	// PacingStep is the ISI change in milliseconds per adjustment.
	PacingStep = 100
)

// StreakLength returns the length of the prefix of outcomes satisfying pred.
func StreakLength(pred func(Outcome) bool, outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !pred(o) {
			break
		}
		n++
	}
	return n
}

func streakDelta(pred func(Outcome) bool, outcomes []Outcome) int {
	n := StreakLength(pred, outcomes)
	if n > 0 && n%StreakSize == 0 {
		return 1
	}
	return 0
}

// Direction is +1 after every StreakSize-th consecutive miss or wrong answer,
// -1 after every StreakSize-th consecutive right answer, 0 otherwise.
// outcomes are most-recent-first.
func Direction(outcomes []Outcome) int {
	return streakDelta(isNotRight, outcomes) - streakDelta(isRight, outcomes)
}

// NextISI applies one pacing step to isi for the given outcome history.
func NextISI(isi int, outcomes []Outcome) int {
	return isi + Direction(outcomes)*PacingStep
}
