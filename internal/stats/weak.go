package stats

import (
	"sort"

	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/psat"
)

// StimulusAggregate counts outcomes per presented stimulus.
type StimulusAggregate struct {
	Stimulus int
	Right    int
	Wrong    int
	Missed   int
}

// Accuracy returns the share of right outcomes.
func (a StimulusAggregate) Accuracy() float64 {
	acc, _ := SessionMetrics(a.Right, a.Wrong, a.Missed)
	return acc
}

// WeakStimuli returns up to top stimuli ordered by lowest accuracy. Ties are
// broken by stimulus value. Trials with an unknown outcome are skipped.
func WeakStimuli(trials map[int64][]model.Trial, top int) []StimulusAggregate {
	byStimulus := map[int]*StimulusAggregate{}
	for _, list := range trials {
		for _, tr := range list {
			outcome, err := psat.ParseOutcome(tr.Outcome)
			if err != nil {
				continue
			}
			agg, ok := byStimulus[tr.Stimulus]
			if !ok {
				agg = &StimulusAggregate{Stimulus: tr.Stimulus}
				byStimulus[tr.Stimulus] = agg
			}
			switch outcome {
			case psat.Right:
				agg.Right++
			case psat.Wrong:
				agg.Wrong++
			case psat.Missed:
				agg.Missed++
			}
		}
	}
	out := make([]StimulusAggregate, 0, len(byStimulus))
	for _, agg := range byStimulus {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Accuracy(), out[j].Accuracy()
		if ai == aj {
			return out[i].Stimulus < out[j].Stimulus
		}
		return ai < aj
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}
