package tools

import (
	"fmt"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// stepPattern maps activity keywords to a PERT (optimistic, most likely,
// pessimistic) estimate in weeks. Patterns are checked in order and the
// first match wins.
type stepPattern struct {
	keywords   []string
	optimistic float64
	likely     float64
	pessimist  float64
}

var stepPatterns = []stepPattern{
	{[]string{"recruit", "participant", "subject"}, 2, 4, 8},
	{[]string{"setup", "install", "configure", "calibrate"}, 1, 2, 4},
	{[]string{"collect", "gather", "measure", "record", "observe"}, 4, 8, 16},
	{[]string{"analyze", "process", "evaluate", "assess"}, 2, 4, 8},
	{[]string{"write", "document", "report", "publish"}, 2, 3, 6},
	{[]string{"train", "learn", "practice", "fine-tune"}, 1, 2, 4},
	{[]string{"test", "trial", "experiment", "run"}, 3, 6, 12},
	{[]string{"develop", "create", "build", "design", "implement"}, 2, 4, 8},
}

// defaultStepWeeks is the expected duration of a step that matches no
// pattern.
const defaultStepWeeks = 2.0

// scheduleBuffer is the multiplier applied to the summed estimate.
const scheduleBuffer = 1.2

// EstimateDuration produces a PERT-style duration estimate over the plan
// steps: each step gets expected = (o + 4m + p) / 6 weeks from the first
// matching pattern, the total carries a 20% buffer, and totals over
// twelve buffered weeks are reported as a month range.
func EstimateDuration(steps []string) domain.DurationEstimate {
	breakdown := make([]domain.StepEstimate, 0, len(steps))
	base := 0.0

	for _, step := range steps {
		weeks := estimateStep(step)
		base += weeks
		breakdown = append(breakdown, domain.StepEstimate{Step: step, Weeks: weeks})
	}

	buffered := base * scheduleBuffer

	var duration string
	if buffered > 12 {
		months := int(buffered / 4)
		upper := int(buffered / 4 * 1.3)
		duration = fmt.Sprintf("%d-%d months", months, upper)
	} else {
		duration = fmt.Sprintf("%d-%d weeks", int(base), int(buffered))
	}

	return domain.DurationEstimate{
		Duration:        duration,
		BaseWeeks:       base,
		WithBufferWeeks: buffered,
		Breakdown:       breakdown,
		Method:          "pert",
	}
}

func estimateStep(step string) float64 {
	lower := strings.ToLower(step)
	for _, p := range stepPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return (p.optimistic + 4*p.likely + p.pessimist) / 6
			}
		}
	}
	return defaultStepWeeks
}
