package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// expensiveResources are equipment keywords that each cost two points of
// feasibility when they appear in a plan's resource list.
var expensiveResources = []string{
	"mri", "fmri", "supercomputer", "quantum computer", "gene sequencing",
	"particle accelerator", "satellite", "a100", "h100", "cluster",
}

var numberRe = regexp.MustCompile(`\d+`)

// Feasibility scores an experiment plan deterministically, starting from
// a perfect 10 and deducting for expensive equipment, long timelines,
// many steps, and many anticipated challenges.
func Feasibility(plan domain.ExperimentPlan) domain.FeasibilityScore {
	score := 10
	details := []string{}

	resources := strings.ToLower(strings.Join(plan.Resources, " "))
	for _, kw := range expensiveResources {
		if strings.Contains(resources, kw) {
			score -= 2
			details = append(details, fmt.Sprintf("expensive resource: %s (-2)", kw))
		}
	}

	duration := strings.ToLower(plan.Duration)
	if strings.Contains(duration, "year") {
		if n, ok := firstNumber(duration); ok {
			if n > 2 {
				score -= 3
				details = append(details, "multi-year duration (-3)")
			} else if n > 1 {
				score -= 1
				details = append(details, "duration over one year (-1)")
			}
		}
	} else if strings.Contains(duration, "month") {
		if n, ok := firstNumber(duration); ok && n > 6 {
			score -= 2
			details = append(details, "duration over six months (-2)")
		}
	}

	if len(plan.Steps) > 7 {
		score -= 1
		details = append(details, fmt.Sprintf("%d steps (-1)", len(plan.Steps)))
	}
	if len(plan.Challenges) > 4 {
		score -= 1
		details = append(details, fmt.Sprintf("%d challenges (-1)", len(plan.Challenges)))
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	category := domain.FeasibilityLow
	switch {
	case score >= 7:
		category = domain.FeasibilityHigh
	case score >= 4:
		category = domain.FeasibilityMedium
	}

	return domain.FeasibilityScore{
		Category: category,
		Score:    score,
		Details:  details,
		Reason:   fmt.Sprintf("score %d/10 from %d deductions", score, len(details)),
	}
}

func firstNumber(s string) (int, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
