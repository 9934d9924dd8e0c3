package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDurationUnmatchedSteps(t *testing.T) {
	est := EstimateDuration([]string{"ponder deeply", "ruminate further"})

	assert.Equal(t, 4.0, est.BaseWeeks)
	assert.InDelta(t, 4.8, est.WithBufferWeeks, 1e-9)
	assert.Equal(t, "4-4 weeks", est.Duration)
	assert.Len(t, est.Breakdown, 2)
	assert.Equal(t, "pert", est.Method)
}

func TestEstimateDurationPatternMatching(t *testing.T) {
	// recruit: (2 + 4*4 + 8) / 6 ≈ 4.33
	// collect: (4 + 4*8 + 16) / 6 = 8.67
	// analyze: (2 + 4*4 + 8) / 6 ≈ 4.33
	est := EstimateDuration([]string{
		"Recruit study participants",
		"Collect sensor measurements",
		"Analyze the resulting data",
	})

	assert.InDelta(t, 17.33, est.BaseWeeks, 0.01)
	assert.InDelta(t, 20.8, est.WithBufferWeeks, 0.01)
	// Over twelve buffered weeks switches to a month range:
	// int(20.8/4)=5 to int(20.8/4*1.3)=6.
	assert.Equal(t, "5-6 months", est.Duration)
}

func TestEstimateDurationFirstPatternWins(t *testing.T) {
	// "test" appears before "develop" in the pattern order, so a step
	// mentioning both gets the test estimate: (3 + 4*6 + 12) / 6 = 6.5.
	est := EstimateDuration([]string{"Test the developed prototype"})

	assert.InDelta(t, 6.5, est.BaseWeeks, 1e-9)
	assert.Equal(t, "6-7 weeks", est.Duration)
}

func TestEstimateDurationEmptyPlan(t *testing.T) {
	est := EstimateDuration(nil)

	assert.Zero(t, est.BaseWeeks)
	assert.Equal(t, "0-0 weeks", est.Duration)
	assert.Empty(t, est.Breakdown)
}
