package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentforge/hypothesis-planner/internal/testutil"
	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

func TestMemoryRetrievalEmptyStoreSetsNothing(t *testing.T) {
	m := NewMemoryRetrieval(newTestStore(t), testutil.NewTestLogger(t), testutil.NewTestMetrics(t))

	update := m.Run(testutil.NewTestContext(t), state.Snapshot{Query: "q"})

	assert.Nil(t, update.MemoryContext)
	assert.Equal(t, []string{string(domain.StageMemoryRetrieval)}, update.ActivatedStages)
}

func TestMemoryRetrievalSurfacesRecentInteractions(t *testing.T) {
	store := newTestStore(t)
	store.Add("prior query", "prior answer", nil, nil)

	m := NewMemoryRetrieval(store, testutil.NewTestLogger(t), testutil.NewTestMetrics(t))
	update := m.Run(testutil.NewTestContext(t), state.Snapshot{Query: "follow-up"})

	require.NotNil(t, update.MemoryContext)
	assert.Equal(t, "Q:prior query->R:prior answer", *update.MemoryContext)
}

func TestMemoryUpdatePersistsFindings(t *testing.T) {
	store := newTestStore(t)
	m := NewMemoryUpdate(store, testutil.NewTestLogger(t), testutil.NewTestMetrics(t))

	snap := state.Snapshot{
		Query:         "graphene battery anodes",
		FinalResponse: "a synthesized answer",
		ActivatedStages: []string{
			"router", "literature_analyst", "synthesizer", "router",
		},
		Hypothesis: &domain.Hypothesis{Statement: "Graphene coatings extend cycle life"},
		Trends:     &domain.TrendAnalysis{Trends: []string{"a", "b", "c", "d"}},
		Gaps:       &domain.GapAnalysis{Opportunities: []string{"x"}},
		Plan:       &domain.ExperimentPlan{Feasibility: domain.FeasibilityHigh, Steps: []string{"s1", "s2"}},
	}
	update := m.Run(testutil.NewTestContext(t), snap)

	assert.Equal(t, []string{string(domain.StageMemoryUpdate)}, update.ActivatedStages)

	require.Equal(t, 1, store.Len())
	entry := store.Entries()[0]
	assert.Equal(t, "graphene battery anodes", entry.Query)
	assert.Equal(t, "a synthesized answer", entry.ResponseSummary)

	// Stage names are deduplicated and sorted.
	assert.Equal(t, []string{"literature_analyst", "router", "synthesizer"}, entry.AgentsUsed)

	assert.Equal(t, []string{
		"Hypothesis: Graphene coatings extend cycle life",
		"Trends: a, b, c",
		"Opportunities: x",
		"Experiment: 2 steps, high feasibility",
	}, entry.KeyFindings)
}

func TestMemoryUpdateTruncatesLongHypothesis(t *testing.T) {
	store := newTestStore(t)
	m := NewMemoryUpdate(store, testutil.NewTestLogger(t), testutil.NewTestMetrics(t))

	long := "Applying a very long hypothesis statement that keeps going well past the eighty character mark for truncation"
	snap := state.Snapshot{
		Query:         "q",
		FinalResponse: "r",
		Hypothesis:    &domain.Hypothesis{Statement: long},
	}
	m.Run(testutil.NewTestContext(t), snap)

	entry := store.Entries()[0]
	require.NotEmpty(t, entry.KeyFindings)
	assert.Equal(t, "Hypothesis: "+long[:80], entry.KeyFindings[0])
}

func TestMemoryUpdateEmptyRunStoresNoFindings(t *testing.T) {
	store := newTestStore(t)
	m := NewMemoryUpdate(store, testutil.NewTestLogger(t), testutil.NewTestMetrics(t))

	m.Run(testutil.NewTestContext(t), state.Snapshot{Query: "q", FinalResponse: "r"})

	entry := store.Entries()[0]
	assert.Empty(t, entry.KeyFindings)
}
