package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

func classified(qt domain.QueryType, needsMemory bool, targets ...string) state.Snapshot {
	return state.Snapshot{
		Classification: &domain.Classification{
			QueryType:    qt,
			Confidence:   domain.ConfidenceHigh,
			NeedsMemory:  needsMemory,
			TargetAgents: targets,
		},
	}
}

func TestNormalizeAgentNameVariants(t *testing.T) {
	tests := []struct {
		name string
		want domain.Stage
	}{
		{"research_analyst", domain.StageLiteratureAnalyst},
		{"Research Assistant", domain.StageLiteratureAnalyst},
		{"literature-review", domain.StageLiteratureAnalyst},
		{"Theory Agent", domain.StageLiteratureAnalyst},
		{"literature_analyst", domain.StageLiteratureAnalyst},
		{"hypothesis generator", domain.StageHypothesisGenerator},
		{"TRIZ Agent", domain.StageHypothesisGenerator},
		{"Multi-Agent System Architect", domain.StageHypothesisGenerator},
		{"designer", domain.StageHypothesisGenerator},
		{"experiment_designer", domain.StageExperimentDesigner},
		{"Implementation Agent", domain.StageExperimentDesigner},
		{"planner", domain.StageExperimentDesigner},
		{"Code Agent", domain.StageExperimentDesigner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAgentName(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAgentNameIsIdempotentOnCanonicalNames(t *testing.T) {
	for _, canonical := range []domain.Stage{
		domain.StageLiteratureAnalyst,
		domain.StageHypothesisGenerator,
		domain.StageExperimentDesigner,
	} {
		got, ok := NormalizeAgentName(string(canonical))
		assert.True(t, ok, "canonical name %q must resolve", canonical)
		assert.Equal(t, canonical, got)
	}
}

func TestNormalizeAgentNameUnknown(t *testing.T) {
	_, ok := NormalizeAgentName("quantum oracle")
	assert.False(t, ok)
}

func TestNextAfterRouterMemoryFirst(t *testing.T) {
	snap := classified(domain.QueryTypeConceptual, true)
	assert.Equal(t, domain.StageMemoryRetrieval, NextStage(domain.StageRouter, snap))
}

func TestNextAfterRouterQueryTypeBranching(t *testing.T) {
	tests := []struct {
		qt   domain.QueryType
		want domain.Stage
	}{
		{domain.QueryTypeConceptual, domain.StageLiteratureAnalyst},
		{domain.QueryTypeDesign, domain.StageLiteratureAnalyst},
		{domain.QueryTypePlanning, domain.StageLiteratureAnalyst},
		{domain.QueryTypeImplementation, domain.StageExperimentDesigner},
	}
	for _, tt := range tests {
		snap := classified(tt.qt, false)
		assert.Equal(t, tt.want, NextStage(domain.StageRouter, snap), "query type %s", tt.qt)
	}
}

func TestNextAfterRouterNilClassification(t *testing.T) {
	assert.Equal(t, domain.StageLiteratureAnalyst, NextStage(domain.StageRouter, state.Snapshot{}))
}

func TestNextAfterMemoryAliasMatch(t *testing.T) {
	snap := classified(domain.QueryTypeImplementation, true, "Hypothesis Design Agent")
	assert.Equal(t, domain.StageHypothesisGenerator, NextStage(domain.StageMemoryRetrieval, snap))
}

func TestNextAfterMemoryPrecedenceOrder(t *testing.T) {
	// Literature wins over experiment when both aliases appear.
	snap := classified(domain.QueryTypeImplementation, true, "Implementation Agent", "Research Assistant")
	assert.Equal(t, domain.StageLiteratureAnalyst, NextStage(domain.StageMemoryRetrieval, snap))

	// Hypothesis wins over experiment.
	snap = classified(domain.QueryTypeImplementation, true, "Code Agent", "TRIZ Agent")
	assert.Equal(t, domain.StageHypothesisGenerator, NextStage(domain.StageMemoryRetrieval, snap))
}

func TestNextAfterMemoryFallsBackToQueryType(t *testing.T) {
	snap := classified(domain.QueryTypeImplementation, true, "completely unknown agent")
	assert.Equal(t, domain.StageExperimentDesigner, NextStage(domain.StageMemoryRetrieval, snap))

	snap = classified(domain.QueryTypeConceptual, true)
	assert.Equal(t, domain.StageLiteratureAnalyst, NextStage(domain.StageMemoryRetrieval, snap))
}

func TestNextAfterLiterature(t *testing.T) {
	assert.Equal(t, domain.StageSynthesizer,
		NextStage(domain.StageLiteratureAnalyst, classified(domain.QueryTypeConceptual, false)))
	assert.Equal(t, domain.StageHypothesisGenerator,
		NextStage(domain.StageLiteratureAnalyst, classified(domain.QueryTypeDesign, false)))
	assert.Equal(t, domain.StageHypothesisGenerator,
		NextStage(domain.StageLiteratureAnalyst, classified(domain.QueryTypePlanning, false)))
}

func TestNextAfterHypothesis(t *testing.T) {
	assert.Equal(t, domain.StageExperimentDesigner,
		NextStage(domain.StageHypothesisGenerator, classified(domain.QueryTypePlanning, false)))
	assert.Equal(t, domain.StageSynthesizer,
		NextStage(domain.StageHypothesisGenerator, classified(domain.QueryTypeDesign, false)))
}

func TestUnconditionalTransitions(t *testing.T) {
	snap := state.Snapshot{}
	assert.Equal(t, domain.StageSynthesizer, NextStage(domain.StageExperimentDesigner, snap))
	assert.Equal(t, domain.StageMemoryUpdate, NextStage(domain.StageSynthesizer, snap))
	assert.Equal(t, domain.StageTerminal, NextStage(domain.StageMemoryUpdate, snap))
}

func TestEveryPathReachesTerminal(t *testing.T) {
	// Exhaustive walk over every classification shape: no cycle, at most
	// five executed stages before terminal.
	for _, qt := range []domain.QueryType{
		domain.QueryTypeConceptual, domain.QueryTypeDesign,
		domain.QueryTypeImplementation, domain.QueryTypePlanning,
	} {
		for _, needsMemory := range []bool{false, true} {
			snap := classified(qt, needsMemory, "research_analyst")
			current := domain.StageRouter
			steps := 0
			for current != domain.StageTerminal {
				current = NextStage(current, snap)
				steps++
				if steps > 7 {
					t.Fatalf("qt=%s mem=%v: no terminal after %d transitions", qt, needsMemory, steps)
				}
			}
		}
	}
}
