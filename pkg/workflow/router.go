package workflow

import (
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

// agentAliases maps normalized free-text agent names to canonical stages.
// Models drift in how they name the specialists; this table absorbs the
// variants observed in practice. Keys are stored post-normalization
// (lowercase, no spaces, underscores, or hyphens).
var agentAliases = map[string]domain.Stage{
	// literature-related
	"research":              domain.StageLiteratureAnalyst,
	"researcher":            domain.StageLiteratureAnalyst,
	"researchanalyst":       domain.StageLiteratureAnalyst,
	"researchassistant":     domain.StageLiteratureAnalyst,
	"theoryagent":           domain.StageLiteratureAnalyst,
	"literature":            domain.StageLiteratureAnalyst,
	"literatureanalyst":     domain.StageLiteratureAnalyst,
	"analyst":               domain.StageLiteratureAnalyst,
	"researchagent":         domain.StageLiteratureAnalyst,
	"theoryanalysis":        domain.StageLiteratureAnalyst,
	"researchdesign":        domain.StageLiteratureAnalyst,
	"researchplanningagent": domain.StageLiteratureAnalyst,
	"literaturereview":      domain.StageLiteratureAnalyst,
	"literatureagent":       domain.StageLiteratureAnalyst,

	// hypothesis-related
	"hypothesis":                domain.StageHypothesisGenerator,
	"hypothesisgenerator":       domain.StageHypothesisGenerator,
	"hypothesisdesignagent":     domain.StageHypothesisGenerator,
	"design":                    domain.StageHypothesisGenerator,
	"designer":                  domain.StageHypothesisGenerator,
	"multiagentsystemsagent":    domain.StageHypothesisGenerator,
	"multiagentarchitect":       domain.StageHypothesisGenerator,
	"systemarchitecture":        domain.StageHypothesisGenerator,
	"systemdesignagent":         domain.StageHypothesisGenerator,
	"designagents":              domain.StageHypothesisGenerator,
	"trizexperts":               domain.StageHypothesisGenerator,
	"trizagent":                 domain.StageHypothesisGenerator,
	"architectureagent":         domain.StageHypothesisGenerator,
	"multiagentsystemarchitect": domain.StageHypothesisGenerator,

	// experiment-related
	"experiment":              domain.StageExperimentDesigner,
	"experimentdesigner":      domain.StageExperimentDesigner,
	"implementation":          domain.StageExperimentDesigner,
	"planner":                 domain.StageExperimentDesigner,
	"researchplanner":         domain.StageExperimentDesigner,
	"memorysystemdesigner":    domain.StageExperimentDesigner,
	"memorymanagementagent":   domain.StageExperimentDesigner,
	"graphdeveloperagent":     domain.StageExperimentDesigner,
	"errorhandlingspecialist": domain.StageExperimentDesigner,
	"implementationagent":     domain.StageExperimentDesigner,
	"codeagent":               domain.StageExperimentDesigner,
	"developeragent":          domain.StageExperimentDesigner,
	"practicalagent":          domain.StageExperimentDesigner,
}

// NormalizeAgentName maps a free-text agent name onto a canonical stage.
// Normalization lowercases the name and strips spaces, underscores, and
// hyphens before the alias lookup.
func NormalizeAgentName(name string) (domain.Stage, bool) {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, "-", "")

	stage, ok := agentAliases[normalized]
	return stage, ok
}

// normalizeTargets resolves every target agent name to its canonical
// stage, dropping the unrecognized ones.
func normalizeTargets(targets []string) map[domain.Stage]bool {
	set := make(map[domain.Stage]bool, len(targets))
	for _, t := range targets {
		if stage, ok := NormalizeAgentName(t); ok {
			set[stage] = true
		}
	}
	return set
}

// byQueryType is the shared routing fallback: conceptual, design, and
// planning queries start at the literature analyst; implementation
// queries go straight to the experiment designer.
func byQueryType(qt domain.QueryType) domain.Stage {
	if qt == domain.QueryTypeImplementation {
		return domain.StageExperimentDesigner
	}
	return domain.StageLiteratureAnalyst
}

// nextAfterRouter routes the classified query. A memory-needing query
// detours through retrieval first.
func nextAfterRouter(snap state.Snapshot) domain.Stage {
	if snap.Classification == nil {
		return domain.StageLiteratureAnalyst
	}
	if snap.Classification.NeedsMemory {
		return domain.StageMemoryRetrieval
	}
	return byQueryType(snap.Classification.QueryType)
}

// nextAfterMemory routes on the classifier's suggested agents. Matched
// aliases win in a fixed precedence order (literature, then hypothesis,
// then experiment); with no match the query-type fallback applies. The
// two layers together absorb model naming drift without ever stalling a
// run.
func nextAfterMemory(snap state.Snapshot) domain.Stage {
	if snap.Classification == nil {
		return domain.StageLiteratureAnalyst
	}

	targets := normalizeTargets(snap.Classification.TargetAgents)
	switch {
	case targets[domain.StageLiteratureAnalyst]:
		return domain.StageLiteratureAnalyst
	case targets[domain.StageHypothesisGenerator]:
		return domain.StageHypothesisGenerator
	case targets[domain.StageExperimentDesigner]:
		return domain.StageExperimentDesigner
	}
	return byQueryType(snap.Classification.QueryType)
}

// nextAfterLiterature continues into hypothesis generation for design and
// planning queries; conceptual queries go straight to synthesis.
func nextAfterLiterature(snap state.Snapshot) domain.Stage {
	if snap.Classification != nil {
		switch snap.Classification.QueryType {
		case domain.QueryTypeDesign, domain.QueryTypePlanning:
			return domain.StageHypothesisGenerator
		}
	}
	return domain.StageSynthesizer
}

// nextAfterHypothesis continues into experiment design only for full
// planning runs.
func nextAfterHypothesis(snap state.Snapshot) domain.Stage {
	if snap.Classification != nil && snap.Classification.QueryType == domain.QueryTypePlanning {
		return domain.StageExperimentDesigner
	}
	return domain.StageSynthesizer
}

// NextStage evaluates the transition rules after a completed stage. The
// graph is a DAG: every path reaches the terminal stage in at most seven
// transitions.
func NextStage(completed domain.Stage, snap state.Snapshot) domain.Stage {
	switch completed {
	case domain.StageRouter:
		return nextAfterRouter(snap)
	case domain.StageMemoryRetrieval:
		return nextAfterMemory(snap)
	case domain.StageLiteratureAnalyst:
		return nextAfterLiterature(snap)
	case domain.StageHypothesisGenerator:
		return nextAfterHypothesis(snap)
	case domain.StageExperimentDesigner:
		return domain.StageSynthesizer
	case domain.StageSynthesizer:
		return domain.StageMemoryUpdate
	case domain.StageMemoryUpdate:
		return domain.StageTerminal
	}
	return domain.StageTerminal
}
