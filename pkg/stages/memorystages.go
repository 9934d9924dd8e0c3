package stages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/memory"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

// MemoryRetrieval loads prior-interaction context into the run state so
// later routing and prompts can reference it.
type MemoryRetrieval struct {
	store   *memory.Store
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewMemoryRetrieval creates the memory retrieval stage.
func NewMemoryRetrieval(store *memory.Store, logger *observability.StructuredLogger, metrics *observability.Metrics) *MemoryRetrieval {
	return &MemoryRetrieval{
		store:   store,
		logger:  logger.WithComponent("memory"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (m *MemoryRetrieval) Name() domain.Stage { return domain.StageMemoryRetrieval }

// Run looks up the recency window for the query.
func (m *MemoryRetrieval) Run(ctx context.Context, snap state.Snapshot) state.Update {
	memCtx := m.store.Context(snap.Query)
	m.metrics.RecordMemoryOp(ctx, "retrieve", true)
	m.logger.Info(ctx, "memory context retrieved", map[string]interface{}{
		"context_chars": len(memCtx),
	})

	u := state.Update{
		ActivatedStages: []string{string(domain.StageMemoryRetrieval)},
	}
	if memCtx != "" {
		u.MemoryContext = state.StringPtr(memCtx)
	}
	return u
}

// MemoryUpdate persists the completed interaction, including the key
// findings collected across the run.
type MemoryUpdate struct {
	store   *memory.Store
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewMemoryUpdate creates the memory persistence stage.
func NewMemoryUpdate(store *memory.Store, logger *observability.StructuredLogger, metrics *observability.Metrics) *MemoryUpdate {
	return &MemoryUpdate{
		store:   store,
		logger:  logger.WithComponent("memory"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (m *MemoryUpdate) Name() domain.Stage { return domain.StageMemoryUpdate }

// Run appends one memory entry for the run. The stage set is deduplicated
// and sorted so entries are stable across identical runs.
func (m *MemoryUpdate) Run(ctx context.Context, snap state.Snapshot) state.Update {
	findings := collectFindings(snap)

	seen := make(map[string]bool, len(snap.ActivatedStages))
	agents := make([]string, 0, len(snap.ActivatedStages))
	for _, a := range snap.ActivatedStages {
		if !seen[a] {
			seen[a] = true
			agents = append(agents, a)
		}
	}
	sort.Strings(agents)

	m.store.Add(snap.Query, snap.FinalResponse, agents, findings)
	m.metrics.RecordMemoryOp(ctx, "append", true)
	m.logger.Info(ctx, "interaction saved to memory", map[string]interface{}{
		"key_findings": len(findings),
		"agents_used":  agents,
	})

	return state.Update{
		ActivatedStages: []string{string(domain.StageMemoryUpdate)},
	}
}

func collectFindings(snap state.Snapshot) []string {
	findings := []string{}

	if snap.Hypothesis != nil && snap.Hypothesis.Statement != "" {
		statement := snap.Hypothesis.Statement
		if len(statement) > 80 {
			statement = statement[:80]
		}
		findings = append(findings, "Hypothesis: "+statement)
	}
	if snap.Trends != nil && len(snap.Trends.Trends) > 0 {
		top := snap.Trends.Trends
		if len(top) > 3 {
			top = top[:3]
		}
		findings = append(findings, "Trends: "+strings.Join(top, ", "))
	}
	if snap.Gaps != nil && len(snap.Gaps.Opportunities) > 0 {
		top := snap.Gaps.Opportunities
		if len(top) > 3 {
			top = top[:3]
		}
		findings = append(findings, "Opportunities: "+strings.Join(top, ", "))
	}
	if snap.Plan != nil && len(snap.Plan.Steps) > 0 {
		findings = append(findings, fmt.Sprintf("Experiment: %d steps, %s feasibility", len(snap.Plan.Steps), snap.Plan.Feasibility))
	}

	return findings
}
