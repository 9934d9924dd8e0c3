// Package workflow drives a query through the planning graph: the router
// classifies, conditional transitions pick the analysis stages, and every
// run ends with synthesis and a memory write. Execution is sequential and
// step-at-a-time; each stage's update is applied atomically, so the run
// can be aborted cleanly between stages.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/memory"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/stages"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

// PlannerGraph wires the stages together and executes runs.
type PlannerGraph struct {
	nodes     map[domain.Stage]stages.Stage
	archive   *state.Archive
	telemetry *observability.Telemetry
	logger    *observability.StructuredLogger
	metrics   *observability.Metrics
}

// NewPlannerGraph builds the graph over its collaborators: the model
// client behind every stage, the literature searcher, and the memory
// store shared by the router and the memory stages.
func NewPlannerGraph(
	model domain.ModelClient,
	searcher domain.LiteratureSearcher,
	store *memory.Store,
	telemetry *observability.Telemetry,
	logger *observability.StructuredLogger,
	metrics *observability.Metrics,
) *PlannerGraph {
	nodes := map[domain.Stage]stages.Stage{
		domain.StageRouter:              stages.NewClassifier(model, store, logger, metrics),
		domain.StageMemoryRetrieval:     stages.NewMemoryRetrieval(store, logger, metrics),
		domain.StageLiteratureAnalyst:   stages.NewLiteratureAnalyst(model, searcher, telemetry, logger, metrics),
		domain.StageHypothesisGenerator: stages.NewHypothesisGenerator(model, logger, metrics),
		domain.StageExperimentDesigner:  stages.NewExperimentDesigner(model, logger, metrics),
		domain.StageSynthesizer:         stages.NewSynthesizer(model, logger, metrics),
		domain.StageMemoryUpdate:        stages.NewMemoryUpdate(store, logger, metrics),
	}

	return &PlannerGraph{
		nodes:     nodes,
		archive:   state.NewArchive(),
		telemetry: telemetry,
		logger:    logger.WithComponent("workflow"),
		metrics:   metrics,
	}
}

// Archive returns the in-memory history of completed runs.
func (g *PlannerGraph) Archive() *state.Archive { return g.archive }

// Execute runs one query through the graph and returns the final state
// snapshot. On a completed run the snapshot always carries a non-empty
// final response; the returned error is non-nil only when the context is
// cancelled between stages, in which case the snapshot holds whatever the
// run produced up to the abort point.
func (g *PlannerGraph) Execute(ctx context.Context, query string) (state.Snapshot, error) {
	runID := uuid.NewString()
	ctx, span := g.telemetry.StartQueryRun(ctx, runID, query)
	defer span.End()

	g.metrics.RecordQueryStart(ctx, "run")
	started := time.Now()

	st := state.New(runID, query)
	g.logger.Info(ctx, "run started", map[string]interface{}{
		"run_id": runID,
	})

	current := domain.StageRouter
	for current != domain.StageTerminal {
		if err := ctx.Err(); err != nil {
			g.metrics.RecordQueryComplete(ctx, time.Since(started), "aborted")
			g.logger.Warn(ctx, "run aborted between stages", map[string]interface{}{
				"run_id": runID,
				"stage":  string(current),
			})
			return st.Snapshot(), fmt.Errorf("run %s aborted before %s: %w", runID, current, err)
		}

		node := g.nodes[current]
		stageStart := time.Now()
		var update state.Update
		g.telemetry.InstrumentWorkflowNode(ctx, string(current), func(ctx context.Context) error {
			update = node.Run(ctx, st.Snapshot())
			return nil
		})
		g.metrics.RecordStage(ctx, string(current), time.Since(stageStart))

		st.Apply(update)
		current = NextStage(current, st.Snapshot())
	}

	final := st.Snapshot()
	if err := g.archive.Save(final); err != nil {
		g.logger.Warn(ctx, "failed to archive run", map[string]interface{}{
			"run_id": runID, "error": err.Error(),
		})
	}

	g.metrics.RecordQueryComplete(ctx, time.Since(started), "success")
	g.logger.Info(ctx, "run complete", map[string]interface{}{
		"run_id":         runID,
		"stages":         final.ActivatedStages,
		"response_chars": len(final.FinalResponse),
	})

	return final, nil
}
