package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/recovery"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

const synthesizerSystemPrompt = "Synthesize multi-stage research findings into a clear, comprehensive response."

// Synthesizer composes the final response from whatever the earlier
// stages produced. When the model fails after retries, the labeled parts
// themselves become the response; the run never ends without one.
type Synthesizer struct {
	model   domain.ModelClient
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewSynthesizer creates the synthesis stage.
func NewSynthesizer(model domain.ModelClient, logger *observability.StructuredLogger, metrics *observability.Metrics) *Synthesizer {
	return &Synthesizer{
		model:   model,
		logger:  logger.WithComponent("synthesizer"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (s *Synthesizer) Name() domain.Stage { return domain.StageSynthesizer }

// Run assembles the labeled parts in fixed field order and asks the model
// for free-text prose over them.
func (s *Synthesizer) Run(ctx context.Context, snap state.Snapshot) state.Update {
	parts := assembleParts(snap)

	response, err := recovery.CompleteWithRetry(ctx, s.model, synthesizerSystemPrompt, strings.Join(parts, "\n"))
	if err != nil || response == "" {
		if err != nil {
			s.logger.Warn(ctx, "synthesis failed, returning raw parts",
				map[string]interface{}{"error": err.Error()})
		}
		s.metrics.RecordRecoveryFallback(ctx, string(domain.StageSynthesizer))
		response = strings.Join(parts, "\n")
	}

	s.logger.Info(ctx, "response synthesized", map[string]interface{}{
		"response_chars": len(response),
		"parts":          len(parts),
	})

	return state.Update{
		FinalResponse:   state.StringPtr(response),
		ActivatedStages: []string{string(domain.StageSynthesizer)},
	}
}

// assembleParts builds the labeled findings list. Part order is fixed;
// absent state fields are skipped, never substituted.
func assembleParts(snap state.Snapshot) []string {
	parts := []string{fmt.Sprintf("Query: %s", snap.Query)}

	if snap.Classification != nil {
		parts = append(parts, fmt.Sprintf("Query type: %s", snap.Classification.QueryType))
	}
	if snap.Trends != nil {
		parts = append(parts, fmt.Sprintf("Trends: %s", strings.Join(snap.Trends.Trends, ", ")))
	}
	if snap.Gaps != nil {
		parts = append(parts, fmt.Sprintf("Opportunities: %s", strings.Join(snap.Gaps.Opportunities, ", ")))
	}
	if snap.Hypothesis != nil {
		parts = append(parts, fmt.Sprintf("Hypothesis: %s", snap.Hypothesis.Statement))
		parts = append(parts, fmt.Sprintf("TRIZ principles: %s", strings.Join(snap.Hypothesis.TRIZPrinciples, ", ")))
		score := snap.Hypothesis.NoveltyScore
		if snap.Novelty != nil {
			score = snap.Novelty.Score
		}
		parts = append(parts, fmt.Sprintf("Novelty score: %d/10", score))
	}
	if snap.Plan != nil {
		parts = append(parts, fmt.Sprintf("Experiment: %d steps, Duration: %s", len(snap.Plan.Steps), snap.Plan.Duration))
		feasibility := string(snap.Plan.Feasibility)
		if snap.Feasibility != nil {
			feasibility = string(snap.Feasibility.Category)
		}
		parts = append(parts, fmt.Sprintf("Feasibility: %s", feasibility))
	}

	return parts
}
