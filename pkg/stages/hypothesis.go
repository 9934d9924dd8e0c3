package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/recovery"
	"github.com/agentforge/hypothesis-planner/pkg/state"
	"github.com/agentforge/hypothesis-planner/pkg/tools"
)

const hypothesisSystemPrompt = `You are a hypothesis generator specializing in creative research hypothesis formulation.

Your responsibilities:
1. Generate novel research hypotheses using TRIZ methodology
2. Assess hypothesis novelty and originality
3. Provide clear rationale for hypotheses
4. Ensure hypotheses are specific and testable

Generate hypotheses that are creative yet grounded in research evidence.
Respond with valid JSON only, with fields: statement, triz_principles (list), rationale, novelty_score (1-10).`

// HypothesisGenerator turns trends and opportunities into a testable
// hypothesis, then scores its novelty against the retrieved papers.
type HypothesisGenerator struct {
	model   domain.ModelClient
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewHypothesisGenerator creates the hypothesis generation stage.
func NewHypothesisGenerator(model domain.ModelClient, logger *observability.StructuredLogger, metrics *observability.Metrics) *HypothesisGenerator {
	return &HypothesisGenerator{
		model:   model,
		logger:  logger.WithComponent("hypothesis_generator"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (h *HypothesisGenerator) Name() domain.Stage { return domain.StageHypothesisGenerator }

// Run generates a hypothesis. The heuristic novelty score is computed on
// both the success and the fallback path, from whatever papers the run
// has collected.
func (h *HypothesisGenerator) Run(ctx context.Context, snap state.Snapshot) state.Update {
	trends := []string{"Emerging research"}
	if snap.Trends != nil && len(snap.Trends.Trends) > 0 {
		trends = snap.Trends.Trends
	}
	if len(trends) > 3 {
		trends = trends[:3]
	}

	opportunities := []string{"Novel approaches"}
	if snap.Gaps != nil && len(snap.Gaps.Opportunities) > 0 {
		opportunities = snap.Gaps.Opportunities
	}
	if len(opportunities) > 3 {
		opportunities = opportunities[:3]
	}

	prompt := fmt.Sprintf(`Generate a research hypothesis using TRIZ methodology.

Research question: %s

Current trends: %s
Research opportunities: %s

TRIZ Principles to consider: %s

Create a specific, testable hypothesis with:
- A clear statement (minimum 20 characters)
- Which TRIZ principles apply
- Rationale for why this hypothesis matters
- Novelty score (1-10)`,
		snap.Query,
		strings.Join(trends, ", "),
		strings.Join(opportunities, ", "),
		strings.Join(tools.TRIZPrinciples[:5], ", "))

	hypothesis, err := recovery.Recover(ctx, h.model, hypothesisSystemPrompt, prompt, domain.ParseHypothesis)
	if err != nil {
		h.logger.Warn(ctx, "hypothesis generation failed, using fallback",
			map[string]interface{}{"error": err.Error()})
		h.metrics.RecordRecoveryFallback(ctx, string(domain.StageHypothesisGenerator))

		hypothesis = domain.Hypothesis{
			Statement:      fmt.Sprintf("Applying %s principle to %s will improve research outcomes", tools.TRIZPrinciples[0], snap.Query),
			TRIZPrinciples: append([]string{}, tools.TRIZPrinciples[:2]...),
			Rationale:      "Addresses identified research gaps through systematic innovation",
			NoveltyScore:   6,
		}
	}

	novelty := tools.Novelty(hypothesis.Statement, snap.Papers)
	h.logger.Info(ctx, "hypothesis generated", map[string]interface{}{
		"novelty_score":  novelty.Score,
		"novelty_method": novelty.Method,
		"fallback":       err != nil,
	})

	return state.Update{
		Hypothesis:      &hypothesis,
		Novelty:         &novelty,
		ActivatedStages: []string{string(domain.StageHypothesisGenerator)},
		Messages:        []string{fmt.Sprintf("Hypothesis: novelty %d", novelty.Score)},
	}
}
