package stages

import (
	"context"
	"fmt"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/recovery"
	"github.com/agentforge/hypothesis-planner/pkg/state"
	"github.com/agentforge/hypothesis-planner/pkg/tools"
)

const experimentSystemPrompt = `You are an experiment designer specializing in research experiment planning.

Your responsibilities:
1. Design concrete experiments to test hypotheses
2. Assess feasibility of proposed experiments
3. Estimate required resources and duration
4. Identify potential challenges and mitigation strategies

When designing experiments:
- Be practical and specific
- Consider available resources
- Plan for 3-7 concrete steps
- Account for potential failures

Respond with valid JSON only, with fields: feasibility (high/medium/low), steps (list), resources (list), duration, challenges (list).`

// ExperimentDesigner plans an experiment for the current hypothesis and
// scores it with the deterministic feasibility and duration estimators.
type ExperimentDesigner struct {
	model   domain.ModelClient
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewExperimentDesigner creates the experiment design stage.
func NewExperimentDesigner(model domain.ModelClient, logger *observability.StructuredLogger, metrics *observability.Metrics) *ExperimentDesigner {
	return &ExperimentDesigner{
		model:   model,
		logger:  logger.WithComponent("experiment_designer"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (e *ExperimentDesigner) Name() domain.Stage { return domain.StageExperimentDesigner }

// Run designs the experiment. The fallback plan carries a fixed 7/medium
// feasibility instead of going through the scorer.
func (e *ExperimentDesigner) Run(ctx context.Context, snap state.Snapshot) state.Update {
	statement := fmt.Sprintf("Test the approach: %s", snap.Query)
	if snap.Hypothesis != nil && snap.Hypothesis.Statement != "" {
		statement = snap.Hypothesis.Statement
	}

	prompt := fmt.Sprintf(`Design an experiment to test this hypothesis.

Hypothesis: %s
Research context: %s

Create a practical experiment plan with:
- Feasibility assessment (high/medium/low)
- 3-7 exact steps
- Required resources
- Estimated duration
- Potential challenges`, statement, snap.Query)

	plan, err := recovery.Recover(ctx, e.model, experimentSystemPrompt, prompt, domain.ParseExperimentPlan)
	if err != nil {
		e.logger.Warn(ctx, "experiment design failed, using fallback",
			map[string]interface{}{"error": err.Error()})
		e.metrics.RecordRecoveryFallback(ctx, string(domain.StageExperimentDesigner))

		plan = domain.ExperimentPlan{
			Feasibility: domain.FeasibilityMedium,
			Steps: []string{
				"Define experimental setup",
				"Prepare datasets",
				"Implement approach",
				"Run experiments",
				"Analyze results",
			},
			Resources:  []string{"Computing resources", "Datasets", "Evaluation metrics"},
			Duration:   "4-6 weeks",
			Challenges: []string{"Data availability", "Computational constraints"},
		}
		feasibility := domain.FeasibilityScore{
			Category: domain.FeasibilityMedium,
			Score:    7,
			Reason:   "fallback plan",
		}
		duration := tools.EstimateDuration(plan.Steps)
		return state.Update{
			Plan:            &plan,
			Feasibility:     &feasibility,
			Duration:        &duration,
			ActivatedStages: []string{string(domain.StageExperimentDesigner)},
			Messages:        []string{"Experiment: fallback"},
		}
	}

	feasibility := tools.Feasibility(plan)
	duration := tools.EstimateDuration(plan.Steps)
	e.logger.Info(ctx, "experiment designed", map[string]interface{}{
		"steps":       len(plan.Steps),
		"feasibility": string(feasibility.Category),
		"duration":    duration.Duration,
	})

	return state.Update{
		Plan:            &plan,
		Feasibility:     &feasibility,
		Duration:        &duration,
		ActivatedStages: []string{string(domain.StageExperimentDesigner)},
		Messages:        []string{fmt.Sprintf("Experiment: %d steps", len(plan.Steps))},
	}
}
