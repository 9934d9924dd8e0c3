package stages

import (
	"context"
	"fmt"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/memory"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/recovery"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

const classifierSystemPrompt = `You are the routing classifier of a research hypothesis planner.

Your role is to analyze user queries and classify them to route to the appropriate specialist stages.

Query Types:
- conceptual: Theoretical questions, concepts, comparisons
- design: Architecture questions, hypothesis design, methodology questions
- implementation: Code, experiments, practical implementation questions
- planning: Full workflow requests needing all specialists

Target Agents:
- literature_analyst: For literature review, trend analysis, gap identification
- hypothesis_generator: For hypothesis creation, TRIZ methodology, novelty assessment
- experiment_designer: For experiment design, feasibility, resource planning

You must respond with valid JSON only, with fields: query_type, confidence (high/medium/low), reasoning, needs_memory (bool), is_followup (bool), target_agents (list of strings).`

// Classifier is the entry stage of every run. It classifies the query and
// decides which specialists should see it.
type Classifier struct {
	model   domain.ModelClient
	store   *memory.Store
	logger  *observability.StructuredLogger
	metrics *observability.Metrics
}

// NewClassifier creates the classifier stage.
func NewClassifier(model domain.ModelClient, store *memory.Store, logger *observability.StructuredLogger, metrics *observability.Metrics) *Classifier {
	return &Classifier{
		model:   model,
		store:   store,
		logger:  logger.WithComponent("classifier"),
		metrics: metrics,
	}
}

// Name implements Stage.
func (c *Classifier) Name() domain.Stage { return domain.StageRouter }

// Run classifies the query. Recovery exhaustion degrades to a planning
// classification targeting all three specialists, so a misbehaving model
// runs everything rather than nothing.
func (c *Classifier) Run(ctx context.Context, snap state.Snapshot) state.Update {
	memCtx := c.store.Context(snap.Query)

	contextLine := "No previous context."
	if memCtx != "" {
		contextLine = "Previous context: " + memCtx
	}
	prompt := fmt.Sprintf(`Classify this research query.

Query: %s
%s

Query types:
- conceptual: Theory questions, concepts, comparisons
- design: Architecture, hypothesis design, methodology
- implementation: Code, practical how-to, technical details
- planning: Full research workflow, complete plans

Determine the query type, confidence, whether memory is needed, if it's a follow-up, and which agents should handle it.`, snap.Query, contextLine)

	classification, err := recovery.Recover(ctx, c.model, classifierSystemPrompt, prompt, domain.ParseClassification)
	if err != nil {
		c.logger.Warn(ctx, "classification failed, using fallback",
			map[string]interface{}{"error": err.Error()})
		c.metrics.RecordRecoveryFallback(ctx, string(domain.StageRouter))

		fallback := domain.Classification{
			QueryType:   domain.QueryTypePlanning,
			Confidence:  domain.ConfidenceLow,
			Reasoning:   "Fallback due to parse error",
			NeedsMemory: memCtx != "",
			IsFollowup:  false,
			TargetAgents: []string{
				string(domain.StageLiteratureAnalyst),
				string(domain.StageHypothesisGenerator),
				string(domain.StageExperimentDesigner),
			},
		}
		return state.Update{
			Classification:  &fallback,
			ActivatedStages: []string{string(domain.StageRouter)},
			Messages:        []string{"Router: fallback"},
		}
	}

	c.logger.Info(ctx, "query classified", map[string]interface{}{
		"query_type":    string(classification.QueryType),
		"confidence":    string(classification.Confidence),
		"needs_memory":  classification.NeedsMemory,
		"target_agents": classification.TargetAgents,
	})

	return state.Update{
		Classification:  &classification,
		ActivatedStages: []string{string(domain.StageRouter)},
		Messages:        []string{fmt.Sprintf("Router: %s", classification.QueryType)},
	}
}
