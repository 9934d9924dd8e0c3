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

const literatureSystemPrompt = `You are a research analyst specializing in literature review and trend analysis.

Your responsibilities:
1. Search and analyze academic literature
2. Identify current research trends
3. Find research gaps and opportunities
4. Summarize key findings for other stages

Provide thorough, evidence-based analysis.`

// LiteratureAnalyst surveys the literature around a query: keyword
// extraction, external search, then trend and gap sub-analyses.
type LiteratureAnalyst struct {
	model     domain.ModelClient
	searcher  domain.LiteratureSearcher
	telemetry *observability.Telemetry
	logger    *observability.StructuredLogger
	metrics   *observability.Metrics
}

// NewLiteratureAnalyst creates the literature analysis stage.
func NewLiteratureAnalyst(model domain.ModelClient, searcher domain.LiteratureSearcher, telemetry *observability.Telemetry, logger *observability.StructuredLogger, metrics *observability.Metrics) *LiteratureAnalyst {
	return &LiteratureAnalyst{
		model:     model,
		searcher:  searcher,
		telemetry: telemetry,
		logger:    logger.WithComponent("literature_analyst"),
		metrics:   metrics,
	}
}

// Name implements Stage.
func (l *LiteratureAnalyst) Name() domain.Stage { return domain.StageLiteratureAnalyst }

// Run performs the literature survey. A failed search yields an empty
// digest, which the sub-analyses treat as valid input.
func (l *LiteratureAnalyst) Run(ctx context.Context, snap state.Snapshot) state.Update {
	keywords := l.extractKeywords(ctx, snap.Query, snap.MemoryContext)

	top := keywords
	if len(top) > 3 {
		top = top[:3]
	}
	searchQuery := strings.Join(top, " ")

	var digest *domain.LiteratureDigest
	l.telemetry.InstrumentSearch(ctx, "arxiv", searchQuery, func(ctx context.Context) (int, string) {
		digest = l.searcher.Search(ctx, searchQuery, 10)
		return digest.PapersFound, digest.Error
	})
	l.metrics.RecordPapersFetched(ctx, "arxiv", int64(digest.PapersFound))
	if digest.Error != "" {
		l.logger.Warn(ctx, "literature search degraded to empty digest",
			map[string]interface{}{"error": digest.Error})
	}

	trends := l.analyzeTrends(ctx, digest, snap.Query)
	gaps := l.findGaps(ctx, digest, snap.Query)

	summary := fmt.Sprintf("literature analyst: found %d papers. identified %d trends and %d opportunities.",
		digest.PapersFound, len(trends.Trends), len(gaps.Opportunities))
	l.logger.Info(ctx, "literature analysis complete", map[string]interface{}{
		"papers_found":  digest.PapersFound,
		"trends":        len(trends.Trends),
		"opportunities": len(gaps.Opportunities),
	})

	topTrends := trends.Trends
	if len(topTrends) > 2 {
		topTrends = topTrends[:2]
	}

	return state.Update{
		Literature:      digest,
		Trends:          &trends,
		Gaps:            &gaps,
		Papers:          digest.Papers,
		ActivatedStages: []string{string(domain.StageLiteratureAnalyst)},
		Messages:        []string{summary},
		Notes:           []string{"Key trends: " + strings.Join(topTrends, ", ")},
	}
}

// extractKeywords asks the model for search keywords. Any failure falls
// back to the first five whitespace tokens of the query.
func (l *LiteratureAnalyst) extractKeywords(ctx context.Context, query, memCtx string) []string {
	contextLine := ""
	if memCtx != "" {
		contextLine = "Context from memory: " + memCtx + "\n\n"
	}
	prompt := fmt.Sprintf(`Extract 3-5 search keywords from this research query:

Query: %s

%sRespond with JSON: {"keywords": ["kw1", "kw2", "kw3"]}`, query, contextLine)

	raw, err := l.model.Complete(ctx, "Extract research keywords. Respond only with JSON.", prompt)
	if err == nil {
		if keywords, perr := domain.ParseKeywords([]byte(recovery.Clean(raw))); perr == nil {
			return keywords
		}
	}

	tokens := strings.Fields(query)
	if len(tokens) > 5 {
		tokens = tokens[:5]
	}
	return tokens
}

func (l *LiteratureAnalyst) analyzeTrends(ctx context.Context, digest *domain.LiteratureDigest, focus string) domain.TrendAnalysis {
	prompt := fmt.Sprintf(`Analyze research trends from these papers.

Papers:
%s

Research focus: %s

Identify 3-5 current trends, 2-3 emerging directions, and your confidence level.
Respond with JSON: {"trends": [...], "emerging_directions": [...], "confidence": "high|medium|low"}`,
		paperContext(digest), focus)

	trends, err := recovery.Recover(ctx, l.model, literatureSystemPrompt, prompt, domain.ParseTrendAnalysis)
	if err != nil {
		l.logger.Warn(ctx, "trend analysis failed, using fallback",
			map[string]interface{}{"error": err.Error()})
		l.metrics.RecordRecoveryFallback(ctx, string(domain.StageLiteratureAnalyst))
		return domain.TrendAnalysis{
			Trends:             []string{"Emerging AI research"},
			EmergingDirections: []string{"Novel methodologies"},
			Confidence:         domain.ConfidenceMedium,
		}
	}
	return trends
}

func (l *LiteratureAnalyst) findGaps(ctx context.Context, digest *domain.LiteratureDigest, focus string) domain.GapAnalysis {
	prompt := fmt.Sprintf(`Find research gaps and opportunities from these papers.

Papers:
%s

Research focus: %s

Identify contradictions in the literature, unsolved problems, and research opportunities.
Respond with JSON: {"contradictions": [...], "unsolved_problems": [...], "opportunities": [...]}`,
		paperContext(digest), focus)

	gaps, err := recovery.Recover(ctx, l.model, literatureSystemPrompt, prompt, domain.ParseGapAnalysis)
	if err != nil {
		l.logger.Warn(ctx, "gap analysis failed, using fallback",
			map[string]interface{}{"error": err.Error()})
		l.metrics.RecordRecoveryFallback(ctx, string(domain.StageLiteratureAnalyst))
		return domain.GapAnalysis{
			Contradictions:   []string{"Limited scope"},
			UnsolvedProblems: []string{"Scalability"},
			Opportunities:    []string{"Novel approaches"},
		}
	}
	return gaps
}

func paperContext(digest *domain.LiteratureDigest) string {
	if len(digest.Papers) == 0 {
		return "No papers found"
	}
	lines := make([]string, 0, len(digest.Papers))
	for _, p := range digest.Papers {
		lines = append(lines, fmt.Sprintf("- %s: %s", p.Title, p.Abstract))
	}
	return strings.Join(lines, "\n")
}
