package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Explicit parse functions for each model-produced record. Each one decodes
// cleaned JSON and validates field presence, enum membership, and ranges.
// A validation failure is reported the same way as a decode failure so the
// recovery layer treats both as retryable parse errors.

// ParseClassification decodes and validates a router classification.
func ParseClassification(data []byte) (Classification, error) {
	var c Classification
	if err := json.Unmarshal(data, &c); err != nil {
		return Classification{}, fmt.Errorf("decoding classification: %w", err)
	}
	if !c.QueryType.Valid() {
		return Classification{}, fmt.Errorf("invalid query_type %q", c.QueryType)
	}
	if !c.Confidence.Valid() {
		return Classification{}, fmt.Errorf("invalid confidence %q", c.Confidence)
	}
	if strings.TrimSpace(c.Reasoning) == "" {
		return Classification{}, fmt.Errorf("classification missing reasoning")
	}
	return c, nil
}

// ParseTrendAnalysis decodes and validates a trend analysis.
func ParseTrendAnalysis(data []byte) (TrendAnalysis, error) {
	var t TrendAnalysis
	if err := json.Unmarshal(data, &t); err != nil {
		return TrendAnalysis{}, fmt.Errorf("decoding trend analysis: %w", err)
	}
	if len(t.Trends) == 0 {
		return TrendAnalysis{}, fmt.Errorf("trend analysis has no trends")
	}
	if !t.Confidence.Valid() {
		return TrendAnalysis{}, fmt.Errorf("invalid confidence %q", t.Confidence)
	}
	return t, nil
}

// ParseGapAnalysis decodes and validates a gap analysis.
func ParseGapAnalysis(data []byte) (GapAnalysis, error) {
	var g GapAnalysis
	if err := json.Unmarshal(data, &g); err != nil {
		return GapAnalysis{}, fmt.Errorf("decoding gap analysis: %w", err)
	}
	if len(g.Contradictions) == 0 && len(g.UnsolvedProblems) == 0 && len(g.Opportunities) == 0 {
		return GapAnalysis{}, fmt.Errorf("gap analysis is empty")
	}
	return g, nil
}

// ParseHypothesis decodes and validates a hypothesis. The statement must be
// at least 20 characters and the self-reported novelty score in [1,10].
func ParseHypothesis(data []byte) (Hypothesis, error) {
	var h Hypothesis
	if err := json.Unmarshal(data, &h); err != nil {
		return Hypothesis{}, fmt.Errorf("decoding hypothesis: %w", err)
	}
	if len(strings.TrimSpace(h.Statement)) < 20 {
		return Hypothesis{}, fmt.Errorf("hypothesis statement too short (%d chars, need 20)", len(strings.TrimSpace(h.Statement)))
	}
	if h.NoveltyScore < 1 || h.NoveltyScore > 10 {
		return Hypothesis{}, fmt.Errorf("novelty_score %d out of range [1,10]", h.NoveltyScore)
	}
	return h, nil
}

// ParseExperimentPlan decodes and validates an experiment plan. Plans must
// carry 3-7 steps and a known feasibility level.
func ParseExperimentPlan(data []byte) (ExperimentPlan, error) {
	var p ExperimentPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return ExperimentPlan{}, fmt.Errorf("decoding experiment plan: %w", err)
	}
	if !p.Feasibility.Valid() {
		return ExperimentPlan{}, fmt.Errorf("invalid feasibility %q", p.Feasibility)
	}
	if len(p.Steps) < 3 || len(p.Steps) > 7 {
		return ExperimentPlan{}, fmt.Errorf("experiment plan has %d steps, need 3-7", len(p.Steps))
	}
	if strings.TrimSpace(p.Duration) == "" {
		return ExperimentPlan{}, fmt.Errorf("experiment plan missing duration")
	}
	return p, nil
}

// ParseKeywords decodes a keyword list of the form {"keywords": [...]}.
func ParseKeywords(data []byte) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding keywords: %w", err)
	}
	if len(out.Keywords) == 0 {
		return nil, fmt.Errorf("no keywords in response")
	}
	return out.Keywords, nil
}
