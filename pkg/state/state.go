// Package state holds the single shared record threaded through every
// stage of a run, together with its merge policy. Stages never mutate the
// state directly: they return an Update, and Apply merges it field by
// field. Replace-typed fields take the latest non-nil value; append-typed
// fields only ever grow.
package state

import (
	"sync"
	"time"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// RunState is the accumulating record for one query run.
type RunState struct {
	mu sync.RWMutex

	// RunID identifies this run. Fixed at creation.
	RunID string
	// Query is the user's research question. Fixed at creation.
	Query string

	// Replace-with-latest fields, each owned by exactly one stage.
	Classification *domain.Classification
	Literature     *domain.LiteratureDigest
	Trends         *domain.TrendAnalysis
	Gaps           *domain.GapAnalysis
	Hypothesis     *domain.Hypothesis
	Novelty        *domain.NoveltyScore
	Plan           *domain.ExperimentPlan
	Feasibility    *domain.FeasibilityScore
	Duration       *domain.DurationEstimate
	MemoryContext  *string
	FinalResponse  *string

	// Append-only fields. Monotonic across the run.
	ActivatedStages []string
	Papers          []domain.Paper
	Messages        []string
	Notes           []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Update is a partial state produced by one stage. Nil pointers and empty
// slices leave the corresponding field untouched.
type Update struct {
	Classification *domain.Classification
	Literature     *domain.LiteratureDigest
	Trends         *domain.TrendAnalysis
	Gaps           *domain.GapAnalysis
	Hypothesis     *domain.Hypothesis
	Novelty        *domain.NoveltyScore
	Plan           *domain.ExperimentPlan
	Feasibility    *domain.FeasibilityScore
	Duration       *domain.DurationEstimate
	MemoryContext  *string
	FinalResponse  *string

	ActivatedStages []string
	Papers          []domain.Paper
	Messages        []string
	Notes           []string
}

// New creates the initial state for a run. Every field except RunID and
// Query starts unset or empty.
func New(runID, query string) *RunState {
	now := time.Now()
	return &RunState{
		RunID:           runID,
		Query:           query,
		ActivatedStages: []string{},
		Papers:          []domain.Paper{},
		Messages:        []string{},
		Notes:           []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply merges a stage's partial update into the state. The merge is
// atomic: either the whole update lands or (on the caller skipping Apply)
// none of it does, which is what lets the driver abort cleanly between
// stages.
func (s *RunState) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Classification != nil {
		s.Classification = u.Classification
	}
	if u.Literature != nil {
		s.Literature = u.Literature
	}
	if u.Trends != nil {
		s.Trends = u.Trends
	}
	if u.Gaps != nil {
		s.Gaps = u.Gaps
	}
	if u.Hypothesis != nil {
		s.Hypothesis = u.Hypothesis
	}
	if u.Novelty != nil {
		s.Novelty = u.Novelty
	}
	if u.Plan != nil {
		s.Plan = u.Plan
	}
	if u.Feasibility != nil {
		s.Feasibility = u.Feasibility
	}
	if u.Duration != nil {
		s.Duration = u.Duration
	}
	if u.MemoryContext != nil {
		s.MemoryContext = u.MemoryContext
	}
	if u.FinalResponse != nil {
		s.FinalResponse = u.FinalResponse
	}

	s.ActivatedStages = append(s.ActivatedStages, u.ActivatedStages...)
	s.Papers = append(s.Papers, u.Papers...)
	s.Messages = append(s.Messages, u.Messages...)
	s.Notes = append(s.Notes, u.Notes...)

	s.UpdatedAt = time.Now()
}

// Snapshot is an immutable deep copy of the state, handed to stages.
type Snapshot struct {
	RunID string
	Query string

	Classification *domain.Classification
	Literature     *domain.LiteratureDigest
	Trends         *domain.TrendAnalysis
	Gaps           *domain.GapAnalysis
	Hypothesis     *domain.Hypothesis
	Novelty        *domain.NoveltyScore
	Plan           *domain.ExperimentPlan
	Feasibility    *domain.FeasibilityScore
	Duration       *domain.DurationEstimate
	MemoryContext  string
	FinalResponse  string

	ActivatedStages []string
	Papers          []domain.Paper
	Messages        []string
	Notes           []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot returns a deep copy of the current state.
func (s *RunState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		RunID:           s.RunID,
		Query:           s.Query,
		ActivatedStages: append([]string{}, s.ActivatedStages...),
		Papers:          append([]domain.Paper{}, s.Papers...),
		Messages:        append([]string{}, s.Messages...),
		Notes:           append([]string{}, s.Notes...),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	if s.Classification != nil {
		c := *s.Classification
		c.TargetAgents = append([]string{}, s.Classification.TargetAgents...)
		snap.Classification = &c
	}
	if s.Literature != nil {
		d := *s.Literature
		d.KeyTopics = append([]string{}, s.Literature.KeyTopics...)
		d.RecentMethods = append([]string{}, s.Literature.RecentMethods...)
		d.Papers = append([]domain.Paper{}, s.Literature.Papers...)
		snap.Literature = &d
	}
	if s.Trends != nil {
		t := *s.Trends
		t.Trends = append([]string{}, s.Trends.Trends...)
		t.EmergingDirections = append([]string{}, s.Trends.EmergingDirections...)
		snap.Trends = &t
	}
	if s.Gaps != nil {
		g := *s.Gaps
		g.Contradictions = append([]string{}, s.Gaps.Contradictions...)
		g.UnsolvedProblems = append([]string{}, s.Gaps.UnsolvedProblems...)
		g.Opportunities = append([]string{}, s.Gaps.Opportunities...)
		snap.Gaps = &g
	}
	if s.Hypothesis != nil {
		h := *s.Hypothesis
		h.TRIZPrinciples = append([]string{}, s.Hypothesis.TRIZPrinciples...)
		snap.Hypothesis = &h
	}
	if s.Novelty != nil {
		n := *s.Novelty
		snap.Novelty = &n
	}
	if s.Plan != nil {
		p := *s.Plan
		p.Steps = append([]string{}, s.Plan.Steps...)
		p.Resources = append([]string{}, s.Plan.Resources...)
		p.Challenges = append([]string{}, s.Plan.Challenges...)
		snap.Plan = &p
	}
	if s.Feasibility != nil {
		f := *s.Feasibility
		f.Details = append([]string{}, s.Feasibility.Details...)
		snap.Feasibility = &f
	}
	if s.Duration != nil {
		d := *s.Duration
		d.Breakdown = append([]domain.StepEstimate{}, s.Duration.Breakdown...)
		snap.Duration = &d
	}
	if s.MemoryContext != nil {
		snap.MemoryContext = *s.MemoryContext
	}
	if s.FinalResponse != nil {
		snap.FinalResponse = *s.FinalResponse
	}

	return snap
}

// StringPtr is a small helper for building Updates around the
// replace-with-latest string fields.
func StringPtr(s string) *string { return &s }
