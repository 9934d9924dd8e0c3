package domain

import (
	"time"
)

// QueryType classifies what kind of help a research query is asking for.
type QueryType string

const (
	QueryTypeConceptual     QueryType = "conceptual"
	QueryTypeDesign         QueryType = "design"
	QueryTypeImplementation QueryType = "implementation"
	QueryTypePlanning       QueryType = "planning"
)

// Valid reports whether the query type is one of the four known kinds.
func (q QueryType) Valid() bool {
	switch q {
	case QueryTypeConceptual, QueryTypeDesign, QueryTypeImplementation, QueryTypePlanning:
		return true
	}
	return false
}

// Confidence is a coarse self-assessment attached to model outputs.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether the confidence level is known.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Feasibility is the experiment designer's practicality rating.
type Feasibility string

const (
	FeasibilityHigh   Feasibility = "high"
	FeasibilityMedium Feasibility = "medium"
	FeasibilityLow    Feasibility = "low"
)

// Valid reports whether the feasibility level is known.
func (f Feasibility) Valid() bool {
	return f == FeasibilityHigh || f == FeasibilityMedium || f == FeasibilityLow
}

// Stage identifies a node of the planning graph. These are the canonical
// routing targets; free-text agent names emitted by the model are mapped
// onto them by the workflow package.
type Stage string

const (
	StageRouter              Stage = "router"
	StageMemoryRetrieval     Stage = "memory_retrieval"
	StageLiteratureAnalyst   Stage = "literature_analyst"
	StageHypothesisGenerator Stage = "hypothesis_generator"
	StageExperimentDesigner  Stage = "experiment_designer"
	StageSynthesizer         Stage = "synthesizer"
	StageMemoryUpdate        Stage = "memory_update"
	// StageTerminal marks the end of a run. It is never executed.
	StageTerminal Stage = "terminal"
)

// Paper is a single bibliographic record returned by the literature
// searcher. Immutable once created.
type Paper struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Year     int    `json:"year,omitempty"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
}

// LiteratureDigest is the literature searcher's response envelope. A failed
// search degrades into a digest with zero papers and Error set; callers
// must treat an empty digest as valid input.
type LiteratureDigest struct {
	PapersFound   int      `json:"papers_found"`
	KeyTopics     []string `json:"key_topics"`
	RecentMethods []string `json:"recent_methods"`
	Papers        []Paper  `json:"papers"`
	Error         string   `json:"error,omitempty"`
}

// Classification is the router's verdict on a query.
type Classification struct {
	QueryType   QueryType  `json:"query_type"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning"`
	NeedsMemory bool       `json:"needs_memory"`
	IsFollowup  bool       `json:"is_followup"`
	// TargetAgents holds model-suggested agent names. They are free text
	// and must be normalized before routing on them.
	TargetAgents []string `json:"target_agents"`
}

// TrendAnalysis summarizes where the surveyed literature is heading.
type TrendAnalysis struct {
	Trends             []string   `json:"trends"`
	EmergingDirections []string   `json:"emerging_directions"`
	Confidence         Confidence `json:"confidence"`
}

// GapAnalysis lists contradictions and openings found in the literature.
type GapAnalysis struct {
	Contradictions   []string `json:"contradictions"`
	UnsolvedProblems []string `json:"unsolved_problems"`
	Opportunities    []string `json:"opportunities"`
}

// Hypothesis is a generated research hypothesis.
type Hypothesis struct {
	Statement      string   `json:"statement"`
	TRIZPrinciples []string `json:"triz_principles"`
	Rationale      string   `json:"rationale"`
	NoveltyScore   int      `json:"novelty_score"`
}

// ExperimentPlan is the experiment designer's output.
type ExperimentPlan struct {
	Feasibility Feasibility `json:"feasibility"`
	Steps       []string    `json:"steps"`
	Resources   []string    `json:"resources"`
	Duration    string      `json:"duration"`
	Challenges  []string    `json:"challenges"`
}

// NoveltyScore is the heuristic novelty assessment computed from keyword
// overlap with retrieved papers, independent of the model's self-report.
type NoveltyScore struct {
	Score          int     `json:"score"`
	Method         string  `json:"method"`
	AvgOverlap     float64 `json:"avg_overlap,omitempty"`
	PapersCompared int     `json:"papers_compared,omitempty"`
	Reason         string  `json:"reason"`
}

// FeasibilityScore is the deterministic feasibility assessment of an
// experiment plan.
type FeasibilityScore struct {
	Category Feasibility `json:"category"`
	Score    int         `json:"score"`
	Details  []string    `json:"details,omitempty"`
	Reason   string      `json:"reason"`
}

// DurationEstimate is a PERT-style duration estimate over plan steps.
type DurationEstimate struct {
	Duration        string         `json:"duration"`
	BaseWeeks       float64        `json:"base_weeks"`
	WithBufferWeeks float64        `json:"with_buffer_weeks"`
	Breakdown       []StepEstimate `json:"breakdown"`
	Method          string         `json:"method"`
}

// StepEstimate is one step's expected duration within a DurationEstimate.
type StepEstimate struct {
	Step  string  `json:"step"`
	Weeks float64 `json:"weeks"`
}

// MemoryEntry is one persisted interaction. Entries are created once per
// completed run, appended to the memory log, and never mutated.
type MemoryEntry struct {
	Query           string    `json:"query"`
	ResponseSummary string    `json:"response_summary"`
	AgentsUsed      []string  `json:"agents_used"`
	KeyFindings     []string  `json:"key_findings"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}
