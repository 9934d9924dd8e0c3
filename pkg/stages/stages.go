// Package stages implements the nodes of the planning graph. Each stage
// reads an immutable snapshot of the run state and returns a partial
// update; the driver applies updates atomically between stages.
//
// Stages never fail a run. Model and search failures degrade into
// deterministic fallback values, so every run reaches synthesis with a
// complete state.
package stages

import (
	"context"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/state"
)

// Stage is one node of the planning graph.
type Stage interface {
	// Name returns the canonical stage identifier.
	Name() domain.Stage
	// Run executes the stage against a snapshot and returns its update.
	Run(ctx context.Context, snap state.Snapshot) state.Update
}
