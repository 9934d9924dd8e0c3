package state

import (
	"fmt"
	"sort"
	"sync"
)

// Archive keeps the final snapshots of completed runs in memory, keyed by
// run ID. The interactive loop uses it to expose session history without
// touching the persisted memory log.
type Archive struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	order     []string
}

// NewArchive creates an empty run archive.
func NewArchive() *Archive {
	return &Archive{
		snapshots: make(map[string]Snapshot),
	}
}

// Save records a completed run's final snapshot.
func (a *Archive) Save(snap Snapshot) error {
	if snap.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.snapshots[snap.RunID]; !exists {
		a.order = append(a.order, snap.RunID)
	}
	a.snapshots[snap.RunID] = snap
	return nil
}

// Get returns the snapshot for a run ID.
func (a *Archive) Get(runID string) (Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap, ok := a.snapshots[runID]
	return snap, ok
}

// List returns all archived snapshots in completion order.
func (a *Archive) List() []Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Snapshot, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.snapshots[id])
	}
	return out
}

// Len returns the number of archived runs.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.snapshots)
}

// Queries returns the archived queries, oldest first.
func (a *Archive) Queries() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := append([]string{}, a.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		return a.snapshots[ids[i]].CreatedAt.Before(a.snapshots[ids[j]].CreatedAt)
	})

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.snapshots[id].Query)
	}
	return out
}
