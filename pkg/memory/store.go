// Package memory persists the append-only log of past interactions that
// feeds routing decisions on later runs. Persistence is best-effort: a
// missing or corrupt log loads as empty, and a failed save is logged and
// swallowed so a run never aborts over memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
)

const (
	// summaryLimit caps the stored response summary per entry.
	summaryLimit = 150
	// contextEntries is the default recency window for Context.
	contextEntries = 3
)

// Store is a file-backed append-only log of memory entries. One store is
// constructed by the driver and passed to the stages that need it; the
// mutex serializes concurrent runs sharing a single store instance.
// Cross-process writers are not coordinated.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []domain.MemoryEntry
	logger  *observability.StructuredLogger
}

// NewStore opens (or initializes) the memory log at path. Load errors are
// tolerated: the store starts empty and logs the cause.
func NewStore(path string, logger *observability.StructuredLogger) *Store {
	if logger == nil {
		logger = observability.NewStructuredLogger("memory")
	}
	s := &Store{
		path:   path,
		logger: logger,
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []domain.MemoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(context.Background(), "failed to read memory log, starting empty",
				map[string]interface{}{"path": s.path, "error": err.Error()})
		}
		return []domain.MemoryEntry{}
	}

	var entries []domain.MemoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn(context.Background(), "corrupt memory log, starting empty",
			map[string]interface{}{"path": s.path, "error": err.Error()})
		return []domain.MemoryEntry{}
	}
	return entries
}

// save writes the whole log atomically via a temp-file rename. Failure is
// logged and swallowed.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		s.logger.Error(context.Background(), "failed to marshal memory log", err, nil)
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error(context.Background(), "failed to create memory directory", err,
			map[string]interface{}{"dir": dir})
		return
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		s.logger.Error(context.Background(), "failed to create temp memory file", err, nil)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error(context.Background(), "failed to write memory log", err, nil)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.logger.Error(context.Background(), "failed to close memory log", err, nil)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.logger.Error(context.Background(), "failed to replace memory log", err, nil)
	}
}

// Add appends one interaction to the log and persists it. The response
// summary is truncated to the storage limit.
func (s *Store) Add(query, responseSummary string, agentsUsed, keyFindings []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(responseSummary) > summaryLimit {
		responseSummary = responseSummary[:summaryLimit]
	}
	if keyFindings == nil {
		keyFindings = []string{}
	}

	s.entries = append(s.entries, domain.MemoryEntry{
		Query:           query,
		ResponseSummary: responseSummary,
		AgentsUsed:      agentsUsed,
		KeyFindings:     keyFindings,
		CreatedAt:       time.Now().UTC(),
	})
	s.save()
}

// Context returns a compact recency window over the log for prompt
// embedding: one "Q:...->R:..." line per entry, most recent last. Empty
// string when the log is empty.
func (s *Store) Context(query string) string {
	return s.ContextN(query, contextEntries)
}

// ContextN is Context with an explicit window size.
func (s *Store) ContextN(query string, n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 || n <= 0 {
		return ""
	}

	start := len(s.entries) - n
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, n)
	for _, e := range s.entries[start:] {
		lines = append(lines, fmt.Sprintf("Q:%s->R:%s", clip(e.Query, 60), clip(e.ResponseSummary, 80)))
	}

	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// Entries returns a copy of the full log.
func (s *Store) Entries() []domain.MemoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MemoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of persisted entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
