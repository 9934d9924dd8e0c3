package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// MockModelClient is a scriptable implementation of domain.ModelClient.
// Responses are matched by prompt substring, falling back to a FIFO queue
// and then a fixed default.
type MockModelClient struct {
	mu sync.Mutex

	// Responses maps a prompt substring to the canned response returned
	// when the substring appears in the system or user prompt.
	Responses map[string]string
	// Queue is consumed front-first when no substring matches.
	Queue []string

	CallCount   int
	LastSystem  string
	LastPrompt  string
	ShouldError bool
	Err         error

	// CompleteFunc overrides all other behavior when set.
	CompleteFunc func(ctx context.Context, system, prompt string) (string, error)
}

// NewMockModelClient creates an empty mock model client.
func NewMockModelClient() *MockModelClient {
	return &MockModelClient{
		Responses: make(map[string]string),
	}
}

// Complete implements domain.ModelClient.
func (m *MockModelClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastSystem = system
	m.LastPrompt = prompt
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, system, prompt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldError {
		if m.Err != nil {
			return "", m.Err
		}
		return "", fmt.Errorf("mock model error")
	}

	for substr, resp := range m.Responses {
		if strings.Contains(prompt, substr) || strings.Contains(system, substr) {
			return resp, nil
		}
	}

	if len(m.Queue) > 0 {
		resp := m.Queue[0]
		m.Queue = m.Queue[1:]
		return resp, nil
	}

	return "Mock response", nil
}

// GetCallCount returns the number of Complete calls made.
func (m *MockModelClient) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// MockSearcher is a canned implementation of domain.LiteratureSearcher.
type MockSearcher struct {
	mu sync.Mutex

	// Digest is returned from every Search call. Nil yields an empty
	// digest, matching the degraded-search contract.
	Digest *domain.LiteratureDigest

	CallCount      int
	LastQuery      string
	LastMaxResults int
}

// Search implements domain.LiteratureSearcher.
func (m *MockSearcher) Search(ctx context.Context, query string, maxResults int) *domain.LiteratureDigest {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastQuery = query
	m.LastMaxResults = maxResults

	if m.Digest != nil {
		return m.Digest
	}
	return &domain.LiteratureDigest{
		KeyTopics:     []string{},
		RecentMethods: []string{},
		Papers:        []domain.Paper{},
	}
}
