package domain

import (
	"context"
)

// ModelClient is the language-model collaborator. Implementations return
// free text with no structure guarantee; callers must run the output
// through the recovery package (or equivalent cleanup) before trusting it.
type ModelClient interface {
	// Complete sends a system instruction and a user prompt and returns
	// the model's raw text response.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LiteratureSearcher is the external bibliographic search collaborator.
type LiteratureSearcher interface {
	// Search returns up to maxResults papers for the query. It never
	// returns a Go error: transport failure degrades into a digest with
	// zero papers and the error detail attached.
	Search(ctx context.Context, query string, maxResults int) *LiteratureDigest
}
