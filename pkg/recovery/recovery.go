// Package recovery extracts structured records from unreliable model
// output. Models wrap JSON in reasoning markers, markdown fences, and
// trailing prose, and occasionally emit escape sequences that are not
// valid JSON; this package cleans all of that up and retries the whole
// call-and-parse sequence with exponential backoff before giving up.
//
// The recovery layer never fabricates domain data. When retries are
// exhausted it returns a *recovery.Error and the caller supplies its own
// deterministic fallback value.
package recovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// Backoff intervals for the retry loop. Declared as vars so tests can
// substitute near-zero delays.
var (
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 10 * time.Second
)

// maxAttempts caps the whole call-and-parse sequence, first try included.
const maxAttempts = 3

var (
	thinkRe     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceOpenRe = regexp.MustCompile("^```[a-zA-Z0-9]*\n?")
	fenceCloseRe = regexp.MustCompile("\n?```$")
	jsonSpanRe  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
	hexEscapeRe = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
)

// Error reports exhausted recovery for one model call.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("recovery failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Clean strips reasoning markers and markdown fences from raw model
// output, isolates the first balanced JSON object or array span, and
// normalizes hex escape sequences that strict JSON rejects.
func Clean(raw string) string {
	content := strings.TrimSpace(raw)
	content = strings.TrimSpace(thinkRe.ReplaceAllString(content, ""))
	if strings.HasPrefix(content, "```") {
		content = fenceOpenRe.ReplaceAllString(content, "")
		content = fenceCloseRe.ReplaceAllString(content, "")
	}
	if m := jsonSpanRe.FindString(content); m != "" {
		content = m
	}
	content = hexEscapeRe.ReplaceAllString(content, `\u00$1`)
	content = strings.ReplaceAll(content, `\x2014`, "-")
	return content
}

// Recover issues the model call, cleans the response, and parses it with
// the supplied record parser. Any failure in the sequence (transport,
// cleanup leaving no JSON, decode, validation) is retried with exponential
// backoff up to three attempts total; exhaustion yields a *Error.
func Recover[T any](ctx context.Context, client domain.ModelClient, system, prompt string, parse func([]byte) (T, error)) (T, error) {
	var result T
	attempts := 0

	op := func() error {
		attempts++
		raw, err := client.Complete(ctx, system, prompt)
		if err != nil {
			return fmt.Errorf("model call: %w", err)
		}
		v, err := parse([]byte(Clean(raw)))
		if err != nil {
			return err
		}
		result = v
		return nil
	}

	if err := retry(ctx, op); err != nil {
		var zero T
		return zero, &Error{Attempts: attempts, Err: err}
	}
	return result, nil
}

// CompleteWithRetry runs a plain free-text model call under the same retry
// envelope as Recover, with no structure requirement on the output.
func CompleteWithRetry(ctx context.Context, client domain.ModelClient, system, prompt string) (string, error) {
	var result string
	attempts := 0

	op := func() error {
		attempts++
		raw, err := client.Complete(ctx, system, prompt)
		if err != nil {
			return err
		}
		result = strings.TrimSpace(raw)
		return nil
	}

	if err := retry(ctx, op); err != nil {
		return "", &Error{Attempts: attempts, Err: err}
	}
	return result, nil
}

func retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = InitialBackoff
	b.MaxInterval = MaxBackoff
	b.RandomizationFactor = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx))
}
