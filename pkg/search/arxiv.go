// Package search implements the literature search collaborator against the
// arXiv Atom API. A failed search never surfaces as a Go error: after
// retries are exhausted the client returns a digest with zero papers and
// the error detail attached, and downstream stages treat that as valid
// input.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// RetryInitialInterval is the base delay for search retries. Tests override
// this to avoid real sleeps.
var RetryInitialInterval = 1 * time.Second

const (
	searchTimeout  = 15 * time.Second
	searchAttempts = 3
)

// methodKeywords are matched against fetched abstracts to tag the digest
// with recent method families.
var methodKeywords = []string{
	"reinforcement learning", "deep learning", "neural network",
	"machine learning", "transformer", "attention", "optimization",
	"bayesian", "graph neural", "generative", "diffusion",
}

// ArxivClient queries the arXiv API.
type ArxivClient struct {
	httpClient *http.Client
}

// NewArxivClient creates an arXiv search client with the fixed search
// timeout applied per request.
func NewArxivClient() *ArxivClient {
	return &ArxivClient{
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

// Search implements domain.LiteratureSearcher. Transport failures are
// retried with exponential backoff; exhaustion degrades into an empty
// digest carrying the error string.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) *domain.LiteratureDigest {
	if maxResults <= 0 {
		maxResults = 10
	}

	var feed arxivFeed
	op := func() error {
		f, err := c.fetch(ctx, query, maxResults)
		if err != nil {
			return err
		}
		feed = *f
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxInterval = 10 * time.Second
	b.RandomizationFactor = 0

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, searchAttempts-1), ctx)); err != nil {
		return &domain.LiteratureDigest{
			KeyTopics:     []string{},
			RecentMethods: []string{},
			Papers:        []domain.Paper{},
			Error:         err.Error(),
		}
	}

	return buildDigest(feed)
}

func (c *ArxivClient) fetch(ctx context.Context, query string, maxResults int) (*arxivFeed, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

func buildDigest(feed arxivFeed) *domain.LiteratureDigest {
	papers := make([]domain.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := cleanText(entry.Title)
		if title == "" {
			continue
		}
		papers = append(papers, domain.Paper{
			Title:    title,
			Abstract: cleanText(entry.Summary),
			Year:     publishedYear(entry.Published),
			Source:   "arxiv",
			URL:      strings.TrimSpace(entry.ID),
		})
	}

	keyTopics := make([]string, 0, 5)
	for _, p := range papers {
		if len(keyTopics) == 5 {
			break
		}
		keyTopics = append(keyTopics, p.Title)
	}

	var abstracts strings.Builder
	for _, p := range papers {
		abstracts.WriteString(strings.ToLower(p.Abstract))
		abstracts.WriteString(" ")
	}
	methods := make([]string, 0, 3)
	for _, kw := range methodKeywords {
		if len(methods) == 3 {
			break
		}
		if strings.Contains(abstracts.String(), kw) {
			methods = append(methods, titleCase(kw))
		}
	}
	if len(methods) == 0 {
		methods = []string{"Novel approach"}
	}

	return &domain.LiteratureDigest{
		PapersFound:   len(papers),
		KeyTopics:     keyTopics,
		RecentMethods: methods,
		Papers:        papers,
	}
}

var yearRe = regexp.MustCompile(`\d{4}`)

func publishedYear(published string) int {
	m := yearRe.FindString(published)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// cleanText drops non-ASCII runes and collapses whitespace, matching the
// normalization applied to arXiv titles and abstracts before prompting.
func cleanText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}
