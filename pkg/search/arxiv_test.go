package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Deep Learning for Multi-Agent   Coordination</title>
    <summary>We study reinforcement learning for coordination across agents.</summary>
    <published>2024-01-15T00:00:00Z</published>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <title>Graph Methods in Planning</title>
    <summary>A survey of planning approaches using graph neural models.</summary>
    <published>2023-11-02T00:00:00Z</published>
  </entry>
</feed>`

func withTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	orig := arxivAPIBase
	arxivAPIBase = srv.URL
	t.Cleanup(func() {
		arxivAPIBase = orig
		srv.Close()
	})
	return srv
}

func fastSearchRetry(t *testing.T) {
	t.Helper()
	orig := RetryInitialInterval
	RetryInitialInterval = time.Millisecond
	t.Cleanup(func() { RetryInitialInterval = orig })
}

func TestSearchBuildsDigest(t *testing.T) {
	var gotQuery atomic.Value
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("search_query"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	})

	c := NewArxivClient()
	digest := c.Search(context.Background(), "agent coordination", 10)

	assert.Equal(t, "all:agent coordination", gotQuery.Load())
	require.Equal(t, 2, digest.PapersFound)
	assert.Empty(t, digest.Error)

	// Whitespace collapses in cleaned titles.
	assert.Equal(t, "Deep Learning for Multi-Agent Coordination", digest.Papers[0].Title)
	assert.Equal(t, 2024, digest.Papers[0].Year)
	assert.Equal(t, "arxiv", digest.Papers[0].Source)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", digest.Papers[0].URL)

	assert.Equal(t, []string{
		"Deep Learning for Multi-Agent Coordination",
		"Graph Methods in Planning",
	}, digest.KeyTopics)

	// "reinforcement learning" precedes "deep learning" in the keyword
	// order; both abstracts are scanned.
	assert.Contains(t, digest.RecentMethods, "Reinforcement Learning")
	assert.Contains(t, digest.RecentMethods, "Graph Neural")
	assert.LessOrEqual(t, len(digest.RecentMethods), 3)
}

func TestSearchDefaultsMethodsWhenNoneMatch(t *testing.T) {
	feed := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1</id>
    <title>Bird Migration</title>
    <summary>Seasonal movement of birds.</summary>
    <published>2022-05-01T00:00:00Z</published>
  </entry>
</feed>`
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	})

	digest := NewArxivClient().Search(context.Background(), "birds", 5)

	require.Equal(t, 1, digest.PapersFound)
	assert.Equal(t, []string{"Novel approach"}, digest.RecentMethods)
}

func TestSearchRetriesServerErrors(t *testing.T) {
	fastSearchRetry(t)

	var calls int32
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleFeed))
	})

	digest := NewArxivClient().Search(context.Background(), "q", 10)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, digest.PapersFound)
	assert.Empty(t, digest.Error)
}

func TestSearchExhaustionDegradesToEmptyDigest(t *testing.T) {
	fastSearchRetry(t)

	var calls int32
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	digest := NewArxivClient().Search(context.Background(), "q", 10)

	require.NotNil(t, digest)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Zero(t, digest.PapersFound)
	assert.Empty(t, digest.Papers)
	assert.NotEmpty(t, digest.Error)
}

func TestSearchSkipsEntriesWithoutTitles(t *testing.T) {
	feed := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1</id>
    <title>   </title>
    <summary>Orphan summary.</summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2</id>
    <title>Kept Paper</title>
    <summary>Fine.</summary>
    <published>2020-01-01T00:00:00Z</published>
  </entry>
</feed>`
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	})

	digest := NewArxivClient().Search(context.Background(), "q", 10)

	require.Equal(t, 1, digest.PapersFound)
	assert.Equal(t, "Kept Paper", digest.Papers[0].Title)
}

func TestCleanTextDropsNonASCII(t *testing.T) {
	// Non-ASCII runes are dropped outright and whitespace collapses.
	assert.Equal(t, "rsum draft", cleanText("résumé — draft"))
	assert.Equal(t, "plain title", cleanText("  plain\n title "))
}
