package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	origInitial, origMax := InitialBackoff, MaxBackoff
	InitialBackoff = time.Millisecond
	MaxBackoff = 2 * time.Millisecond
	t.Cleanup(func() {
		InitialBackoff = origInitial
		MaxBackoff = origMax
	})
}

type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func TestCleanStripsThinkBlocks(t *testing.T) {
	raw := "<think>let me reason\nabout this</think>\n{\"keywords\": [\"a\"]}"
	assert.Equal(t, `{"keywords": ["a"]}`, Clean(raw))
}

func TestCleanStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"keywords\": [\"a\"]}\n```"
	assert.Equal(t, `{"keywords": ["a"]}`, Clean(raw))

	raw = "```\n[1, 2]\n```"
	assert.Equal(t, "[1, 2]", Clean(raw))
}

func TestCleanExtractsJSONSpan(t *testing.T) {
	raw := "Here is the result:\n{\"score\": 5}\nHope that helps!"
	assert.Equal(t, `{"score": 5}`, Clean(raw))
}

func TestCleanNormalizesHexEscapes(t *testing.T) {
	// \xNN is invalid in strict JSON; Clean rewrites it to the \u00NN form
	// the decoder accepts.
	raw := `{"text": "dash\x2dhere"}`
	assert.Equal(t, `{"text": "dash\u002dhere"}`, Clean(raw))

	var decoded struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(Clean(raw)), &decoded))
	assert.Equal(t, "dash-here", decoded.Text)
}

func TestCleanFullPipeline(t *testing.T) {
	raw := "<think>hmm</think>\n```json\nThe answer: {\"trends\": [\"x\"], \"emerging_directions\": [\"y\"], \"confidence\": \"high\"} done\n```"
	cleaned := Clean(raw)
	assert.Equal(t, `{"trends": ["x"], "emerging_directions": ["y"], "confidence": "high"}`, cleaned)
}

func TestRecoverSucceedsFirstAttempt(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{responses: []string{`{"keywords": ["graph", "memory"]}`}}

	keywords, err := Recover(context.Background(), client, "sys", "prompt", domain.ParseKeywords)

	require.NoError(t, err)
	assert.Equal(t, []string{"graph", "memory"}, keywords)
	assert.Equal(t, 1, client.calls)
}

func TestRecoverRetriesTransportErrors(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []string{"", `{"keywords": ["ok"]}`},
	}

	keywords, err := Recover(context.Background(), client, "sys", "prompt", domain.ParseKeywords)

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, keywords)
	assert.Equal(t, 2, client.calls)
}

func TestRecoverRetriesParseFailures(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{responses: []string{
		"not json at all",
		`{"keywords": []}`,
		`{"keywords": ["third"]}`,
	}}

	keywords, err := Recover(context.Background(), client, "sys", "prompt", domain.ParseKeywords)

	require.NoError(t, err)
	assert.Equal(t, []string{"third"}, keywords)
	assert.Equal(t, 3, client.calls)
}

func TestRecoverExhaustionReturnsError(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{responses: []string{"garbage", "garbage", "garbage"}}

	_, err := Recover(context.Background(), client, "sys", "prompt", domain.ParseKeywords)

	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, rerr.Attempts)
	assert.Equal(t, 3, client.calls)
}

func TestRecoverHonorsContextCancellation(t *testing.T) {
	fastBackoff(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{errs: []error{fmt.Errorf("down")}}
	_, err := Recover(ctx, client, "sys", "prompt", domain.ParseKeywords)

	require.Error(t, err)
}

func TestCompleteWithRetrySucceeds(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{responses: []string{"  a fine answer \n"}}

	out, err := CompleteWithRetry(context.Background(), client, "sys", "prompt")

	require.NoError(t, err)
	assert.Equal(t, "a fine answer", out)
}

func TestCompleteWithRetryExhaustion(t *testing.T) {
	fastBackoff(t)
	client := &scriptedClient{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}

	_, err := CompleteWithRetry(context.Background(), client, "sys", "prompt")

	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, rerr.Attempts)
}
