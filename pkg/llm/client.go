package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an OpenAI-compatible chat-completions endpoint (a
// LiteLLM proxy, vLLM, or the OpenAI API itself).
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	options    Options
}

// Options configures the chat client.
type Options struct {
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

// chatRequest is the wire format for a chat-completions request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the wire format for a chat-completions response.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Usage tracks token consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completed chat call.
type Response struct {
	Content string
	Usage   Usage
}

// NewClient creates a chat client. A nil options pointer selects defaults.
func NewClient(baseURL, apiKey, model string, options *Options) *Client {
	if options == nil {
		options = &Options{
			Temperature: 0.7,
			MaxTokens:   2000,
			Timeout:     2 * time.Minute,
		}
	}
	if options.Timeout == 0 {
		options.Timeout = 2 * time.Minute
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
		options: *options,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Chat sends one system+user exchange and returns the full response.
func (c *Client) Chat(ctx context.Context, system, prompt string) (*Response, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: c.options.Temperature,
		MaxTokens:   c.options.MaxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/v1/chat/completions", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat endpoint returned no choices")
	}

	return &Response{
		Content: chatResp.Choices[0].Message.Content,
		Usage:   chatResp.Usage,
	}, nil
}

// Complete implements domain.ModelClient.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.Chat(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CheckHealth verifies the chat endpoint is reachable.
func (c *Client) CheckHealth(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf("%s/v1/models", c.baseURL),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat endpoint unhealthy: status %d", resp.StatusCode)
	}

	return nil
}
