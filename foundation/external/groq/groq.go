// Package groq is a thin client for an OpenAI-compatible chat
// completions endpoint. Prompt construction and response parsing live
// with the caller; this package only moves text.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	c           *http.Client
}

func New(apiKey, model string, temperature float64) *Client {
	return &Client{
		endpoint:    defaultEndpoint,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		c:           &http.Client{Timeout: 120 * time.Second},
	}
}

// NewWithEndpoint points the client at a non-default completions URL.
// Tests use this with httptest servers.
func NewWithEndpoint(endpoint, apiKey, model string, temperature float64) *Client {
	c := New(apiKey, model, temperature)
	c.endpoint = endpoint
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one system+user exchange and returns the raw
// completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("groq api key not set")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   4096,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("parse groq response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("groq error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}
