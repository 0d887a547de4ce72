// Package media talks to the acquisition service that resolves a video
// identifier to local media files (video plus mono 16kHz PCM audio).
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Media struct {
	VideoPath string  `json:"video_path"`
	AudioPath string  `json:"audio_path"`
	Title     string  `json:"title"`
	Channel   string  `json:"channel"`
	Duration  float64 `json:"duration"`
}

type Client struct {
	baseURL string
	c       *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		c:       &http.Client{Timeout: 10 * time.Minute},
	}
}

type fetchRequest struct {
	VideoID string `json:"video_id"`
}

// Fetch downloads the media for videoID. A failure here is fatal to the
// job; retry happens only at the job level.
func (c *Client) Fetch(ctx context.Context, videoID string) (*Media, error) {
	b, err := json.Marshal(fetchRequest{VideoID: videoID})
	if err != nil {
		return nil, fmt.Errorf("media marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fetch", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, fmt.Errorf("media %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out Media
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("media decode: %w", err)
	}
	return &out, nil
}
