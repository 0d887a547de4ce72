// Package diarizer talks to the speaker-diarization service. The
// service may be down; callers fall back to a single full-length turn
// in that case (documented degraded mode, not an error state).
package diarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type Result struct {
	Turns       []Turn `json:"segments"`
	NumSpeakers int    `json:"num_speakers"`
}

type Client struct {
	baseURL string
	c       *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		c:       &http.Client{Timeout: 30 * time.Minute},
	}
}

func (c *Client) Diarize(ctx context.Context, audioPath string, minSpeakers, maxSpeakers int) (*Result, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", audioPath, err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err = w.WriteField("min_speakers", strconv.Itoa(minSpeakers)); err != nil {
		return nil, err
	}
	if err = w.WriteField("max_speakers", strconv.Itoa(maxSpeakers)); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diarize", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, fmt.Errorf("diarize %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("diarize decode: %w", err)
	}
	return &out, nil
}
