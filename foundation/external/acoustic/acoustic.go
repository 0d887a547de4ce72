// Package acoustic talks to the acoustic-feature service, which runs
// the raw signal extraction (pitch tracking, onset detection, silence
// runs, loudness, voice quality) and returns plain series. All scoring
// on top of these series happens in business/prosody.
package acoustic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/undothis/Moodling-sub000/foundation/timeline"
)

type Silence struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// RawFeatures are the unscored measurement series for one analysis
// window. PitchHz carries one value per analysis frame with 0 marking
// unvoiced frames.
type RawFeatures struct {
	Duration   float64   `json:"duration"`
	PitchHz    []float64 `json:"pitch_hz"`
	OnsetTimes []float64 `json:"onset_times"`
	Silences   []Silence `json:"silences"`
	DbSeries   []float64 `json:"db_series"`
	JitterPct  float64   `json:"jitter_pct"`
	ShimmerPct float64   `json:"shimmer_pct"`
	HNR        float64   `json:"hnr"`
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

type featuresRequest struct {
	AudioPath   string   `json:"audio_path"`
	WindowStart *float64 `json:"window_start,omitempty"`
	WindowEnd   *float64 `json:"window_end,omitempty"`
}

func (c *Client) Features(ctx context.Context, audioPath string, window *timeline.Span) (*RawFeatures, error) {
	fr := featuresRequest{AudioPath: audioPath}
	if window != nil {
		fr.WindowStart = &window.Start
		fr.WindowEnd = &window.End
	}

	b, err := json.Marshal(fr)
	if err != nil {
		return nil, fmt.Errorf("acoustic marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/features", bytes.NewReader(b))
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
		return nil, fmt.Errorf("acoustic %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out RawFeatures
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("acoustic decode: %w", err)
	}
	return &out, nil
}
