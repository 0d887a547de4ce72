// Package vision talks to the facial-analysis service, which samples
// every Nth video frame and returns per-frame measurements. When the
// full face model is unavailable the service answers in reduced mode:
// head pose and eye openness only, emotions and action units zeroed.
package vision

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

// Emotion labels used in every frame's distribution.
var EmotionLabels = []string{
	"neutral", "happy", "sad", "angry", "fearful", "surprised", "disgusted", "contempt",
}

// ActionUnitKeys are the 17 tracked facial action units.
var ActionUnitKeys = []string{
	"AU01", "AU02", "AU04", "AU05", "AU06", "AU07", "AU09", "AU10",
	"AU12", "AU14", "AU15", "AU17", "AU20", "AU23", "AU25", "AU26", "AU45",
}

type Frame struct {
	Time            float64            `json:"time"`
	Emotions        map[string]float64 `json:"emotions"`
	DominantEmotion string             `json:"dominant_emotion"`
	Intensity       float64            `json:"intensity"`
	ActionUnits     map[string]float64 `json:"action_units"`
	HeadPitch       float64            `json:"head_pitch"`
	HeadYaw         float64            `json:"head_yaw"`
	HeadRoll        float64            `json:"head_roll"`
	EyeOpenness     float64            `json:"eye_openness"`
}

type Result struct {
	Frames  []Frame `json:"frames"`
	Reduced bool    `json:"reduced"`
}

type Client struct {
	baseURL string
	c       *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		c:       &http.Client{Timeout: 60 * time.Minute},
	}
}

type analyzeRequest struct {
	VideoPath   string   `json:"video_path"`
	SampleRate  int      `json:"sample_rate"`
	WindowStart *float64 `json:"window_start,omitempty"`
	WindowEnd   *float64 `json:"window_end,omitempty"`
}

func (c *Client) Analyze(ctx context.Context, videoPath string, sampleRate int, window *timeline.Span) (*Result, error) {
	ar := analyzeRequest{VideoPath: videoPath, SampleRate: sampleRate}
	if window != nil {
		ar.WindowStart = &window.Start
		ar.WindowEnd = &window.End
	}

	b, err := json.Marshal(ar)
	if err != nil {
		return nil, fmt.Errorf("vision marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(b))
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
		return nil, fmt.Errorf("vision %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vision decode: %w", err)
	}
	return &out, nil
}
