// Package config loads the pipeline tuning document: collaborator URLs,
// scoring thresholds, batch policy. Process-level settings (log
// directory, Redis credentials, API keys) stay in the app's conf struct
// and environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Services struct {
	Media    string `yaml:"media"`
	ASR      string `yaml:"asr"`
	Diarizer string `yaml:"diarizer"`
	Acoustic string `yaml:"acoustic"`
	Vision   string `yaml:"vision"`
}

type Scoring struct {
	MinQuality      float64 `yaml:"min_quality"`
	MinSafety       float64 `yaml:"min_safety"`
	ReviewThreshold float64 `yaml:"review_threshold"`
}

type Batch struct {
	MaxJobs             int `yaml:"max_jobs"`
	JobDelaySeconds     int `yaml:"job_delay_seconds"`
	FailureDelaySeconds int `yaml:"failure_delay_seconds"`
	MaxAttempts         int `yaml:"max_attempts"`
}

type Extraction struct {
	Model                string  `yaml:"model"`
	Temperature          float64 `yaml:"temperature"`
	TranscriptCharBudget int     `yaml:"transcript_char_budget"`
	MaxInsights          int     `yaml:"max_insights"`
}

type Analysis struct {
	FrameSampleRate int `yaml:"frame_sample_rate"`
	MinSpeakers     int `yaml:"min_speakers"`
	MaxSpeakers     int `yaml:"max_speakers"`
	PoolWorkers     int `yaml:"pool_workers"`
}

type Root struct {
	Pipeline struct {
		Name     string `yaml:"name"`
		Language string `yaml:"language"`
	} `yaml:"pipeline"`
	Services   Services   `yaml:"services"`
	Scoring    Scoring    `yaml:"scoring"`
	Batch      Batch      `yaml:"batch"`
	Extraction Extraction `yaml:"extraction"`
	Analysis   Analysis   `yaml:"analysis"`
}

func Load(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Root
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Root) {
	if cfg.Scoring.MinQuality == 0 {
		cfg.Scoring.MinQuality = 60
	}
	if cfg.Scoring.MinSafety == 0 {
		cfg.Scoring.MinSafety = 80
	}
	if cfg.Scoring.ReviewThreshold == 0 {
		cfg.Scoring.ReviewThreshold = 75
	}
	if cfg.Batch.MaxJobs == 0 {
		cfg.Batch.MaxJobs = 25
	}
	if cfg.Batch.JobDelaySeconds == 0 {
		cfg.Batch.JobDelaySeconds = 5
	}
	if cfg.Batch.FailureDelaySeconds == 0 {
		cfg.Batch.FailureDelaySeconds = 30
	}
	if cfg.Batch.MaxAttempts == 0 {
		cfg.Batch.MaxAttempts = 3
	}
	if cfg.Extraction.TranscriptCharBudget == 0 {
		cfg.Extraction.TranscriptCharBudget = 24000
	}
	if cfg.Extraction.MaxInsights == 0 {
		cfg.Extraction.MaxInsights = 10
	}
	if cfg.Extraction.Model == "" {
		cfg.Extraction.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Analysis.FrameSampleRate == 0 {
		cfg.Analysis.FrameSampleRate = 15
	}
	if cfg.Analysis.MinSpeakers == 0 {
		cfg.Analysis.MinSpeakers = 1
	}
	if cfg.Analysis.MaxSpeakers == 0 {
		cfg.Analysis.MaxSpeakers = 4
	}
	if cfg.Analysis.PoolWorkers == 0 {
		cfg.Analysis.PoolWorkers = 4
	}
	if cfg.Pipeline.Language == "" {
		cfg.Pipeline.Language = "en"
	}
}

func validate(cfg *Root) error {
	if cfg.Scoring.MinQuality < 0 || cfg.Scoring.MinQuality > 100 {
		return fmt.Errorf("scoring.min_quality[%v] outside [0,100]", cfg.Scoring.MinQuality)
	}
	if cfg.Scoring.MinSafety < 0 || cfg.Scoring.MinSafety > 100 {
		return fmt.Errorf("scoring.min_safety[%v] outside [0,100]", cfg.Scoring.MinSafety)
	}
	if cfg.Scoring.ReviewThreshold < 0 || cfg.Scoring.ReviewThreshold > 100 {
		return fmt.Errorf("scoring.review_threshold[%v] outside [0,100]", cfg.Scoring.ReviewThreshold)
	}
	if cfg.Analysis.MinSpeakers > cfg.Analysis.MaxSpeakers {
		return fmt.Errorf("analysis.min_speakers[%d] > analysis.max_speakers[%d]",
			cfg.Analysis.MinSpeakers, cfg.Analysis.MaxSpeakers)
	}
	return nil
}
