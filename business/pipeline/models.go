package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/undothis/Moodling-sub000/business/diarize"
	"github.com/undothis/Moodling-sub000/business/facial"
	"github.com/undothis/Moodling-sub000/business/insight"
	"github.com/undothis/Moodling-sub000/business/prosody"
	"github.com/undothis/Moodling-sub000/foundation/external/acoustic"
	"github.com/undothis/Moodling-sub000/foundation/external/asr"
	"github.com/undothis/Moodling-sub000/foundation/external/diarizer"
	"github.com/undothis/Moodling-sub000/foundation/external/media"
	"github.com/undothis/Moodling-sub000/foundation/external/vision"
	"github.com/undothis/Moodling-sub000/foundation/pool"
	"github.com/undothis/Moodling-sub000/foundation/pubsub"
	"github.com/undothis/Moodling-sub000/foundation/state"
	"github.com/undothis/Moodling-sub000/foundation/timeline"
)

// Collaborator contracts. The pipeline only sees these interfaces; the
// foundation/external clients satisfy them and tests substitute fakes.
type MediaFetcher interface {
	Fetch(ctx context.Context, videoID string) (*media.Media, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (*asr.Result, error)
}

type Diarizer interface {
	Diarize(ctx context.Context, audioPath string, minSpeakers, maxSpeakers int) (*diarizer.Result, error)
}

type AcousticAnalyzer interface {
	Features(ctx context.Context, audioPath string, window *timeline.Span) (*acoustic.RawFeatures, error)
}

type VisionAnalyzer interface {
	Analyze(ctx context.Context, videoPath string, sampleRate int, window *timeline.Span) (*vision.Result, error)
}

// EventSink receives job events and approved training examples for
// delivery outside the process. foundation/redis satisfies it.
type EventSink interface {
	PublishJobEvent(ctx context.Context, data any) error
	PublishExport(ctx context.Context, data any) error
}

type Settings struct {
	Config
	Logger    *zap.SugaredLogger
	Media     MediaFetcher
	ASR       Transcriber
	Diarizer  Diarizer
	Acoustic  AcousticAnalyzer
	Vision    VisionAnalyzer
	Extractor *insight.Extractor
	Pool      *pool.Pool
	State     *state.State
	Broker    *pubsub.Broker[JobEvent]
	Sink      EventSink
}

type Config struct {
	Language        string
	Thresholds      insight.Thresholds
	MinSpeakers     int
	MaxSpeakers     int
	FrameSampleRate int
	MaxJobs         int
	JobDelay        time.Duration
	FailureDelay    time.Duration
	MaxAttempts     int
}

// Outcome is everything one completed job materialized, stage by stage.
type Outcome struct {
	Job         *Job
	Media       *media.Media
	Transcript  string
	Merge       diarize.Result
	Stats       []diarize.SpeakerStats
	Interviewer string
	Prosody     *prosody.Features
	Facial      *facial.Summary
	Insights    []insight.Insight
}

// JobEvent is published on the broker at every stage transition.
type JobEvent struct {
	JobID   string    `json:"job_id"`
	VideoID string    `json:"video_id"`
	Stage   Stage     `json:"stage"`
	Kind    ErrorKind `json:"error_kind,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

const JobEventsTopic = "job-events"
