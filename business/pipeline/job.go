package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageQueued       Stage = "QUEUED"
	StageDownloading  Stage = "DOWNLOADING"
	StageTranscribing Stage = "TRANSCRIBING"
	StageDiarizing    Stage = "DIARIZING"
	StageAnalyzing    Stage = "ANALYZING"
	StageExtracting   Stage = "EXTRACTING"
	StageCompleted    Stage = "COMPLETED"
	StageFailed       Stage = "FAILED"
)

type ErrorKind string

const (
	KindAcquisitionFailure ErrorKind = "acquisitionFailure"
	KindModelUnavailable   ErrorKind = "modelUnavailable"
	KindMalformedResponse  ErrorKind = "malformedResponse"
	KindInvalidCategory    ErrorKind = "invalidCategory"
	KindCancelled          ErrorKind = "cancelled"
)

// forward is the one-directional stage order. No stage is revisited
// except through a whole-job retry back to QUEUED.
var forward = map[Stage]Stage{
	StageQueued:       StageDownloading,
	StageDownloading:  StageTranscribing,
	StageTranscribing: StageDiarizing,
	StageDiarizing:    StageAnalyzing,
	StageAnalyzing:    StageExtracting,
	StageExtracting:   StageCompleted,
}

// Job is one video's pipeline run. Terminal jobs are never mutated
// again except through Retry on a failed job.
type Job struct {
	ID           string    `json:"id"`
	VideoID      string    `json:"video_id"`
	Stage        Stage     `json:"stage"`
	AttemptCount int       `json:"attempt_count"`
	LastError    string    `json:"last_error,omitempty"`
	FailedStage  Stage     `json:"failed_stage,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewJob(videoID string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:           uuid.NewString(),
		VideoID:      videoID,
		Stage:        StageQueued,
		AttemptCount: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (j *Job) Terminal() bool {
	return j.Stage == StageCompleted || j.Stage == StageFailed
}

// Advance moves the job to the next stage. Only the immediate successor
// is legal.
func (j *Job) Advance(to Stage) error {
	next, ok := forward[j.Stage]
	if !ok {
		return fmt.Errorf("stage[%s] is terminal", j.Stage)
	}
	if to != next {
		return fmt.Errorf("illegal transition %s -> %s", j.Stage, to)
	}
	j.Stage = to
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail records the failing stage and error kind and moves the job to
// FAILED.
func (j *Job) Fail(kind ErrorKind, err error) {
	if j.Terminal() {
		return
	}
	j.FailedStage = j.Stage
	j.ErrorKind = kind
	if err != nil {
		j.LastError = err.Error()
	}
	j.Stage = StageFailed
	j.UpdatedAt = time.Now().UTC()
}

// Retry re-admits a failed job: back to QUEUED with the attempt counter
// bumped. Completed jobs cannot be retried.
func (j *Job) Retry() error {
	if j.Stage != StageFailed {
		return fmt.Errorf("cannot retry job in stage[%s]", j.Stage)
	}
	j.Stage = StageQueued
	j.AttemptCount++
	j.FailedStage = ""
	j.ErrorKind = ""
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// StageError carries the stage and error kind a pipeline failure was
// recorded with.
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage[%s] %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
