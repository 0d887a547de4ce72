package pipeline

import (
	"context"
	"time"

	"github.com/undothis/Moodling-sub000/foundation/pubsub"
)

// BatchResult summarizes one RunBatch invocation.
type BatchResult struct {
	Outcomes  []*Outcome
	Failed    []*Job
	Skipped   int
	Cancelled bool
}

// RunBatch processes video IDs in order, at most MaxJobs of them. A
// failed job is retried in place up to MaxAttempts with FailureDelay
// between attempts; a job that exhausts its attempts is recorded and
// the batch moves on. Cancellation stops the batch between jobs.
func (p *Pipeline) RunBatch(ctx context.Context, videoIDs []string) BatchResult {
	var result BatchResult

	if p.config.MaxJobs > 0 && len(videoIDs) > p.config.MaxJobs {
		result.Skipped = len(videoIDs) - p.config.MaxJobs
		videoIDs = videoIDs[:p.config.MaxJobs]
		p.logger.Infow("batch: truncated to job cap", "cap", p.config.MaxJobs, "skipped", result.Skipped)
	}

	sub := p.subscribeEvents(ctx)
	defer sub()

	// A failed job stretches the gap before the next one: the longer
	// delay is backpressure against collaborator rate limits.
	prevFailed := false
	for i, videoID := range videoIDs {
		if ctx.Err() != nil {
			result.Cancelled = true
			p.logger.Infow("batch: cancelled", "remaining", len(videoIDs)-i)
			break
		}
		if i > 0 {
			delay := p.config.JobDelay
			if prevFailed {
				delay = p.config.FailureDelay
			}
			if !sleep(ctx, delay) {
				result.Cancelled = true
				break
			}
		}

		job := NewJob(videoID)
		out := p.runWithRetry(ctx, job)
		if job.Stage == StageCompleted {
			result.Outcomes = append(result.Outcomes, out)
			prevFailed = false
		} else {
			result.Failed = append(result.Failed, job)
			prevFailed = true
		}
	}

	p.logger.Infow("batch: finished",
		"completed", len(result.Outcomes), "failed", len(result.Failed), "skipped", result.Skipped)
	return result
}

// runWithRetry drives one job to COMPLETED or to a final FAILED after
// MaxAttempts. Cancellation is never retried.
func (p *Pipeline) runWithRetry(ctx context.Context, job *Job) *Outcome {
	for {
		out, err := p.Process(ctx, job)
		if err == nil {
			return out
		}
		if job.ErrorKind == KindCancelled {
			return out
		}
		if p.config.MaxAttempts > 0 && job.AttemptCount >= p.config.MaxAttempts {
			p.logger.Errorw("batch: job abandoned",
				"ERROR", err, "jobID", job.ID, "videoID", job.VideoID, "attempts", job.AttemptCount)
			return out
		}
		if !sleep(ctx, p.config.FailureDelay) {
			return out
		}
		if rerr := job.Retry(); rerr != nil {
			return out
		}
		p.logger.Infow("batch: retrying job",
			"jobID", job.ID, "videoID", job.VideoID, "attempt", job.AttemptCount)
	}
}

// subscribeEvents forwards broker job events to the external sink for
// the duration of a batch. The returned func tears the bridge down.
func (p *Pipeline) subscribeEvents(ctx context.Context) func() {
	if p.broker == nil || p.sink == nil {
		return func() {}
	}

	sub := pubsub.NewSubscriber[JobEvent](64)
	done := make(chan struct{})
	p.broker.Subscribe(JobEventsTopic, sub)

	go func() {
		defer close(done)
		for data := range sub.GetChannel() {
			if err := p.sink.PublishJobEvent(ctx, data); err != nil {
				p.logger.Errorw("batch: event delivery", "ERROR", err)
			}
		}
	}()

	return func() {
		if err := p.broker.UnSubscribe(JobEventsTopic, sub); err != nil {
			p.logger.Errorw("batch: unsubscribe", "ERROR", err)
		}
		<-done
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
