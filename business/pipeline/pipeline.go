// Package pipeline sequences the per-video stages, owns the job state
// machine and applies the retry/failure policy across a batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/undothis/Moodling-sub000/business/diarize"
	"github.com/undothis/Moodling-sub000/business/facial"
	"github.com/undothis/Moodling-sub000/business/insight"
	"github.com/undothis/Moodling-sub000/business/prosody"
	"github.com/undothis/Moodling-sub000/foundation/pool"
	"github.com/undothis/Moodling-sub000/foundation/pubsub"
	"github.com/undothis/Moodling-sub000/foundation/state"
	"github.com/undothis/Moodling-sub000/foundation/timeline"
)

func spanOf(start, end float64) timeline.Span {
	return timeline.Span{Start: start, End: end}
}

type Pipeline struct {
	config Config
	logger *zap.SugaredLogger

	media     MediaFetcher
	asr       Transcriber
	diarizer  Diarizer
	acoustic  AcousticAnalyzer
	vision    VisionAnalyzer
	extractor *insight.Extractor

	pool   *pool.Pool
	state  *state.State
	broker *pubsub.Broker[JobEvent]
	sink   EventSink
}

func New(s Settings) *Pipeline {
	return &Pipeline{
		config:    s.Config,
		logger:    s.Logger,
		media:     s.Media,
		asr:       s.ASR,
		diarizer:  s.Diarizer,
		acoustic:  s.Acoustic,
		vision:    s.Vision,
		extractor: s.Extractor,
		pool:      s.Pool,
		state:     s.State,
		broker:    s.Broker,
		sink:      s.Sink,
	}
}

// Process drives one job through every stage. Stage N's output is fully
// materialized before stage N+1 reads it; cancellation is honored at
// stage boundaries only.
func (p *Pipeline) Process(ctx context.Context, job *Job) (*Outcome, error) {
	out := &Outcome{Job: job}

	// DOWNLOADING
	if err := p.enter(ctx, job, StageDownloading); err != nil {
		return out, err
	}
	m, err := p.media.Fetch(ctx, job.VideoID)
	if err != nil {
		return out, p.fail(job, KindAcquisitionFailure, err)
	}
	out.Media = m

	// TRANSCRIBING — no fallback; an unusable transcript is fatal.
	if err := p.enter(ctx, job, StageTranscribing); err != nil {
		return out, err
	}
	tr, err := p.asr.Transcribe(ctx, m.AudioPath, p.config.Language)
	if err != nil {
		return out, p.fail(job, KindModelUnavailable, err)
	}

	duration := tr.Duration
	if duration <= 0 {
		duration = m.Duration
	}

	words := make([]diarize.Word, 0, len(tr.Words))
	for _, w := range tr.Words {
		words = append(words, diarize.Word{
			Span:       spanOf(w.Start, w.End),
			Text:       w.Text,
			Confidence: w.Confidence,
		})
	}

	// DIARIZING
	if err := p.enter(ctx, job, StageDiarizing); err != nil {
		return out, err
	}
	turns := p.diarizeTurns(ctx, job, m.AudioPath, duration)
	out.Merge = diarize.Merge(words, turns)
	if n := out.Merge.OverlappingTurns; n > 0 {
		p.logger.Infow("pipeline: overlapping diarization turns",
			"jobID", job.ID, "videoID", job.VideoID, "pairs", n)
	}
	out.Stats = diarize.Stats(out.Merge.Segments)
	out.Interviewer = diarize.IdentifyInterviewer(out.Stats)

	out.Transcript = out.Merge.Transcript()
	if strings.TrimSpace(out.Transcript) == "" {
		// Word timestamps may be absent. The flat text still makes a
		// usable transcript; only the complete absence of text is fatal.
		out.Transcript = strings.TrimSpace(tr.Text)
	}
	if out.Transcript == "" {
		return out, p.fail(job, KindModelUnavailable, errors.New("transcription produced no text"))
	}

	// ANALYZING — prosody and facial depend only on the media, so they
	// run concurrently and their failures stay isolated from each other
	// and from the job.
	if err := p.enter(ctx, job, StageAnalyzing); err != nil {
		return out, err
	}
	out.Prosody, out.Facial = p.analyze(ctx, m.AudioPath, m.VideoPath)

	// EXTRACTING
	if err := p.enter(ctx, job, StageExtracting); err != nil {
		return out, err
	}
	candidates, coerced, err := p.extractor.Extract(ctx, insight.Request{
		VideoID:    job.VideoID,
		VideoTitle: m.Title,
		Transcript: out.Transcript,
		Prosody:    out.Prosody,
		Facial:     out.Facial,
	})
	if err != nil {
		if errors.Is(err, insight.ErrMalformedResponse) {
			p.note(job, KindMalformedResponse, err.Error())
			p.logger.Errorw("pipeline: extraction parse",
				"ERROR", err, "jobID", job.ID, "kind", KindMalformedResponse)
			candidates = nil
		} else {
			return out, p.fail(job, KindModelUnavailable, err)
		}
	}
	if coerced > 0 {
		detail := fmt.Sprintf("%d categories coerced to %s", coerced, insight.DefaultCategory)
		p.note(job, KindInvalidCategory, detail)
		p.logger.Infow("pipeline: invalid categories",
			"jobID", job.ID, "kind", KindInvalidCategory, "coerced", coerced)
	}

	for i := range candidates {
		insight.Score(&candidates[i], p.config.Thresholds)
		candidates[i].Speaker = attributeSpeaker(out.Merge, candidates[i].Timestamp)
	}
	out.Insights = candidates

	// COMPLETED
	if err := job.Advance(StageCompleted); err != nil {
		return out, err
	}
	p.publish(job, nil)
	p.logger.Infow("pipeline: job completed",
		"jobID", job.ID, "videoID", job.VideoID,
		"segments", len(out.Merge.Segments), "insights", len(out.Insights))

	return out, nil
}

// diarizeTurns asks the diarization collaborator for speaker turns,
// dropping to the documented single-speaker fallback when it is
// unavailable. The downgrade sticks for the rest of the process.
func (p *Pipeline) diarizeTurns(ctx context.Context, job *Job, audioPath string, duration float64) []diarize.Turn {
	if p.state.Get(state.Diarizer) == state.Unavailable {
		return diarize.SingleSpeakerFallback(duration)
	}

	res, err := p.diarizer.Diarize(ctx, audioPath, p.config.MinSpeakers, p.config.MaxSpeakers)
	if err != nil {
		p.state.Set(state.Diarizer, state.Unavailable, err.Error())
		p.logger.Errorw("pipeline: diarization degraded to single speaker",
			"ERROR", err, "jobID", job.ID)
		return diarize.SingleSpeakerFallback(duration)
	}

	turns := make([]diarize.Turn, 0, len(res.Turns))
	for _, t := range res.Turns {
		turns = append(turns, diarize.Turn{Span: spanOf(t.Start, t.End), Speaker: t.Speaker})
	}
	if len(turns) == 0 {
		return diarize.SingleSpeakerFallback(duration)
	}
	return turns
}

// analyze runs the two ANALYZING tasks concurrently and joins them.
// The heavy reductions go through the worker pool so job goroutines
// stay free for I/O.
func (p *Pipeline) analyze(ctx context.Context, audioPath, videoPath string) (*prosody.Features, *facial.Summary) {
	var pf *prosody.Features
	var fs *facial.Summary

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		raw, err := p.acoustic.Features(ctx, audioPath, nil)
		if err != nil {
			p.state.Set(state.Acoustic, state.Unavailable, err.Error())
			p.logger.Errorw("pipeline: acoustic analysis skipped", "ERROR", err)
			return
		}
		_ = p.pool.Run(ctx, func() error {
			f := prosody.Analyze(raw)
			pf = &f
			return nil
		})
	}()

	go func() {
		defer wg.Done()
		res, err := p.vision.Analyze(ctx, videoPath, p.config.FrameSampleRate, nil)
		if err != nil {
			p.state.Set(state.Vision, state.Unavailable, err.Error())
			p.logger.Errorw("pipeline: facial analysis skipped", "ERROR", err)
			return
		}
		if res.Reduced && p.state.Get(state.Vision) == state.Full {
			p.state.Set(state.Vision, state.Degraded, "reduced mode: head pose and eye openness only")
			p.logger.Infow("pipeline: facial analysis degraded", "reason", p.state.Reason(state.Vision))
		}
		_ = p.pool.Run(ctx, func() error {
			s := facial.Aggregate(res.Frames)
			fs = &s
			return nil
		})
	}()

	wg.Wait()
	return pf, fs
}

// Export publishes one approved insight as a training example. Anything
// short of APPROVED is refused.
func (p *Pipeline) Export(ctx context.Context, ins insight.Insight, videoTitle, channel string) error {
	if !ins.ExportEligible() {
		return fmt.Errorf("insight[%s] status[%s] is not export eligible", ins.ID, ins.Status)
	}
	if p.sink == nil {
		return errors.New("no event sink configured")
	}
	return p.sink.PublishExport(ctx, insight.TrainingExample{
		Insight:    ins,
		VideoTitle: videoTitle,
		Channel:    channel,
		Timestamp:  ins.Timestamp,
	})
}

// =====================================================================================================================

// enter checks for cancellation and advances the job, publishing the
// transition.
func (p *Pipeline) enter(ctx context.Context, job *Job, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return p.fail(job, KindCancelled, err)
	}
	if err := job.Advance(stage); err != nil {
		return err
	}
	p.publish(job, nil)
	p.logger.Infow("pipeline: stage", "jobID", job.ID, "videoID", job.VideoID, "stage", stage)
	return nil
}

func (p *Pipeline) fail(job *Job, kind ErrorKind, err error) error {
	failedAt := job.Stage
	job.Fail(kind, err)
	p.publish(job, err)
	p.logger.Errorw("pipeline: job failed",
		"jobID", job.ID, "videoID", job.VideoID, "stage", failedAt, "kind", kind, "ERROR", err)
	return &StageError{Stage: failedAt, Kind: kind, Err: err}
}

func (p *Pipeline) publish(job *Job, err error) {
	event := JobEvent{
		JobID:   job.ID,
		VideoID: job.VideoID,
		Stage:   job.Stage,
		Kind:    job.ErrorKind,
		At:      time.Now().UTC(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	p.emit(event)
}

// note publishes a non-fatal anomaly on the running job: the stage
// continues, but listeners see the error kind.
func (p *Pipeline) note(job *Job, kind ErrorKind, detail string) {
	p.emit(JobEvent{
		JobID:   job.ID,
		VideoID: job.VideoID,
		Stage:   job.Stage,
		Kind:    kind,
		Error:   detail,
		At:      time.Now().UTC(),
	})
}

func (p *Pipeline) emit(event JobEvent) {
	if p.broker == nil {
		return
	}
	if err := p.broker.Publish(JobEventsTopic, event); err != nil {
		p.logger.Infow("pipeline: event dropped", "reason", err)
	}
}

// attributeSpeaker assigns an insight to whichever speaker owns the
// majority of words near its MM:SS timestamp label.
func attributeSpeaker(merge diarize.Result, timestamp string) string {
	ts, ok := parseTimestamp(timestamp)
	if !ok {
		return ""
	}

	const window = 30.0
	counts := make(map[string]int)
	for _, seg := range merge.Segments {
		for _, w := range seg.Words {
			mid := w.Midpoint()
			if mid >= ts-window && mid <= ts+window {
				counts[seg.Speaker]++
			}
		}
	}

	var best string
	var bestCount int
	for _, seg := range merge.Segments {
		if c := counts[seg.Speaker]; c > bestCount {
			best = seg.Speaker
			bestCount = c
		}
	}
	if best == "" {
		return merge.SpeakerAt(ts)
	}
	return best
}

// parseTimestamp reads "MM:SS" or "HH:MM:SS" labels.
func parseTimestamp(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + float64(n)
	}
	return total, true
}
