package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/undothis/Moodling-sub000/business/facial"
	"github.com/undothis/Moodling-sub000/business/prosody"
)

// ErrMalformedResponse marks a generation response that could not be
// parsed. The call yields zero insights; the job records the failure
// and may retry the whole call, never a partial repair.
var ErrMalformedResponse = errors.New("malformed generation response")

// Generator produces a text completion for a system+user prompt pair.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Request carries everything the orchestrator folds into one prompt.
// Prosody and Facial are nil when the corresponding analysis was not
// computed; their context blocks are then omitted.
type Request struct {
	VideoID    string
	VideoTitle string
	Transcript string
	Prosody    *prosody.Features
	Facial     *facial.Summary
}

type Extractor struct {
	gen        Generator
	charBudget int
	maxResults int
	log        *zap.SugaredLogger
}

func NewExtractor(gen Generator, transcriptCharBudget, maxResults int, log *zap.SugaredLogger) *Extractor {
	if transcriptCharBudget <= 0 {
		transcriptCharBudget = 24000
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Extractor{
		gen:        gen,
		charBudget: transcriptCharBudget,
		maxResults: maxResults,
		log:        log,
	}
}

const truncationMarker = "\n[transcript truncated]"

const systemPrompt = `You are an analyst extracting coaching insights from spoken-word transcripts.
An insight is a concrete, transferable observation about how a person thinks, feels or acts, phrased so a coach could use it.

You MUST respond with ONLY valid JSON of the shape:
{"insights": [{"title": "...", "body": "...", "category": "...", "coaching_implication": "...", "timestamp": "MM:SS", "emotional_context": "...", "quality": 0-100, "specificity": 0-100, "actionability": 0-100, "safety": 0-100, "novelty": 0-100, "confidence": 0.0-1.0}]}

Rules:
- "category" must be one of the allowed categories given in the user message.
- "timestamp" is the approximate MM:SS position in the transcript where the insight is grounded, or null.
- Score every dimension honestly; do not inflate.
- No markdown, no preamble, no explanation.`

// Extract builds the prompt, delegates generation and parses the
// response into unscored candidates. Lifecycle scoring is the caller's
// step. The second return is the number of out-of-taxonomy categories
// that were coerced to the default.
func (e *Extractor) Extract(ctx context.Context, req Request) ([]Insight, int, error) {
	completion, err := e.gen.Complete(ctx, systemPrompt, e.buildUserPrompt(req))
	if err != nil {
		return nil, 0, fmt.Errorf("generation: %w", err)
	}

	return e.parse(req.VideoID, completion)
}

func (e *Extractor) buildUserPrompt(req Request) string {
	transcript := req.Transcript
	if len(transcript) > e.charBudget {
		// Back the cut off to a rune boundary so the prompt never
		// carries a split multi-byte character.
		cut := e.charBudget
		for cut > 0 && !utf8.RuneStart(transcript[cut]) {
			cut--
		}
		transcript = transcript[:cut] + truncationMarker
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract up to %d coaching insights from this conversation.\n\n", e.maxResults)
	if req.VideoTitle != "" {
		fmt.Fprintf(&sb, "VIDEO: %s\n\n", req.VideoTitle)
	}
	sb.WriteString("TRANSCRIPT:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n")

	if req.Prosody != nil {
		p := req.Prosody
		sb.WriteString("\nVOCAL DELIVERY:\n")
		fmt.Fprintf(&sb, "- pitch: mean %.0fHz, trajectory %s\n", p.Pitch.MeanHz, p.Pitch.Trajectory)
		fmt.Fprintf(&sb, "- speech rate: %.0f WPM, pauses %s (%.1f/min)\n",
			p.Rhythm.SpeechRateWpm, p.Pauses.Pattern, p.Pauses.FrequencyPerMinute)
		fmt.Fprintf(&sb, "- volume: %s, range %.1fdB\n", p.Volume.Trajectory, p.Volume.RangeDb)
		fmt.Fprintf(&sb, "- aliveness %.0f, naturalness %.0f, expressiveness %.0f, engagement %.0f (each /100)\n",
			p.Aliveness, p.Naturalness, p.Expressiveness, p.Engagement)
	}

	if req.Facial != nil {
		f := req.Facial
		sb.WriteString("\nFACIAL EXPRESSION:\n")
		fmt.Fprintf(&sb, "- dominant emotion: %s (intensity %.2f)\n", f.DominantEmotion, f.Intensity)
		fmt.Fprintf(&sb, "- authenticity %.0f, engagement %.0f (each /100)\n", f.Authenticity, f.Engagement)
	}

	sb.WriteString("\nALLOWED CATEGORIES:\n")
	sb.WriteString(strings.Join(Categories, ", "))
	sb.WriteString("\n\nRespond ONLY with valid JSON. No markdown. No explanation.")

	return sb.String()
}

type insightPayload struct {
	Insights []struct {
		Title               string  `json:"title"`
		Body                string  `json:"body"`
		Category            string  `json:"category"`
		CoachingImplication string  `json:"coaching_implication"`
		Timestamp           string  `json:"timestamp"`
		EmotionalContext    string  `json:"emotional_context"`
		Quality             float64 `json:"quality"`
		Specificity         float64 `json:"specificity"`
		Actionability       float64 `json:"actionability"`
		Safety              float64 `json:"safety"`
		Novelty             float64 `json:"novelty"`
		Confidence          float64 `json:"confidence"`
	} `json:"insights"`
}

func (e *Extractor) parse(videoID, completion string) ([]Insight, int, error) {
	cleaned := stripFence(completion)

	var payload insightPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		e.log.Errorw("insight: parse", "ERROR", err, "videoID", videoID)
		return nil, 0, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}

	var coerced int
	out := make([]Insight, 0, len(payload.Insights))
	for _, raw := range payload.Insights {
		if len(out) == e.maxResults {
			break
		}

		category, valid := NormalizeCategory(raw.Category)
		if !valid {
			coerced++
			e.log.Infow("insight: category coerced",
				"videoID", videoID, "raw", raw.Category, "coerced", category)
		}

		out = append(out, Insight{
			ID:                  uuid.NewString(),
			VideoID:             videoID,
			Title:               strings.TrimSpace(raw.Title),
			Body:                strings.TrimSpace(raw.Body),
			Category:            category,
			CoachingImplication: strings.TrimSpace(raw.CoachingImplication),
			Timestamp:           strings.TrimSpace(raw.Timestamp),
			EmotionalContext:    strings.TrimSpace(raw.EmotionalContext),
			Quality:             raw.Quality,
			Specificity:         raw.Specificity,
			Actionability:       raw.Actionability,
			Safety:              raw.Safety,
			Novelty:             raw.Novelty,
			Confidence:          raw.Confidence,
		})
	}

	return out, coerced, nil
}

// stripFence removes one wrapping markdown code fence if the generator
// ignored the no-markdown instruction.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
