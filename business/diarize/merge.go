// Package diarize fuses word-level transcripts with speaker turns and
// derives per-speaker statistics from the result.
package diarize

import (
	"sort"
	"strings"

	"github.com/undothis/Moodling-sub000/foundation/timeline"
)

type Word struct {
	timeline.Span
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type Turn struct {
	timeline.Span
	Speaker string `json:"speaker"`
}

// Segment is the fusion of words into one turn. Text is regenerated by
// concatenating the assigned words.
type Segment struct {
	timeline.Span
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Words   []Word `json:"words"`
}

type Result struct {
	Segments []Segment `json:"segments"`
	// Unassigned holds words whose midpoint fell outside every turn.
	// They are preserved for inspection instead of silently dropped,
	// but form no synthetic speaker segment.
	Unassigned []Word   `json:"unassigned,omitempty"`
	Speakers   []string `json:"speakers"`
	// OverlappingTurns counts input turn pairs that overlap in time.
	// The diarization collaborator promises disjoint turns but does not
	// enforce it; callers surface a nonzero count as a data-quality
	// signal.
	OverlappingTurns int `json:"overlapping_turns,omitempty"`
}

// FallbackSpeaker labels the single turn used when diarization is
// unavailable.
const FallbackSpeaker = "SPEAKER_00"

// SingleSpeakerFallback is the degraded-mode turn set: one turn
// spanning the whole recording.
func SingleSpeakerFallback(duration float64) []Turn {
	return []Turn{{
		Span:    timeline.Span{Start: 0, End: duration},
		Speaker: FallbackSpeaker,
	}}
}

// Merge assigns each word to the turn containing its midpoint. Turns
// are processed in start order regardless of input order (the
// diarization collaborator does not guarantee sorted, non-overlapping
// turns), and a word whose midpoint sits exactly on the shared boundary
// of two adjacent turns goes to the earlier turn. Turns that match no
// words produce no segment.
func Merge(words []Word, turns []Turn) Result {
	ordered := make([]Turn, len(turns))
	copy(ordered, turns)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	assigned := make([]bool, len(words))
	var result Result
	seen := make(map[string]bool)

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Start < ordered[i-1].End {
			result.OverlappingTurns++
		}
	}

	for _, turn := range ordered {
		var matched []Word
		for i, w := range words {
			if assigned[i] {
				continue
			}
			if turn.Contains(w.Midpoint()) {
				matched = append(matched, w)
				assigned[i] = true
			}
		}
		if len(matched) == 0 {
			continue
		}

		texts := make([]string, 0, len(matched))
		for _, w := range matched {
			texts = append(texts, w.Text)
		}

		result.Segments = append(result.Segments, Segment{
			Span:    turn.Span,
			Speaker: turn.Speaker,
			Text:    strings.TrimSpace(strings.Join(texts, " ")),
			Words:   matched,
		})
		if !seen[turn.Speaker] {
			seen[turn.Speaker] = true
			result.Speakers = append(result.Speakers, turn.Speaker)
		}
	}

	for i, w := range words {
		if !assigned[i] {
			result.Unassigned = append(result.Unassigned, w)
		}
	}

	return result
}

// SpeakerAt returns the speaker of the segment containing instant, or
// "" when no segment covers it.
func (r Result) SpeakerAt(instant float64) string {
	for _, seg := range r.Segments {
		if seg.Contains(instant) {
			return seg.Speaker
		}
	}
	return ""
}

// Transcript renders the merged segments as a speaker-labeled script.
func (r Result) Transcript() string {
	var sb strings.Builder
	for _, seg := range r.Segments {
		sb.WriteString(seg.Speaker)
		sb.WriteString(": ")
		sb.WriteString(seg.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
