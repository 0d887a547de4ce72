// Package insight owns candidate insight extraction, deterministic
// threshold scoring and the review lifecycle.
package insight

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusEdited   Status = "EDITED"
)

// Insight is one candidate coaching datum. Insights are never deleted;
// the status trail is the audit record.
type Insight struct {
	ID                  string  `json:"id"`
	VideoID             string  `json:"video_id"`
	Title               string  `json:"title"`
	Body                string  `json:"body"`
	Category            string  `json:"category"`
	CoachingImplication string  `json:"coaching_implication"`
	Timestamp           string  `json:"timestamp,omitempty"`
	Speaker             string  `json:"speaker,omitempty"`
	EmotionalContext    string  `json:"emotional_context,omitempty"`
	Confidence          float64 `json:"confidence"`

	Quality       float64 `json:"quality"`
	Specificity   float64 `json:"specificity"`
	Actionability float64 `json:"actionability"`
	Safety        float64 `json:"safety"`
	Novelty       float64 `json:"novelty"`

	Status           Status `json:"status"`
	FlaggedForReview bool   `json:"flagged_for_review"`
}

// Thresholds is the configured accept/reject/flag policy. Keeping it a
// value passed into Score means threshold tuning never touches control
// flow.
type Thresholds struct {
	MinQuality      float64
	MinSafety       float64
	ReviewThreshold float64
}

// Score applies the threshold policy to a freshly extracted candidate.
// There is no automatic APPROVED path: everything that survives the
// reject gates lands in PENDING for human disposition.
func Score(ins *Insight, th Thresholds) {
	if ins.Quality < th.MinQuality || ins.Safety < th.MinSafety {
		ins.Status = StatusRejected
	} else {
		ins.Status = StatusPending
	}
	ins.FlaggedForReview = ins.Quality < th.ReviewThreshold || ins.Safety < th.MinSafety
}

var ErrRejectedIsTerminal = errors.New("insight is rejected; re-scoring cannot un-reject")

// Rescore re-runs the threshold policy on an existing insight, used for
// manual entries and threshold changes. It may move a PENDING insight
// to REJECTED but never resurrects a REJECTED one.
func Rescore(ins *Insight, th Thresholds) error {
	if ins.Status == StatusRejected {
		return ErrRejectedIsTerminal
	}
	Score(ins, th)
	return nil
}

// Transition applies a human review decision. PENDING may move to
// APPROVED, REJECTED or EDITED; APPROVED and REJECTED are terminal.
func Transition(ins *Insight, to Status) error {
	switch ins.Status {
	case StatusPending, StatusEdited:
	default:
		return fmt.Errorf("status[%s] is terminal", ins.Status)
	}
	switch to {
	case StatusApproved, StatusRejected, StatusEdited:
		ins.Status = to
		return nil
	default:
		return fmt.Errorf("invalid transition %s -> %s", ins.Status, to)
	}
}

// ExportEligible reports whether the insight may leave the system as a
// training example.
func (i Insight) ExportEligible() bool {
	return i.Status == StatusApproved
}

// TrainingExample bundles one approved insight with enough recording
// context to stand alone as a supervised-training datum.
type TrainingExample struct {
	Insight    Insight `json:"insight"`
	VideoTitle string  `json:"video_title"`
	Channel    string  `json:"channel"`
	Timestamp  string  `json:"timestamp,omitempty"`
}
