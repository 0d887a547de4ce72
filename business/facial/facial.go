// Package facial reduces per-frame facial measurements into one
// segment-level summary with derived authenticity and engagement
// scores.
package facial

import (
	"math"

	"github.com/undothis/Moodling-sub000/foundation/external/vision"
)

type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Summary is the durable per-segment aggregate. Every numeric field is
// the arithmetic mean across frames; DominantEmotion is recomputed from
// the averaged distribution rather than voted from frame-level
// dominants, which is deliberate policy.
type Summary struct {
	FrameCount      int                `json:"frame_count"`
	Emotions        map[string]float64 `json:"emotions"`
	DominantEmotion string             `json:"dominant_emotion"`
	Intensity       float64            `json:"intensity"`
	ActionUnits     map[string]float64 `json:"action_units"`
	HeadPose        HeadPose           `json:"head_pose"`
	EyeOpenness     float64            `json:"eye_openness"`

	Authenticity float64 `json:"authenticity"`
	Engagement   float64 `json:"engagement"`
}

// Aggregate reduces frames to one Summary. Zero frames yields an
// all-neutral default record, never an error.
func Aggregate(frames []vision.Frame) Summary {
	s := Summary{
		Emotions:        neutralDistribution(),
		DominantEmotion: "neutral",
		ActionUnits:     zeroActionUnits(),
	}
	if len(frames) == 0 {
		s.Authenticity = 50
		s.Engagement = 50
		return s
	}

	n := float64(len(frames))
	s.FrameCount = len(frames)

	for k := range s.Emotions {
		s.Emotions[k] = 0
	}
	for _, f := range frames {
		for _, label := range vision.EmotionLabels {
			s.Emotions[label] += f.Emotions[label] / n
		}
		for _, au := range vision.ActionUnitKeys {
			s.ActionUnits[au] += f.ActionUnits[au] / n
		}
		s.Intensity += f.Intensity / n
		s.HeadPose.Pitch += f.HeadPitch / n
		s.HeadPose.Yaw += f.HeadYaw / n
		s.HeadPose.Roll += f.HeadRoll / n
		s.EyeOpenness += f.EyeOpenness / n
	}

	s.DominantEmotion = dominant(s.Emotions)
	s.Authenticity = authenticity(s)
	s.Engagement = engagement(s)

	return s
}

func dominant(emotions map[string]float64) string {
	best := "neutral"
	bestScore := math.Inf(-1)
	for _, label := range vision.EmotionLabels {
		if emotions[label] > bestScore {
			best = label
			bestScore = emotions[label]
		}
	}
	return best
}

// authenticity scores the genuine-smile pattern: when happiness is
// high, cheek raiser (AU6) and lip-corner puller (AU12) firing together
// reads as genuine, either one alone reads as posed.
func authenticity(s Summary) float64 {
	const auPresent = 0.2

	score := 50.0
	if s.Emotions["happy"] > 0.5 {
		au6 := s.ActionUnits["AU06"]
		au12 := s.ActionUnits["AU12"]
		switch {
		case au6 > auPresent && au12 > auPresent:
			score += 25 + 50*math.Min(au6, au12)
		case au6 > auPresent || au12 > auPresent:
			score -= 20
		}
	}
	return clamp(score)
}

// engagement rewards open eyes, raised brows and a forward-facing head
// (yaw and pitch within ±15 degrees).
func engagement(s Summary) float64 {
	eyes := math.Min(1, s.EyeOpenness)
	brows := math.Min(1, (s.ActionUnits["AU01"]+s.ActionUnits["AU02"])/2)

	var forward float64
	if math.Abs(s.HeadPose.Yaw) <= 15 && math.Abs(s.HeadPose.Pitch) <= 15 {
		forward = 1
	} else {
		over := math.Max(math.Abs(s.HeadPose.Yaw), math.Abs(s.HeadPose.Pitch)) - 15
		forward = math.Max(0, 1-over/30)
	}

	return clamp(40*eyes + 30*brows + 30*forward)
}

func neutralDistribution() map[string]float64 {
	m := make(map[string]float64, len(vision.EmotionLabels))
	for _, label := range vision.EmotionLabels {
		m[label] = 0
	}
	m["neutral"] = 1
	return m
}

func zeroActionUnits() map[string]float64 {
	m := make(map[string]float64, len(vision.ActionUnitKeys))
	for _, au := range vision.ActionUnitKeys {
		m[au] = 0
	}
	return m
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
