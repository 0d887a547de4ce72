package facial_test

import (
	"math"
	"testing"

	"github.com/undothis/Moodling-sub000/business/facial"
	"github.com/undothis/Moodling-sub000/foundation/external/vision"
)

func TestAggregate(t *testing.T) {
	t.Run("zero frames returns neutral default", func(t *testing.T) {
		t.Parallel()

		s := facial.Aggregate(nil)
		if s.FrameCount != 0 {
			t.Fatalf("frame count = %d", s.FrameCount)
		}
		if s.DominantEmotion != "neutral" {
			t.Fatalf("dominant = %q, want neutral", s.DominantEmotion)
		}
		if s.Emotions["neutral"] != 1 {
			t.Fatalf("neutral share = %v, want 1", s.Emotions["neutral"])
		}
		if s.Authenticity != 50 || s.Engagement != 50 {
			t.Fatalf("default scores = %v/%v, want 50/50", s.Authenticity, s.Engagement)
		}
	})

	t.Run("genuine smile raises authenticity above 50", func(t *testing.T) {
		t.Parallel()

		frames := make([]vision.Frame, 4)
		for i := range frames {
			frames[i] = vision.Frame{
				Emotions:    map[string]float64{"happy": 0.9, "neutral": 0.1},
				ActionUnits: map[string]float64{"AU06": 0.4, "AU12": 0.4},
			}
		}
		s := facial.Aggregate(frames)
		if s.Authenticity <= 50 {
			t.Fatalf("authenticity = %v, want > 50", s.Authenticity)
		}
		if s.DominantEmotion != "happy" {
			t.Fatalf("dominant = %q, want happy", s.DominantEmotion)
		}
	})

	t.Run("posed smile drops authenticity below 50", func(t *testing.T) {
		t.Parallel()

		frames := []vision.Frame{{
			Emotions:    map[string]float64{"happy": 0.8},
			ActionUnits: map[string]float64{"AU12": 0.6},
		}}
		s := facial.Aggregate(frames)
		if s.Authenticity >= 50 {
			t.Fatalf("authenticity = %v, want < 50", s.Authenticity)
		}
	})

	t.Run("dominant comes from averaged distribution not frame votes", func(t *testing.T) {
		t.Parallel()

		// Two frames lean weakly sad, one leans strongly happy. A
		// frame-level majority vote would say sad; the averaged
		// distribution says happy.
		frames := []vision.Frame{
			{Emotions: map[string]float64{"sad": 0.4, "happy": 0.3}},
			{Emotions: map[string]float64{"sad": 0.4, "happy": 0.3}},
			{Emotions: map[string]float64{"happy": 1.0}},
		}
		s := facial.Aggregate(frames)
		if s.DominantEmotion != "happy" {
			t.Fatalf("dominant = %q, want happy", s.DominantEmotion)
		}
	})

	t.Run("numeric fields are arithmetic means", func(t *testing.T) {
		t.Parallel()

		frames := []vision.Frame{
			{Intensity: 0.2, HeadYaw: -10, EyeOpenness: 0.8},
			{Intensity: 0.6, HeadYaw: 20, EyeOpenness: 0.4},
		}
		s := facial.Aggregate(frames)
		if math.Abs(s.Intensity-0.4) > 1e-9 {
			t.Fatalf("intensity = %v, want 0.4", s.Intensity)
		}
		if math.Abs(s.HeadPose.Yaw-5) > 1e-9 {
			t.Fatalf("yaw = %v, want 5", s.HeadPose.Yaw)
		}
		if math.Abs(s.EyeOpenness-0.6) > 1e-9 {
			t.Fatalf("eye openness = %v, want 0.6", s.EyeOpenness)
		}
	})

	t.Run("engagement rewards forward open face", func(t *testing.T) {
		t.Parallel()

		engaged := facial.Aggregate([]vision.Frame{{
			Emotions:    map[string]float64{"neutral": 1},
			ActionUnits: map[string]float64{"AU01": 0.6, "AU02": 0.6},
			EyeOpenness: 0.9,
			HeadYaw:     5, HeadPitch: -3,
		}})
		averted := facial.Aggregate([]vision.Frame{{
			Emotions:    map[string]float64{"neutral": 1},
			ActionUnits: map[string]float64{},
			EyeOpenness: 0.2,
			HeadYaw:     40, HeadPitch: 25,
		}})
		if engaged.Engagement <= averted.Engagement {
			t.Fatalf("engagement engaged=%v averted=%v", engaged.Engagement, averted.Engagement)
		}
	})
}
