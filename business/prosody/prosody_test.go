package prosody_test

import (
	"testing"

	"github.com/undothis/Moodling-sub000/business/prosody"
	"github.com/undothis/Moodling-sub000/foundation/external/acoustic"
)

func TestPitchTrajectory(t *testing.T) {
	t.Run("monotonically rising series classifies rising", func(t *testing.T) {
		t.Parallel()

		var series []float64
		for hz := 100.0; hz <= 300; hz += 10 {
			series = append(series, hz)
		}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, PitchHz: series})
		if got := f.Pitch.Trajectory; got != prosody.TrajectoryRising {
			t.Fatalf("trajectory = %q, want rising", got)
		}
	})

	t.Run("flat series classifies stable", func(t *testing.T) {
		t.Parallel()

		series := make([]float64, 40)
		for i := range series {
			series[i] = 150
		}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, PitchHz: series})
		if got := f.Pitch.Trajectory; got != prosody.TrajectoryStable {
			t.Fatalf("trajectory = %q, want stable", got)
		}
	})

	t.Run("falling series classifies falling", func(t *testing.T) {
		t.Parallel()

		var series []float64
		for hz := 300.0; hz >= 100; hz -= 10 {
			series = append(series, hz)
		}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, PitchHz: series})
		if got := f.Pitch.Trajectory; got != prosody.TrajectoryFalling {
			t.Fatalf("trajectory = %q, want falling", got)
		}
	})

	t.Run("no voiced frames yields neutral record", func(t *testing.T) {
		t.Parallel()

		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, PitchHz: []float64{0, 0, 0}})
		if f.Pitch.Trajectory != prosody.TrajectoryStable {
			t.Fatalf("trajectory = %q, want stable", f.Pitch.Trajectory)
		}
		if f.Pitch.MeanHz != 0 || f.Pitch.RangeHz != 0 {
			t.Fatalf("expected zero pitch record, got %+v", f.Pitch)
		}
	})

	t.Run("classification is idempotent", func(t *testing.T) {
		t.Parallel()

		raw := &acoustic.RawFeatures{Duration: 60, PitchHz: []float64{100, 140, 180, 220, 260, 300}}
		first := prosody.Analyze(raw)
		second := prosody.Analyze(raw)
		if first != second {
			t.Fatalf("analyze not pure: %+v vs %+v", first, second)
		}
	})
}

func TestPausePattern(t *testing.T) {
	// One minute of audio makes pause count equal pauses-per-minute.
	pauses := func(n int) []acoustic.Silence {
		out := make([]acoustic.Silence, n)
		for i := range out {
			start := float64(i) * 2
			out[i] = acoustic.Silence{Start: start, End: start + 0.5}
		}
		return out
	}

	cases := []struct {
		name  string
		count int
		want  string
	}{
		{"one per minute is minimal", 1, prosody.PauseMinimal},
		{"exactly two per minute is normal", 2, prosody.PauseNormal},
		{"exactly five per minute is frequent", 5, prosody.PauseFrequent},
		{"exactly ten per minute is excessive", 10, prosody.PauseExcessive},
		{"twelve per minute is excessive", 12, prosody.PauseExcessive},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, Silences: pauses(tc.count)})
			if got := f.Pauses.Pattern; got != tc.want {
				t.Fatalf("pattern = %q, want %q (rate %.1f)", got, tc.want, f.Pauses.FrequencyPerMinute)
			}
		})
	}

	t.Run("runs under 200ms are not pauses", func(t *testing.T) {
		t.Parallel()
		silences := []acoustic.Silence{
			{Start: 1, End: 1.1},
			{Start: 5, End: 5.19},
			{Start: 10, End: 10.5},
		}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 60, Silences: silences})
		if got := f.Pauses.FrequencyPerMinute; got != 1 {
			t.Fatalf("frequency = %v, want 1", got)
		}
	})
}

func TestVolumeTrajectory(t *testing.T) {
	t.Run("rising loudness classifies increasing", func(t *testing.T) {
		t.Parallel()
		db := []float64{50, 50, 50, 50, 56, 56, 56, 56}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 30, DbSeries: db})
		if got := f.Volume.Trajectory; got != prosody.VolumeIncreasing {
			t.Fatalf("trajectory = %q, want increasing", got)
		}
	})

	t.Run("steady loudness classifies stable", func(t *testing.T) {
		t.Parallel()
		db := []float64{60, 61, 60, 61, 60, 61, 60, 61}
		f := prosody.Analyze(&acoustic.RawFeatures{Duration: 30, DbSeries: db})
		if got := f.Volume.Trajectory; got != prosody.VolumeStable {
			t.Fatalf("trajectory = %q, want stable", got)
		}
	})
}

func TestCompositeScores(t *testing.T) {
	lively := &acoustic.RawFeatures{
		Duration:   60,
		PitchHz:    []float64{120, 160, 130, 185, 140, 200, 125, 170, 150, 190},
		OnsetTimes: onsetsAtRate(140*2, 60),
		Silences: []acoustic.Silence{
			{Start: 10, End: 10.6}, {Start: 25, End: 25.4},
			{Start: 40, End: 40.8}, {Start: 52, End: 52.5},
		},
		DbSeries:   []float64{55, 62, 57, 64, 56, 63, 58, 61},
		JitterPct:  0.5,
		ShimmerPct: 1.0,
		HNR:        20,
	}
	monotone := &acoustic.RawFeatures{
		Duration:   60,
		PitchHz:    flatSeries(150, 40),
		OnsetTimes: onsetsAtRate(60*2, 60),
		DbSeries:   flatSeries(60, 40),
		JitterPct:  4,
		ShimmerPct: 6,
		HNR:        8,
	}

	fl := prosody.Analyze(lively)
	fm := prosody.Analyze(monotone)

	t.Run("scores stay in bounds", func(t *testing.T) {
		t.Parallel()
		for name, v := range map[string]float64{
			"aliveness": fl.Aliveness, "naturalness": fl.Naturalness,
			"expressiveness": fl.Expressiveness, "engagement": fl.Engagement,
			"monotone aliveness": fm.Aliveness, "monotone engagement": fm.Engagement,
		} {
			if v < 0 || v > 100 {
				t.Fatalf("%s = %v outside [0,100]", name, v)
			}
		}
	})

	t.Run("lively delivery outscores monotone", func(t *testing.T) {
		t.Parallel()
		if fl.Aliveness <= fm.Aliveness {
			t.Fatalf("aliveness lively=%v monotone=%v", fl.Aliveness, fm.Aliveness)
		}
		if fl.Expressiveness <= fm.Expressiveness {
			t.Fatalf("expressiveness lively=%v monotone=%v", fl.Expressiveness, fm.Expressiveness)
		}
		if fl.Engagement <= fm.Engagement {
			t.Fatalf("engagement lively=%v monotone=%v", fl.Engagement, fm.Engagement)
		}
	})
}

// onsetsAtRate spreads n onsets evenly over duration seconds.
func onsetsAtRate(n int, duration float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = duration * float64(i) / float64(n)
	}
	return out
}

func flatSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
