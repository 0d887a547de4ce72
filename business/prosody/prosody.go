// Package prosody converts raw acoustic measurement series into
// categorical trajectories and composite delivery scores. Everything in
// this package is a pure function of its input; no signal access
// happens here.
package prosody

import (
	"math"

	"github.com/undothis/Moodling-sub000/foundation/external/acoustic"
)

const (
	TrajectoryStable   = "stable"
	TrajectoryRising   = "rising"
	TrajectoryFalling  = "falling"
	TrajectoryVariable = "variable"

	VolumeStable     = "stable"
	VolumeIncreasing = "increasing"
	VolumeDecreasing = "decreasing"
	VolumeVariable   = "variable"

	PauseMinimal   = "minimal"
	PauseNormal    = "normal"
	PauseFrequent  = "frequent"
	PauseExcessive = "excessive"
)

// Silence runs shorter than this are articulation gaps, not pauses.
const minPauseSeconds = 0.2

type PitchFeatures struct {
	MeanHz     float64 `json:"mean_hz"`
	StdHz      float64 `json:"std_hz"`
	MinHz      float64 `json:"min_hz"`
	MaxHz      float64 `json:"max_hz"`
	RangeHz    float64 `json:"range_hz"`
	Trajectory string  `json:"trajectory"`
}

type RhythmFeatures struct {
	SpeechRateWpm    float64 `json:"speech_rate_wpm"`
	TempoVariability float64 `json:"tempo_variability"`
	DominantPattern  string  `json:"dominant_pattern"`
}

type PauseFeatures struct {
	FrequencyPerMinute float64 `json:"frequency_per_minute"`
	MeanDuration       float64 `json:"mean_duration"`
	Pattern            string  `json:"pattern"`
}

type VolumeFeatures struct {
	MeanDb     float64 `json:"mean_db"`
	RangeDb    float64 `json:"range_db"`
	StdDb      float64 `json:"std_db"`
	Trajectory string  `json:"trajectory"`
}

type VoiceQuality struct {
	JitterPct        float64 `json:"jitter_pct"`
	ShimmerPct       float64 `json:"shimmer_pct"`
	HarmonicsToNoise float64 `json:"harmonics_to_noise"`
}

// Features is the per-segment prosodic aggregate, immutable once
// computed.
type Features struct {
	Pitch        PitchFeatures  `json:"pitch"`
	Rhythm       RhythmFeatures `json:"rhythm"`
	Pauses       PauseFeatures  `json:"pauses"`
	Volume       VolumeFeatures `json:"volume"`
	VoiceQuality VoiceQuality   `json:"voice_quality"`

	Aliveness      float64 `json:"aliveness"`
	Naturalness    float64 `json:"naturalness"`
	Expressiveness float64 `json:"expressiveness"`
	Engagement     float64 `json:"engagement"`
}

// Analyze scores one segment's raw series.
func Analyze(raw *acoustic.RawFeatures) Features {
	f := Features{
		Pitch:  analyzePitch(raw.PitchHz),
		Rhythm: analyzeRhythm(raw.OnsetTimes, raw.Duration),
		Pauses: analyzePauses(raw.Silences, raw.Duration),
		Volume: analyzeVolume(raw.DbSeries),
		VoiceQuality: VoiceQuality{
			JitterPct:        raw.JitterPct,
			ShimmerPct:       raw.ShimmerPct,
			HarmonicsToNoise: raw.HNR,
		},
	}

	f.Aliveness = aliveness(f)
	f.Naturalness = naturalness(f)
	f.Expressiveness = expressiveness(f)
	f.Engagement = engagement(f)

	return f
}

func analyzePitch(series []float64) PitchFeatures {
	voiced := make([]float64, 0, len(series))
	for _, hz := range series {
		if hz > 0 {
			voiced = append(voiced, hz)
		}
	}
	if len(voiced) == 0 {
		return PitchFeatures{Trajectory: TrajectoryStable}
	}

	mean := meanOf(voiced)
	std := stdOf(voiced, mean)
	min, max := voiced[0], voiced[0]
	for _, hz := range voiced {
		if hz < min {
			min = hz
		}
		if hz > max {
			max = hz
		}
	}

	return PitchFeatures{
		MeanHz:     mean,
		StdHz:      std,
		MinHz:      min,
		MaxHz:      max,
		RangeHz:    max - min,
		Trajectory: pitchTrajectory(voiced, mean, std),
	}
}

// pitchTrajectory compares the first and last quarter of the voiced
// series against half a standard deviation.
func pitchTrajectory(voiced []float64, mean, std float64) string {
	q := len(voiced) / 4
	if q < 1 {
		q = 1
	}
	first := meanOf(voiced[:q])
	last := meanOf(voiced[len(voiced)-q:])
	diff := last - first
	threshold := 0.5 * std

	switch {
	case diff > threshold:
		return TrajectoryRising
	case diff < -threshold:
		return TrajectoryFalling
	case std > 0.1*mean:
		return TrajectoryVariable
	default:
		return TrajectoryStable
	}
}

// analyzeRhythm estimates speaking rate from onset density so the
// extractor works without a transcript. The 0.5 factor maps onsets
// (roughly syllables) to words.
func analyzeRhythm(onsets []float64, duration float64) RhythmFeatures {
	if duration <= 0 || len(onsets) == 0 {
		return RhythmFeatures{DominantPattern: "sparse"}
	}

	wpm := float64(len(onsets)) / duration * 60 * 0.5

	var variability float64
	if len(onsets) > 1 {
		intervals := make([]float64, 0, len(onsets)-1)
		for i := 1; i < len(onsets); i++ {
			intervals = append(intervals, onsets[i]-onsets[i-1])
		}
		m := meanOf(intervals)
		if m > 0 {
			variability = stdOf(intervals, m) / m
		}
	}

	return RhythmFeatures{
		SpeechRateWpm:    wpm,
		TempoVariability: variability,
		DominantPattern:  metricalPattern(wpm),
	}
}

func metricalPattern(wpm float64) string {
	switch {
	case wpm < 100:
		return "deliberate"
	case wpm < 160:
		return "moderate"
	default:
		return "rapid"
	}
}

func analyzePauses(silences []acoustic.Silence, duration float64) PauseFeatures {
	if duration <= 0 {
		return PauseFeatures{Pattern: PauseMinimal}
	}

	var count int
	var total float64
	for _, s := range silences {
		d := s.End - s.Start
		if d < minPauseSeconds {
			continue
		}
		count++
		total += d
	}

	perMinute := float64(count) / duration * 60

	var meanDur float64
	if count > 0 {
		meanDur = total / float64(count)
	}

	return PauseFeatures{
		FrequencyPerMinute: perMinute,
		MeanDuration:       meanDur,
		Pattern:            pausePattern(perMinute),
	}
}

func pausePattern(perMinute float64) string {
	switch {
	case perMinute < 2:
		return PauseMinimal
	case perMinute < 5:
		return PauseNormal
	case perMinute < 10:
		return PauseFrequent
	default:
		return PauseExcessive
	}
}

func analyzeVolume(db []float64) VolumeFeatures {
	if len(db) == 0 {
		return VolumeFeatures{Trajectory: VolumeStable}
	}

	mean := meanOf(db)
	std := stdOf(db, mean)
	min, max := db[0], db[0]
	for _, v := range db {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	q := len(db) / 4
	if q < 1 {
		q = 1
	}
	diff := meanOf(db[len(db)-q:]) - meanOf(db[:q])

	const dbThreshold = 3.0
	trajectory := VolumeStable
	switch {
	case diff > dbThreshold:
		trajectory = VolumeIncreasing
	case diff < -dbThreshold:
		trajectory = VolumeDecreasing
	case std > 5:
		trajectory = VolumeVariable
	}

	return VolumeFeatures{
		MeanDb:     mean,
		RangeDb:    max - min,
		StdDb:      std,
		Trajectory: trajectory,
	}
}

// =====================================================================================================================

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stdOf(v []float64, mean float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(v)))
}
