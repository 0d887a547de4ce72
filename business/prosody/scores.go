package prosody

import "math"

// The composite scores are bounded weighted combinations of already
// computed sub-features. They never touch raw series, which keeps each
// one independently testable.

// aliveness rewards naturalistic variation over flat delivery: moderate
// pause frequency, moderate dynamic range, a non-extreme pitch
// trajectory, and tempo variability.
func aliveness(f Features) float64 {
	pause := bandScore(f.Pauses.FrequencyPerMinute, 2, 8, 15)
	volume := bandScore(f.Volume.RangeDb, 5, 15, 10)

	var trajectory float64
	switch f.Pitch.Trajectory {
	case TrajectoryVariable:
		trajectory = 90
	case TrajectoryRising, TrajectoryFalling:
		trajectory = 75
	default:
		trajectory = 50
	}

	tempo := math.Min(100, f.Rhythm.TempoVariability*200)

	return clamp(0.3*pause + 0.25*volume + 0.25*trajectory + 0.2*tempo)
}

// naturalness rewards conversational pitch variation, a typical
// speaking rate and clean voice quality.
func naturalness(f Features) float64 {
	pitchStd := bandScore(f.Pitch.StdHz, 20, 50, 4)
	rate := bandScore(f.Rhythm.SpeechRateWpm, 100, 180, 1.5)
	quality := clamp(100 - (f.VoiceQuality.JitterPct+f.VoiceQuality.ShimmerPct)*10)

	return clamp(0.4*pitchStd + 0.35*rate + 0.25*quality)
}

// expressiveness is linear in pitch range and volume range only.
func expressiveness(f Features) float64 {
	return clamp(f.Pitch.RangeHz*0.3 + f.Volume.RangeDb*3)
}

// engagement rewards pitch variation, a speaking rate near 140 WPM and
// pause frequency in the conversational band.
func engagement(f Features) float64 {
	pitchStd := math.Min(100, f.Pitch.StdHz*2.5)
	rate := clamp(100 - math.Abs(f.Rhythm.SpeechRateWpm-140)*1.2)
	pause := bandScore(f.Pauses.FrequencyPerMinute, 3, 6, 20)

	return clamp(0.35*pitchStd + 0.35*rate + 0.3*pause)
}

// bandScore is 100 inside [lo,hi] and falls off linearly outside at
// falloff points per unit of distance.
func bandScore(v, lo, hi, falloff float64) float64 {
	var dist float64
	switch {
	case v < lo:
		dist = lo - v
	case v > hi:
		dist = v - hi
	default:
		return 100
	}
	return math.Max(0, 100-dist*falloff)
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
