package diarize

import "sort"

type SpeakerStats struct {
	Speaker             string  `json:"speaker"`
	SpeakingTime        float64 `json:"speaking_time"`
	SegmentCount        int     `json:"segment_count"`
	SpeakingPercentage  float64 `json:"speaking_percentage"`
	MeanSegmentDuration float64 `json:"mean_segment_duration"`
}

// Stats aggregates per-speaker speaking time over the merged segments.
// Percentages are shares of total speaking time, so they sum to 100
// whenever anyone spoke.
func Stats(segments []Segment) []SpeakerStats {
	byScore := make(map[string]*SpeakerStats)
	var order []string
	var total float64

	for _, seg := range segments {
		st, ok := byScore[seg.Speaker]
		if !ok {
			st = &SpeakerStats{Speaker: seg.Speaker}
			byScore[seg.Speaker] = st
			order = append(order, seg.Speaker)
		}
		d := seg.Duration()
		st.SpeakingTime += d
		st.SegmentCount++
		total += d
	}

	out := make([]SpeakerStats, 0, len(order))
	for _, speaker := range order {
		st := byScore[speaker]
		if total > 0 {
			st.SpeakingPercentage = st.SpeakingTime / total * 100
		}
		if st.SegmentCount > 0 {
			st.MeanSegmentDuration = st.SpeakingTime / float64(st.SegmentCount)
		}
		out = append(out, *st)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}

// IdentifyInterviewer applies the two-speaker heuristic: the minority
// speaker is the interviewer, accepted only when their share lies in
// [20,50]. Anything else returns "" rather than a guess.
func IdentifyInterviewer(stats []SpeakerStats) string {
	if len(stats) != 2 {
		return ""
	}

	minority := stats[0]
	if stats[1].SpeakingPercentage < minority.SpeakingPercentage {
		minority = stats[1]
	}

	if minority.SpeakingPercentage < 20 || minority.SpeakingPercentage > 50 {
		return ""
	}
	return minority.Speaker
}
