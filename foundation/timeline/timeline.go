// Package timeline holds the temporal primitives shared by every stage
// of the pipeline. All timestamps are seconds from the start of the
// recording.
package timeline

// Span is a time interval in seconds. End is never less than Start.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Span) Duration() float64 {
	return s.End - s.Start
}

func (s Span) Midpoint() float64 {
	return s.Start + (s.End-s.Start)/2
}

// Contains reports whether instant lies in the closed interval
// [Start, End]. Both ends are inclusive; word assignment relies on this
// together with an earlier-turn-wins tie break in the merge.
func (s Span) Contains(instant float64) bool {
	return instant >= s.Start && instant <= s.End
}

func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}
