package timeline_test

import (
	"testing"

	"github.com/undothis/Moodling-sub000/foundation/timeline"
)

func TestSpan(t *testing.T) {
	t.Run("midpoint", func(t *testing.T) {
		t.Parallel()
		s := timeline.Span{Start: 2, End: 6}
		if got := s.Midpoint(); got != 4 {
			t.Fatalf("midpoint = %v, want 4", got)
		}
	})

	t.Run("zero length midpoint", func(t *testing.T) {
		t.Parallel()
		s := timeline.Span{Start: 3, End: 3}
		if got := s.Midpoint(); got != 3 {
			t.Fatalf("midpoint = %v, want 3", got)
		}
	})

	t.Run("contains is closed on both ends", func(t *testing.T) {
		t.Parallel()
		s := timeline.Span{Start: 1, End: 2}
		for _, instant := range []float64{1, 1.5, 2} {
			if !s.Contains(instant) {
				t.Fatalf("expected %v to be contained in [1,2]", instant)
			}
		}
		for _, instant := range []float64{0.999, 2.001} {
			if s.Contains(instant) {
				t.Fatalf("expected %v to be outside [1,2]", instant)
			}
		}
	})

	t.Run("overlaps", func(t *testing.T) {
		t.Parallel()
		a := timeline.Span{Start: 0, End: 5}
		b := timeline.Span{Start: 4, End: 9}
		c := timeline.Span{Start: 6, End: 7}
		if !a.Overlaps(b) || !b.Overlaps(a) {
			t.Fatal("expected [0,5] and [4,9] to overlap")
		}
		if a.Overlaps(c) {
			t.Fatal("expected [0,5] and [6,7] not to overlap")
		}
	})

	t.Run("duration", func(t *testing.T) {
		t.Parallel()
		s := timeline.Span{Start: 1.5, End: 4}
		if got := s.Duration(); got != 2.5 {
			t.Fatalf("duration = %v, want 2.5", got)
		}
	})
}
