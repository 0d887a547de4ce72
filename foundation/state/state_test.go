package state_test

import (
	"testing"

	"github.com/undothis/Moodling-sub000/foundation/state"
)

func TestState(t *testing.T) {
	t.Run("collaborators start full", func(t *testing.T) {
		t.Parallel()
		s := state.NewState()
		for _, c := range []state.Collaborator{state.Diarizer, state.Vision, state.Acoustic} {
			if got := s.Get(c); got != state.Full {
				t.Fatalf("capability = %s, want full", got)
			}
			if s.Reason(c) != "" {
				t.Fatal("expected empty reason while full")
			}
		}
	})

	t.Run("downgrade sticks with reason", func(t *testing.T) {
		t.Parallel()
		s := state.NewState()
		s.Set(state.Diarizer, state.Unavailable, "connection refused")

		if got := s.Get(state.Diarizer); got != state.Unavailable {
			t.Fatalf("capability = %s, want unavailable", got)
		}
		if got := s.Reason(state.Diarizer); got != "connection refused" {
			t.Fatalf("reason = %q", got)
		}
		if got := s.Get(state.Vision); got != state.Full {
			t.Fatalf("vision capability = %s, want full", got)
		}
	})
}
