// Package state tracks the capability of each external collaborator for
// the lifetime of the process. Collaborators that fail to initialize or
// answer are downgraded once and every job after that reads the
// downgraded capability instead of re-probing.
package state

import "sync"

type Collaborator int

const (
	Diarizer Collaborator = iota
	Vision
	Acoustic
)

type Capability int

const (
	Full Capability = iota
	Degraded
	Unavailable
)

func (c Capability) String() string {
	switch c {
	case Full:
		return "full"
	case Degraded:
		return "degraded"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

type State struct {
	sync.RWMutex

	caps    map[Collaborator]Capability
	reasons map[Collaborator]string
}

func NewState() *State {
	return &State{
		caps: map[Collaborator]Capability{
			Diarizer: Full,
			Vision:   Full,
			Acoustic: Full,
		},
		reasons: make(map[Collaborator]string),
	}
}

func (s *State) Get(c Collaborator) Capability {
	s.RLock()
	defer s.RUnlock()

	return s.caps[c]
}

// Reason returns why a collaborator was downgraded. Empty while Full.
func (s *State) Reason(c Collaborator) string {
	s.RLock()
	defer s.RUnlock()

	return s.reasons[c]
}

func (s *State) Set(c Collaborator, cap Capability, reason string) {
	s.Lock()
	defer s.Unlock()

	s.caps[c] = cap
	s.reasons[c] = reason
}
