package input

import "sync"

// State is a mutable input source shared between whoever produces input
// (a keyboard console, a test) and the controller that consumes it.
type State struct {
	mu          sync.Mutex
	horizontal  float64
	forward     float64
	jumpHeld    bool
	jumpPending bool
}

func NewState() *State {
	return &State{}
}

func (s *State) SetAxes(horizontal, forward float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = horizontal
	s.forward = forward
}

func (s *State) SetHorizontal(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = v
}

func (s *State) SetForward(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forward = v
}

// PressJump arms a single jump trigger. Holding the button does not re-arm
// it until ReleaseJump is called.
func (s *State) PressJump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.jumpHeld {
		s.jumpPending = true
	}
	s.jumpHeld = true
}

func (s *State) ReleaseJump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jumpHeld = false
}

func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = 0
	s.forward = 0
	s.jumpHeld = false
	s.jumpPending = false
}

func (s *State) Horizontal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.horizontal
}

func (s *State) Forward() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forward
}

// JumpTriggered reports and consumes a pending jump.
func (s *State) JumpTriggered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	triggered := s.jumpPending
	s.jumpPending = false
	return triggered
}
