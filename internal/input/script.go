package input

import "github.com/Versifine/stride/internal/config"

type Frame struct {
	Horizontal float64
	Forward    float64
	Jump       bool
	Turn       float64
	// Repeat is the number of ticks the frame lasts; 0 counts as 1.
	Repeat int
}

func FramesFromConfig(frames []config.FrameConfig) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		out = append(out, Frame{
			Horizontal: f.Horizontal,
			Forward:    f.Forward,
			Jump:       f.Jump,
			Turn:       f.Turn,
			Repeat:     f.Repeat,
		})
	}
	return out
}

// Script replays a fixed list of frames, one tick at a time. A frame's jump
// fires on its first tick only.
type Script struct {
	frames []Frame
	index  int
	tick   int
}

func NewScript(frames []Frame) *Script {
	return &Script{frames: frames}
}

func (s *Script) current() (Frame, bool) {
	if s.index >= len(s.frames) {
		return Frame{}, false
	}
	return s.frames[s.index], true
}

func (s *Script) Horizontal() float64 {
	f, _ := s.current()
	return f.Horizontal
}

func (s *Script) Forward() float64 {
	f, _ := s.current()
	return f.Forward
}

func (s *Script) JumpTriggered() bool {
	f, ok := s.current()
	return ok && f.Jump && s.tick == 0
}

func (s *Script) Turn() float64 {
	f, _ := s.current()
	return f.Turn
}

// Advance moves to the next tick.
func (s *Script) Advance() {
	f, ok := s.current()
	if !ok {
		return
	}
	s.tick++
	if s.tick >= max(f.Repeat, 1) {
		s.index++
		s.tick = 0
	}
}

func (s *Script) Done() bool {
	return s.index >= len(s.frames)
}

// Len is the total number of ticks in the script.
func (s *Script) Len() int {
	n := 0
	for _, f := range s.frames {
		n += max(f.Repeat, 1)
	}
	return n
}
