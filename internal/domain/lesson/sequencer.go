package lesson

// Sequencer walks an ordered list of segments. Moves past either end
// stay on the boundary segment.
type Sequencer struct {
	segments []Segment
	idx      int
}

func NewSequencer(segments []Segment) *Sequencer {
	return &Sequencer{segments: append([]Segment(nil), segments...)}
}

// Current returns the segment under the cursor, or false when empty.
func (s *Sequencer) Current() (Segment, bool) {
	if s.idx < 0 || s.idx >= len(s.segments) {
		return Segment{}, false
	}
	return s.segments[s.idx], true
}

func (s *Sequencer) Next() (Segment, bool) {
	if s.idx < len(s.segments)-1 {
		s.idx++
	}
	return s.Current()
}

func (s *Sequencer) Prev() (Segment, bool) {
	if s.idx > 0 {
		s.idx--
	}
	return s.Current()
}

// Seek moves to index, clamped into range.
func (s *Sequencer) Seek(index int) {
	switch {
	case len(s.segments) == 0 || index < 0:
		s.idx = 0
	case index >= len(s.segments):
		s.idx = len(s.segments) - 1
	default:
		s.idx = index
	}
}

func (s *Sequencer) Index() int { return s.idx }

func (s *Sequencer) Total() int { return len(s.segments) }
