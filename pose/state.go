package pose

import "sort"

// entry is the last known pose of a marker and the frame it was seen in
type entry struct {
	pose     Pose
	lastSeen int
}

// State holds the last known pose of every marker tracked during a session.
// Once a marker has been seen its entry is only ever overwritten, never
// removed.  State is not safe for concurrent use, it is written by the frame
// loop alone.
type State struct {
	frame   int
	entries map[int]*entry
}

// NewState returns an empty tracking state
func NewState() *State {
	return &State{
		entries: make(map[int]*entry),
	}
}

// Step advances the state by one frame and updates the pose of marker id
// from the frame's observations.  It returns the resulting pose and whether
// it was freshly computed this frame.  When the marker was missed, or its
// detection was discarded as degenerate, the last known pose is returned, the
// zero Pose if it has never been seen.
func (s *State) Step(t *Tracker, observations []Observation, id int) (Pose, bool) {

	s.frame++

	var previous Pose

	if e, ok := s.entries[id]; ok {
		previous = e.pose
	}

	obs, ok := Last(observations, id)

	if !ok {
		return previous, false
	}

	next, err := t.Resolve(obs)

	if err != nil {
		Logf("discarding detection of marker %d: %v", id, err)
		return previous, false
	}

	s.entries[id] = &entry{
		pose:     next,
		lastSeen: s.frame,
	}

	return next, true
}

// Pose returns the last known pose of the marker and whether it has been
// seen at all
func (s *State) Pose(id int) (Pose, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Pose{}, false
	}
	return e.pose, true
}

// LastSeen returns the frame number the marker was last observed in
func (s *State) LastSeen(id int) (int, bool) {
	e, ok := s.entries[id]
	if !ok {
		return 0, false
	}
	return e.lastSeen, true
}

// Age returns the number of frames since the marker was last observed
func (s *State) Age(id int) (int, bool) {
	last, ok := s.LastSeen(id)
	if !ok {
		return 0, false
	}
	return s.frame - last, true
}

// Frame returns the number of frames stepped so far
func (s *State) Frame() int {
	return s.frame
}

// IDs returns the identifiers of all markers seen, in ascending order
func (s *State) IDs() []int {

	ids := make([]int, 0, len(s.entries))

	for id := range s.entries {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
