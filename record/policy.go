package record

// Policy selects which frames produce a pose log row
type Policy int

const (
	// LogFresh writes a row only on frames the target was observed
	LogFresh Policy = iota
	// LogEveryFrame also repeats the last known pose on frames the target
	// was missed, once it has been seen
	LogEveryFrame
)

// Wants reports if a frame should be logged given whether the pose was
// observed this frame and whether the target has ever been seen
func (p Policy) Wants(fresh, seen bool) bool {
	if fresh {
		return true
	}
	return p == LogEveryFrame && seen
}
