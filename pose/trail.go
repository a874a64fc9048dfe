package pose

import (
	"sync"

	"github.com/golang/geo/r2"
)

// Trail keeps a bounded history of the undistorted image centroids of each
// tracked marker, used for drawing its path on the video
type Trail struct {
	// size is the maximum number of most recent points to keep per marker
	size int
	// history of points per marker id
	history map[int][]r2.Point
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum length
// of the trail kept for each marker.
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int][]r2.Point),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int][]r2.Point)
}

// Add appends the centroid of a freshly computed pose to the marker's history
func (t *Trail) Add(id int, p Pose) {
	t.Lock()
	defer t.Unlock()

	points := append(t.history[id], p.Pixel)

	// check if history is exceeded and drop oldest point
	if len(points) > t.size {
		points = points[len(points)-t.size:]
	}

	t.history[id] = points
}

// Points returns a copy of the point history for a marker id
func (t *Trail) Points(id int) []r2.Point {
	t.Lock()
	defer t.Unlock()

	points, exists := t.history[id]

	if !exists {
		// no history yet
		return nil
	}

	out := make([]r2.Point, len(points))
	copy(out, points)

	return out
}
