package pose

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/swdee/go-tagtrack"
)

// EdgePair names the two marker corners whose connecting edge defines the
// heading.  The heading is the direction from Tail to Head.
type EdgePair struct {
	Head int
	Tail int
}

// BottomEdge is the edge from corner 3 to corner 2 of an ArUco marker, which
// is the bottom edge in the detector's clockwise winding order
var BottomEdge = EdgePair{Head: 2, Tail: 3}

// Validate checks both corner indices address distinct marker corners
func (e EdgePair) Validate() error {

	if e.Head < 0 || e.Head >= Corners || e.Tail < 0 || e.Tail >= Corners {
		return tagtrack.NewConfigurationError("edge",
			"corner indices %d,%d out of range [0-%d)", e.Head, e.Tail, Corners)
	}

	if e.Head == e.Tail {
		return tagtrack.NewConfigurationError("edge",
			"head and tail must be different corners, got %d", e.Head)
	}

	return nil
}

// Points returns the head and tail points of the edge from the given corners
func (e EdgePair) Points(corners []r2.Point) (head, tail r2.Point) {
	return corners[e.Head], corners[e.Tail]
}

// Heading returns the angle in degrees of the vector from b to a, computed
// as atan2(a.Y-b.Y, a.X-b.X).  Coincident or non finite points have no
// heading and return an InvalidGeometryError.
func Heading(a, b r2.Point) (float64, error) {

	if !finite(a) || !finite(b) {
		return 0, tagtrack.NewInvalidGeometryError("non finite edge points %v, %v", a, b)
	}

	if a == b {
		return 0, tagtrack.NewInvalidGeometryError("coincident edge points %v", a)
	}

	angle := math.Atan2(a.Y-b.Y, a.X-b.X) * 180 / math.Pi

	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0, tagtrack.NewInvalidGeometryError("angle is nan for edge points %v, %v", a, b)
	}

	// atan2 returns -180 for a vector on the negative x axis with y of -0
	if angle == -180 {
		angle = 180
	}

	return angle, nil
}

func finite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
