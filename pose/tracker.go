package pose

import (
	"errors"
	"fmt"

	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/camera"
)

// Tracker recovers the pose of a marker from its detected corners.  It holds
// only immutable calibration, the last known pose of each marker is kept by
// the caller, see State.
type Tracker struct {
	undistorter camera.Undistorter
	projector   Projector
	edge        EdgePair
}

// NewTracker returns a Tracker that undistorts corners with the given
// Undistorter, takes the heading from the given edge and projects the
// centroid with the Projector
func NewTracker(u camera.Undistorter, p Projector, edge EdgePair) (*Tracker, error) {

	if u == nil {
		return nil, tagtrack.NewConfigurationError("undistorter", "not provided")
	}

	if err := edge.Validate(); err != nil {
		return nil, err
	}

	return &Tracker{
		undistorter: u,
		projector:   p,
		edge:        edge,
	}, nil
}

// Edge returns the corner pair the heading is taken from
func (t *Tracker) Edge() EdgePair {
	return t.edge
}

// Update computes the pose of the marker targetID from the observations of
// the current frame.  If the target was not observed, or its corners are
// degenerate, previous is returned unchanged and the caller should treat it
// as the last known, possibly stale, pose.  When the detector reports the
// target more than once the last observation wins.
func (t *Tracker) Update(observations []Observation, targetID int, previous Pose) Pose {

	obs, ok := Last(observations, targetID)

	if !ok {
		return previous
	}

	pose, err := t.Resolve(obs)

	if err != nil {
		Logf("discarding detection of marker %d: %v", targetID, err)
		return previous
	}

	return pose
}

// Last returns the final observation of the marker id in scan order
func Last(observations []Observation, id int) (Observation, bool) {

	for i := len(observations) - 1; i >= 0; i-- {
		if observations[i].ID == id {
			return observations[i], true
		}
	}

	return Observation{}, false
}

// Resolve computes the pose of a single observation.  Degenerate corners
// return an InvalidGeometryError.
func (t *Tracker) Resolve(obs Observation) (Pose, error) {

	corners := t.undistorter.Undistort(obs.Corners[:])

	if len(corners) != Corners {
		return Pose{}, fmt.Errorf("undistorter returned %d points for %d corners",
			len(corners), Corners)
	}

	head, tail := t.edge.Points(corners)

	angle, err := Heading(head, tail)

	if err != nil {
		var geomErr *tagtrack.InvalidGeometryError

		if errors.As(err, &geomErr) {
			geomErr.MarkerID = obs.ID
		}

		return Pose{}, err
	}

	centre := camera.Centroid(corners)

	if !finite(centre) {
		return Pose{}, &tagtrack.InvalidGeometryError{
			MarkerID: obs.ID,
			Reason:   fmt.Sprintf("non finite centroid %v", centre),
		}
	}
	world := t.projector.Project(centre)

	return Pose{
		X:     world.X,
		Y:     world.Y,
		Angle: angle,
		Pixel: centre,
	}, nil
}
