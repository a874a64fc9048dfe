package pose

import (
	"fmt"
	"strconv"

	"github.com/golang/geo/r2"
)

// Corners is the number of corners of a marker
const Corners = 4

// Observation is a single marker detected in the current frame
type Observation struct {
	// ID is the marker identifier decoded by the detector
	ID int
	// Corners are the image points of the marker corners in the detector's
	// winding order
	Corners [Corners]r2.Point
}

// Pose is the estimated position and heading of a marker
type Pose struct {
	// X and Y are the position on the world plane, in the units the camera
	// and object heights are given in
	X float64
	Y float64
	// Angle is the heading in degrees in the range (-180, 180]
	Angle float64
	// Pixel is the undistorted image centroid of the marker the pose was
	// computed from
	Pixel r2.Point
}

// String formats the pose the way it is logged to the terminal
func (p Pose) String() string {
	return fmt.Sprintf("X = %s Y = %s Angle = %s", short(p.X), short(p.Y), short(p.Angle))
}

// short formats a value to three significant digits
func short(v float64) string {
	return strconv.FormatFloat(v, 'g', 3, 64)
}
