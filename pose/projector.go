package pose

import (
	"github.com/golang/geo/r2"
	"github.com/swdee/go-tagtrack/camera"
)

// WorldZ returns the distance from the camera down to the plane of the
// tracked marker
func WorldZ(cameraHeight, objectHeight, surfaceHeight float64) float64 {
	return cameraHeight - objectHeight - surfaceHeight
}

// Projector maps undistorted image points onto the marker plane at a fixed
// distance below the camera with the inverse pinhole model.  It assumes a
// strictly planar target at a constant height, no depth is estimated.
type Projector struct {
	intrinsics camera.Intrinsics
	worldZ     float64
}

// NewProjector returns a Projector for the given camera intrinsics and
// plane distance
func NewProjector(in camera.Intrinsics, worldZ float64) Projector {
	return Projector{
		intrinsics: in,
		worldZ:     worldZ,
	}
}

// WorldZ returns the plane distance the projector was configured with
func (p Projector) WorldZ() float64 {
	return p.worldZ
}

// Project maps an undistorted image point to the world plane
//
//	x = (u - cx) * z / fx
//	y = (v - cy) * z / fy
//
// Non finite input propagates to the output.
func (p Projector) Project(pt r2.Point) r2.Point {
	return r2.Point{
		X: (pt.X - p.intrinsics.Cx) * p.worldZ / p.intrinsics.Fx,
		Y: (pt.Y - p.intrinsics.Cy) * p.worldZ / p.intrinsics.Fy,
	}
}
