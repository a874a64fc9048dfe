package camera

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Undistorter maps distorted image points to their lens corrected
// equivalents in the same pixel coordinate frame
type Undistorter interface {
	Undistort(points []r2.Point) []r2.Point
}

// Model is a calibrated pinhole camera, the intrinsics paired with the lens
// distortion measured for them.  A Model is immutable and safe for
// concurrent use.
type Model struct {
	Intrinsics Intrinsics
	Distortion Distortion
}

// NewModel validates the camera matrix and distortion coefficients and
// returns the camera Model.  Malformed calibration returns a
// ConfigurationError.
func NewModel(k mat.Matrix, distCoeffs []float64) (*Model, error) {

	in, err := NewIntrinsics(k)

	if err != nil {
		return nil, err
	}

	dist, err := NewDistortion(distCoeffs)

	if err != nil {
		return nil, err
	}

	return &Model{
		Intrinsics: in,
		Distortion: dist,
	}, nil
}

// Undistort removes lens distortion from the given pixel points.  The points
// are normalized with the inverse camera matrix, the distortion model is
// inverted and the result re-projected with the same camera matrix, so the
// output stays in pixel coordinates.  The returned slice has the same length
// and order as the input.
func (m *Model) Undistort(points []r2.Point) []r2.Point {

	out := make([]r2.Point, len(points))

	for i, p := range points {
		out[i] = m.UndistortPoint(p)
	}

	return out
}

// UndistortPoint removes lens distortion from a single pixel point
func (m *Model) UndistortPoint(p r2.Point) r2.Point {

	in := m.Intrinsics

	x, y := m.Distortion.Invert((p.X-in.Cx)/in.Fx, (p.Y-in.Cy)/in.Fy)

	return r2.Point{
		X: x*in.Fx + in.Cx,
		Y: y*in.Fy + in.Cy,
	}
}

// Distort applies the forward lens distortion to an undistorted pixel point,
// giving the pixel the lens would actually image it at
func (m *Model) Distort(p r2.Point) r2.Point {

	in := m.Intrinsics

	x, y := m.Distortion.Apply((p.X-in.Cx)/in.Fx, (p.Y-in.Cy)/in.Fy)

	return r2.Point{
		X: x*in.Fx + in.Cx,
		Y: y*in.Fy + in.Cy,
	}
}

// Centroid returns the arithmetic mean of the given points.  Degenerate
// point sets are not special cased.
func Centroid(points []r2.Point) r2.Point {

	var sum r2.Point

	for _, p := range points {
		sum = sum.Add(p)
	}

	return sum.Mul(1 / float64(len(points)))
}
