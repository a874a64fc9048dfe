// Package cvcamera undistorts marker corners with OpenCV.  It is kept apart
// from package camera so the pure Go pipeline builds without cgo.
package cvcamera

import (
	"github.com/golang/geo/r2"
	"github.com/swdee/go-tagtrack/camera"
	"github.com/swdee/go-tagtrack/config"
	"github.com/swdee/go-tagtrack/pose"
	"gocv.io/x/gocv"
)

// Undistorter undistorts points with OpenCV's cv::undistortPoints, re-projecting
// with the camera matrix so results are in pixel coordinates.  It holds C
// allocated Mats and must be closed after use.
type Undistorter struct {
	model        *camera.Model
	cameraMatrix gocv.Mat
	distCoeffs   gocv.Mat
	rectify      gocv.Mat
}

// New creates the OpenCV backed undistorter for the given camera Model
func New(m *camera.Model) *Undistorter {

	k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	km := m.Intrinsics.Matrix()

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			k.SetDoubleAt(i, j, km.At(i, j))
		}
	}

	coeffs := m.Distortion.Coefficients()
	d := gocv.NewMatWithSize(1, len(coeffs), gocv.MatTypeCV64F)

	for i, c := range coeffs {
		d.SetDoubleAt(0, i, c)
	}

	return &Undistorter{
		model:        m,
		cameraMatrix: k,
		distCoeffs:   d,
		rectify:      gocv.NewMat(),
	}
}

// Model returns the camera model the undistorter was created from
func (c *Undistorter) Model() *camera.Model {
	return c.model
}

// Undistort removes lens distortion from the given pixel points
func (c *Undistorter) Undistort(points []r2.Point) []r2.Point {

	if len(points) == 0 {
		return []r2.Point{}
	}

	// two channel Mat, each element holds an x,y pair
	src := gocv.NewMatWithSize(1, len(points), gocv.MatTypeCV64FC2)
	defer src.Close()

	for i, p := range points {
		src.SetDoubleAt(0, 2*i, p.X)
		src.SetDoubleAt(0, 2*i+1, p.Y)
	}

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.UndistortPoints(src, &dst, c.cameraMatrix, c.distCoeffs, c.rectify, c.cameraMatrix)

	out := make([]r2.Point, len(points))

	for i := range points {
		out[i] = r2.Point{
			X: dst.GetDoubleAt(0, 2*i),
			Y: dst.GetDoubleAt(0, 2*i+1),
		}
	}

	return out
}

// Close frees the C allocated Mats
func (c *Undistorter) Close() error {

	if err := c.cameraMatrix.Close(); err != nil {
		return err
	}

	if err := c.distCoeffs.Close(); err != nil {
		return err
	}

	return c.rectify.Close()
}

// Tracker builds the pose tracker described by the configuration, using the
// OpenCV undistorter when the configuration selects it and the pure Go one
// otherwise.  The returned close function frees the OpenCV resources.
func Tracker(cfg *config.Config) (*pose.Tracker, func() error, error) {

	if !cfg.UseOpenCV() {
		tracker, err := cfg.Tracker()

		if err != nil {
			return nil, nil, err
		}

		return tracker, func() error { return nil }, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	model, err := cfg.Model()

	if err != nil {
		return nil, nil, err
	}

	cv := New(model)

	tracker, err := cfg.TrackerWith(cv, cv.Model().Intrinsics)

	if err != nil {
		cv.Close()
		return nil, nil, err
	}

	return tracker, cv.Close, nil
}
