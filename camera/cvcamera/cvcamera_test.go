package cvcamera

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/camera"
	"github.com/swdee/go-tagtrack/config"
	"github.com/swdee/go-tagtrack/pose"
)

// newArenaModel returns the camera model of the default configuration
func newArenaModel(t *testing.T) *camera.Model {
	t.Helper()
	m, err := config.Default().Model()
	require.NoError(t, err)
	return m
}

func TestUndistorterAgreesWithIterative(t *testing.T) {

	m := newArenaModel(t)

	cv := New(m)
	defer cv.Close()

	assert.Same(t, m, cv.Model())

	points := []r2.Point{
		{X: 799.5, Y: 799.5},
		{X: 400, Y: 420},
		{X: 1210.75, Y: 395.25},
		{X: 1150, Y: 1230},
		{X: 380.5, Y: 1190},
	}

	want := m.Undistort(points)
	got := cv.Undistort(points)

	require.Len(t, got, len(points))

	for i := range points {
		// OpenCV stops after a fixed number of iterations
		assert.InDelta(t, want[i].X, got[i].X, 0.05, "x of point %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, 0.05, "y of point %d", i)
	}
}

func TestUndistorterEmpty(t *testing.T) {
	cv := New(newArenaModel(t))
	defer cv.Close()

	assert.Empty(t, cv.Undistort(nil))
}

func TestTrackerSelectsUndistorter(t *testing.T) {

	obs := pose.Observation{
		ID: 3,
		Corners: [pose.Corners]r2.Point{
			{X: 400, Y: 400}, {X: 440, Y: 400}, {X: 440, Y: 440}, {X: 400, Y: 440},
		},
	}

	var poses []pose.Pose

	for _, kind := range []string{config.UndistortIterative, config.UndistortOpenCV} {
		cfg := config.Default()
		cfg.TargetID = 3
		cfg.Undistorter = kind

		tracker, closeFn, err := Tracker(cfg)
		require.NoError(t, err, kind)

		poses = append(poses, tracker.Update([]pose.Observation{obs}, 3, pose.Pose{}))
		require.NoError(t, closeFn())
	}

	assert.InDelta(t, poses[0].X, poses[1].X, 0.05)
	assert.InDelta(t, poses[0].Y, poses[1].Y, 0.05)
	assert.InDelta(t, poses[0].Angle, poses[1].Angle, 0.1)
}

func TestTrackerInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Undistorter = config.UndistortOpenCV
	cfg.Edge = [2]int{0, 9}

	_, _, err := Tracker(cfg)

	var cfgErr *tagtrack.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "edge", cfgErr.Field)
}
