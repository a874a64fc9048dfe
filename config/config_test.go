package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/pose"
)

// arenaXML is a calibration file as written by the OpenCV calibration sample
const arenaXML = `<?xml version="1.0"?>
<opencv_storage>
<calibration_Time>"Wed 31 Aug 2016 14:02:11 BST"</calibration_Time>
<nrOfFrames>25</nrOfFrames>
<image_Width>1600</image_Width>
<image_Height>1600</image_Height>
<board_Width>9</board_Width>
<board_Height>6</board_Height>
<square_Size>25.</square_Size>
<Camera_Matrix type_id="opencv-matrix">
  <rows>3</rows>
  <cols>3</cols>
  <dt>d</dt>
  <data>
    1.6523377095739027e+03 0. 7.9950000000000000e+02 0.
    1.6523377095739027e+03 7.9950000000000000e+02 0. 0. 1.</data></Camera_Matrix>
<Distortion_Coefficients type_id="opencv-matrix">
  <rows>5</rows>
  <cols>1</cols>
  <dt>d</dt>
  <data>
    -1.9494404472059521e-01 2.9965832643639467e-01 0. 0.
    -3.4329528058097419e-01</data></Distortion_Coefficients>
<Avg_Reprojection_Error>3.4202131932328758e-01</Avg_Reprojection_Error>
</opencv_storage>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 240.75, cfg.WorldZ())
	assert.Equal(t, pose.BottomEdge, cfg.EdgePair())
	assert.False(t, cfg.UseOpenCV())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "session.json", `{"target_id": 7, "object_height": 6.5, "edge": [1, 0]}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.TargetID)
	assert.Equal(t, 6.5, cfg.ObjectHeight)
	assert.Equal(t, 245.75, cfg.CameraHeight)
	assert.Equal(t, pose.EdgePair{Head: 1, Tail: 0}, cfg.EdgePair())
	assert.Equal(t, Default().CameraMatrix, cfg.CameraMatrix)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "session.yaml", `target_id: 1`))
	assert.ErrorContains(t, err, ".json extension")

	_, err = Load(writeFile(t, dir, "unknown.json", `{"target": 1}`))
	assert.ErrorContains(t, err, "unknown field")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to stat")
}

func TestLoadWithCalibrationFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "out_camera_data.xml", arenaXML)
	path := writeFile(t, dir, "session.json", `{"calibration_file": "out_camera_data.xml", "camera_matrix": [1,0,0,0,1,0,0,0,1]}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDeltaSlice(t, Default().CameraMatrix, cfg.CameraMatrix, 1e-9)
	assert.InDeltaSlice(t, Default().DistCoeffs, cfg.DistCoeffs, 1e-12)
}

func TestValidateErrors(t *testing.T) {

	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"short matrix", func(c *Config) { c.CameraMatrix = c.CameraMatrix[:8] }, "camera_matrix"},
		{"singular matrix", func(c *Config) { c.CameraMatrix = make([]float64, 9) }, "camera_matrix"},
		{"bad coefficients", func(c *Config) { c.DistCoeffs = []float64{1, 2} }, "dist_coeffs"},
		{"camera below plane", func(c *Config) { c.CameraHeight = 3 }, "camera_height"},
		{"same edge corner", func(c *Config) { c.Edge = [2]int{1, 1} }, "edge"},
		{"unknown undistorter", func(c *Config) { c.Undistorter = "fisheye" }, "undistorter"},
		{"negative target", func(c *Config) { c.TargetID = -1 }, "target_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *tagtrack.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %T: %v", err, err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestTrackerFromConfig(t *testing.T) {
	cfg := Default()
	cfg.TargetID = 3

	tracker, err := cfg.Tracker()
	require.NoError(t, err)

	obs := pose.Observation{
		ID: 3,
		Corners: [pose.Corners]r2.Point{
			{X: 789.5, Y: 789.5}, {X: 809.5, Y: 789.5}, {X: 809.5, Y: 809.5}, {X: 789.5, Y: 809.5},
		},
	}

	got := tracker.Update([]pose.Observation{obs}, cfg.TargetID, pose.Pose{})

	// symmetric about the principal point so the centre is undistorted
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 0.0, got.Y, 1e-9)
	assert.InDelta(t, 0.0, got.Angle, 1e-9)
}

func TestTrackerFromInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Edge = [2]int{0, 9}

	_, err := cfg.Tracker()
	assert.Error(t, err)
}

func TestTrackerRequiresCVCameraForOpenCV(t *testing.T) {
	cfg := Default()
	cfg.Undistorter = UndistortOpenCV

	_, err := cfg.Tracker()

	var cfgErr *tagtrack.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "undistorter", cfgErr.Field)
}
