package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/camera"
	"github.com/swdee/go-tagtrack/pose"
	"gonum.org/v1/gonum/mat"
)

const (
	// UndistortIterative selects the pure Go Newton-Raphson undistorter
	UndistortIterative = "iterative"
	// UndistortOpenCV selects OpenCV's cv::undistortPoints
	UndistortOpenCV = "opencv"

	// maxFileSize is the largest configuration or calibration file accepted
	maxFileSize = 1 * 1024 * 1024
)

// Config is the tracking session configuration.  The camera block can be
// given inline or imported from an OpenCV calibration file with
// CalibrationFile.
type Config struct {
	// CameraMatrix is the 3x3 intrinsic matrix in row major order
	CameraMatrix []float64 `json:"camera_matrix,omitempty"`
	// DistCoeffs are the distortion coefficients in OpenCV order
	// (k1, k2, p1, p2, k3)
	DistCoeffs []float64 `json:"dist_coeffs,omitempty"`
	// CalibrationFile is an OpenCV XML calibration file to read the camera
	// matrix and distortion coefficients from, relative paths are resolved
	// against the config file directory
	CalibrationFile string `json:"calibration_file,omitempty"`

	// CameraHeight is the height of the camera above the floor
	CameraHeight float64 `json:"camera_height"`
	// ObjectHeight is the height of the marker above the surface the
	// object moves on
	ObjectHeight float64 `json:"object_height"`
	// SurfaceHeight is the height of the surface above the floor
	SurfaceHeight float64 `json:"surface_height"`

	// TargetID is the marker identifier to track
	TargetID int `json:"target_id"`
	// Dictionary is the ArUco dictionary name, eg: DICT_6X6_50
	Dictionary string `json:"dictionary"`
	// Edge is the pair of corner indices defining the marker heading
	// as [head, tail]
	Edge [2]int `json:"edge"`
	// Undistorter is either "iterative" or "opencv"
	Undistorter string `json:"undistorter"`
}

// Default returns the configuration of the overhead arena camera, calibrated
// on a 1600x1600 GenICam sensor, tracking marker 0 on a Psi-swarm robot
func Default() *Config {
	return &Config{
		CameraMatrix: []float64{
			1.6523377095739027e+03, 0.0, 7.9950000000000000e+02,
			0.0, 1.6523377095739027e+03, 7.9950000000000000e+02,
			0.0, 0.0, 1,
		},
		DistCoeffs: []float64{
			-1.9494404472059521e-01, 2.9965832643639467e-01,
			0.0, 0.0, -3.4329528058097419e-01,
		},
		CameraHeight:  245.75,
		ObjectHeight:  4.0,
		SurfaceHeight: 1.0,
		TargetID:      0,
		Dictionary:    "DICT_6X6_50",
		Edge:          [2]int{pose.BottomEdge.Head, pose.BottomEdge.Tail},
		Undistorter:   UndistortIterative,
	}
}

// Load reads a JSON configuration file.  Fields omitted from the file keep
// their Default values, unknown fields are rejected.
func Load(path string) (*Config, error) {

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := readLimited(cleanPath)

	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.CalibrationFile != "" {

		calPath := cfg.CalibrationFile

		if !filepath.IsAbs(calPath) {
			calPath = filepath.Join(filepath.Dir(cleanPath), calPath)
		}

		cal, err := LoadOpenCVXML(calPath)

		if err != nil {
			return nil, err
		}

		cfg.CameraMatrix = cal.CameraMatrix
		cfg.DistCoeffs = cal.DistCoeffs
	}

	return cfg, nil
}

// readLimited reads a whole file refusing anything over maxFileSize
func readLimited(path string) ([]byte, error) {

	info, err := os.Stat(path)

	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Validate checks the configuration can build a tracking pipeline.  All
// problems are reported as a ConfigurationError.
func (c *Config) Validate() error {

	if _, err := c.Model(); err != nil {
		return err
	}

	if err := c.EdgePair().Validate(); err != nil {
		return err
	}

	if z := c.WorldZ(); !(z > 0) {
		return tagtrack.NewConfigurationError("camera_height",
			"camera must be above the marker plane, world z is %v", z)
	}

	switch strings.ToLower(c.Undistorter) {
	case UndistortIterative, UndistortOpenCV, "":
	default:
		return tagtrack.NewConfigurationError("undistorter",
			"unknown undistorter %q, use %q or %q", c.Undistorter, UndistortIterative, UndistortOpenCV)
	}

	if c.TargetID < 0 {
		return tagtrack.NewConfigurationError("target_id", "must not be negative, got %d", c.TargetID)
	}

	return nil
}

// Model builds the camera Model from the calibration
func (c *Config) Model() (*camera.Model, error) {

	if len(c.CameraMatrix) != 9 {
		return nil, tagtrack.NewConfigurationError("camera_matrix",
			"expected 9 values, got %d", len(c.CameraMatrix))
	}

	return camera.NewModel(mat.NewDense(3, 3, c.CameraMatrix), c.DistCoeffs)
}

// WorldZ returns the distance from the camera to the marker plane
func (c *Config) WorldZ() float64 {
	return pose.WorldZ(c.CameraHeight, c.ObjectHeight, c.SurfaceHeight)
}

// EdgePair returns the heading edge
func (c *Config) EdgePair() pose.EdgePair {
	return pose.EdgePair{Head: c.Edge[0], Tail: c.Edge[1]}
}

// UseOpenCV reports if the OpenCV undistorter was selected
func (c *Config) UseOpenCV() bool {
	return strings.ToLower(c.Undistorter) == UndistortOpenCV
}

// Tracker builds the pose tracker described by the configuration with the
// pure Go undistorter.  Configurations selecting the OpenCV undistorter are
// built with cvcamera.Tracker instead.
func (c *Config) Tracker() (*pose.Tracker, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.UseOpenCV() {
		return nil, tagtrack.NewConfigurationError("undistorter",
			"%q requires the cvcamera package", UndistortOpenCV)
	}

	model, err := c.Model()

	if err != nil {
		return nil, err
	}

	return c.TrackerWith(model, model.Intrinsics)
}

// TrackerWith builds the pose tracker from the configured heights and edge
// using the given undistorter and intrinsics
func (c *Config) TrackerWith(u camera.Undistorter, in camera.Intrinsics) (*pose.Tracker, error) {
	return pose.NewTracker(u, pose.NewProjector(in, c.WorldZ()), c.EdgePair())
}
