package tagtrack

import "fmt"

// ConfigurationError is returned when the camera calibration or tracking
// configuration is malformed.  It is only produced while setting up the
// pipeline, never during per frame processing.
type ConfigurationError struct {
	// Field is the name of the offending configuration value
	Field string
	// Reason describes what is wrong with it
	Reason string
}

// NewConfigurationError returns a ConfigurationError for the given field
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// InvalidGeometryError is returned when the corners of a detected marker are
// degenerate and no finite heading can be computed from them.
type InvalidGeometryError struct {
	// MarkerID is the identifier of the marker the corners belong to, or -1
	// when unknown
	MarkerID int
	// Reason describes the degeneracy
	Reason string
}

// NewInvalidGeometryError returns an InvalidGeometryError for an unknown
// marker
func NewInvalidGeometryError(format string, args ...interface{}) *InvalidGeometryError {
	return &InvalidGeometryError{
		MarkerID: -1,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (e *InvalidGeometryError) Error() string {
	if e.MarkerID < 0 {
		return fmt.Sprintf("invalid marker geometry: %s", e.Reason)
	}
	return fmt.Sprintf("invalid marker geometry for id %d: %s", e.MarkerID, e.Reason)
}
