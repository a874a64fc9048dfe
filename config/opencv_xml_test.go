package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-tagtrack"
)

func TestParseOpenCVXML(t *testing.T) {
	cal, err := ParseOpenCVXML([]byte(arenaXML))
	require.NoError(t, err)

	assert.Equal(t, 1600, cal.Width)
	assert.Equal(t, 1600, cal.Height)
	assert.Equal(t, []float64{
		1.6523377095739027e+03, 0, 7.9950000000000000e+02,
		0, 1.6523377095739027e+03, 7.9950000000000000e+02,
		0, 0, 1,
	}, cal.CameraMatrix)
	assert.Equal(t, []float64{
		-1.9494404472059521e-01, 2.9965832643639467e-01, 0, 0, -3.4329528058097419e-01,
	}, cal.DistCoeffs)
}

func TestParseOpenCVXMLLowerCaseNames(t *testing.T) {
	doc := `<?xml version="1.0"?>
<opencv_storage>
<camera_matrix type_id="opencv-matrix"><rows>3</rows><cols>3</cols><dt>d</dt>
<data>900. 0. 640. 0. 880. 360. 0. 0. 1.</data></camera_matrix>
<distortion_coefficients type_id="opencv-matrix"><rows>1</rows><cols>4</cols><dt>f</dt>
<data>-0.28 0.07 0.0012 -0.0009</data></distortion_coefficients>
</opencv_storage>`

	cal, err := ParseOpenCVXML([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []float64{900, 0, 640, 0, 880, 360, 0, 0, 1}, cal.CameraMatrix)
	assert.Equal(t, []float64{-0.28, 0.07, 0.0012, -0.0009}, cal.DistCoeffs)
}

func TestParseOpenCVXMLErrors(t *testing.T) {

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			"missing distortion",
			strings.Replace(arenaXML, "Distortion_Coefficients", "Other", 2),
			"dist_coeffs",
		},
		{
			"missing camera matrix",
			strings.Replace(arenaXML, "Camera_Matrix", "Other", 2),
			"camera_matrix",
		},
		{
			"wrong count",
			strings.Replace(arenaXML, "<rows>5</rows>", "<rows>6</rows>", 1),
			"dist_coeffs",
		},
		{
			"not a matrix",
			strings.Replace(arenaXML, `<Camera_Matrix type_id="opencv-matrix">`, `<Camera_Matrix>`, 1),
			"camera_matrix",
		},
		{
			"wrong shape",
			strings.Replace(strings.Replace(arenaXML, "<rows>3</rows>", "<rows>1</rows>", 1), "<cols>3</cols>", "<cols>9</cols>", 1),
			"camera_matrix",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOpenCVXML([]byte(tc.doc))
			require.Error(t, err)

			var cfgErr *tagtrack.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %T: %v", err, err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}

	_, err := ParseOpenCVXML([]byte("<opencv_storage><unclosed>"))
	assert.Error(t, err)
}
