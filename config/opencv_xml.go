package config

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/swdee/go-tagtrack"
)

// Calibration is the camera block of an OpenCV calibration file
type Calibration struct {
	Width        int
	Height       int
	CameraMatrix []float64
	DistCoeffs   []float64
}

// xmlStorage is the root element written by cv::FileStorage
type xmlStorage struct {
	XMLName xml.Name  `xml:"opencv_storage"`
	Nodes   []xmlNode `xml:",any"`
}

// xmlNode is a top level node, either a scalar or an opencv-matrix
type xmlNode struct {
	XMLName xml.Name
	TypeID  string `xml:"type_id,attr"`
	Rows    int    `xml:"rows"`
	Cols    int    `xml:"cols"`
	Dt      string `xml:"dt"`
	Data    string `xml:"data"`
	Text    string `xml:",chardata"`
}

// LoadOpenCVXML reads the camera matrix and distortion coefficients from an
// OpenCV calibration XML file as written by the calibration sample,
// recognising both the Camera_Matrix / Distortion_Coefficients and the
// camera_matrix / distortion_coefficients node names
func LoadOpenCVXML(path string) (*Calibration, error) {

	data, err := readLimited(path)

	if err != nil {
		return nil, err
	}

	return ParseOpenCVXML(data)
}

// ParseOpenCVXML parses OpenCV calibration XML
func ParseOpenCVXML(data []byte) (*Calibration, error) {

	var storage xmlStorage

	if err := xml.Unmarshal(data, &storage); err != nil {
		return nil, fmt.Errorf("failed to parse calibration xml: %w", err)
	}

	cal := &Calibration{}
	var haveK, haveD bool
	var err error

	for _, node := range storage.Nodes {

		switch strings.ToLower(node.XMLName.Local) {
		case "image_width":
			cal.Width, err = strconv.Atoi(strings.TrimSpace(node.Text))

		case "image_height":
			cal.Height, err = strconv.Atoi(strings.TrimSpace(node.Text))

		case "camera_matrix":
			cal.CameraMatrix, err = node.matrix("camera_matrix")
			haveK = true

			if err == nil && (node.Rows != 3 || node.Cols != 3) {
				err = tagtrack.NewConfigurationError("camera_matrix",
					"expected 3x3 matrix, got %dx%d", node.Rows, node.Cols)
			}

		case "distortion_coefficients":
			cal.DistCoeffs, err = node.matrix("dist_coeffs")
			haveD = true
		}

		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.XMLName.Local, err)
		}
	}

	if !haveK {
		return nil, tagtrack.NewConfigurationError("camera_matrix", "not found in calibration xml")
	}

	if !haveD {
		return nil, tagtrack.NewConfigurationError("dist_coeffs", "not found in calibration xml")
	}

	return cal, nil
}

// matrix decodes the data of an opencv-matrix node
func (n xmlNode) matrix(field string) ([]float64, error) {

	if n.TypeID != "opencv-matrix" {
		return nil, tagtrack.NewConfigurationError(field, "expected opencv-matrix, got %q", n.TypeID)
	}

	if dt := strings.TrimSpace(n.Dt); dt != "d" && dt != "f" {
		return nil, tagtrack.NewConfigurationError(field, "unsupported element type %q", dt)
	}

	fields := strings.Fields(n.Data)

	if len(fields) != n.Rows*n.Cols {
		return nil, tagtrack.NewConfigurationError(field,
			"%dx%d matrix has %d values", n.Rows, n.Cols, len(fields))
	}

	values := make([]float64, len(fields))

	for i, f := range fields {

		v, err := strconv.ParseFloat(f, 64)

		if err != nil {
			return nil, tagtrack.NewConfigurationError(field, "invalid value %q", f)
		}

		values[i] = v
	}

	return values, nil
}
