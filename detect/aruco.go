package detect

import (
	"fmt"

	"github.com/swdee/go-tagtrack"
	"github.com/swdee/go-tagtrack/pose"
	"gocv.io/x/gocv"
)

// Detector finds ArUco markers in video frames
type Detector struct {
	detector gocv.ArucoDetector
	// Rejected holds the candidate corners the last Detect call discarded,
	// useful for diagnosing detection problems
	Rejected [][]gocv.Point2f
}

// NewDetector returns a Detector for the named predefined dictionary using
// OpenCV's default detector parameters
func NewDetector(dictionary string) (*Detector, error) {

	code, err := LookupDictionary(dictionary)

	if err != nil {
		return nil, tagtrack.NewConfigurationError("dictionary", "%v", err)
	}

	dict := gocv.GetPredefinedDictionary(code)
	params := gocv.NewArucoDetectorParameters()

	return &Detector{
		detector: gocv.NewArucoDetectorWithParams(dict, params),
	}, nil
}

// Detect returns the markers found in the image
func (d *Detector) Detect(img gocv.Mat) ([]pose.Observation, error) {

	if img.Empty() {
		return nil, fmt.Errorf("error source Mat is empty")
	}

	corners, ids, rejected := d.detector.DetectMarkers(img)
	d.Rejected = rejected

	return ToObservations(corners, ids)
}

// Close frees the OpenCV detector
func (d *Detector) Close() {
	d.detector.Close()
}
