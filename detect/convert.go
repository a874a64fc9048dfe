package detect

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/swdee/go-tagtrack/pose"
	"gocv.io/x/gocv"
)

// ToObservations takes the marker corners and ids returned by the ArUco
// detector and converts them into pose observations, keeping the detector's
// order of markers and corners
func ToObservations(corners [][]gocv.Point2f, ids []int) ([]pose.Observation, error) {

	if len(corners) != len(ids) {
		return nil, fmt.Errorf("detector returned %d corner sets for %d ids", len(corners), len(ids))
	}

	obs := make([]pose.Observation, 0, len(ids))

	for i, id := range ids {

		if len(corners[i]) != pose.Corners {
			return nil, fmt.Errorf("marker %d has %d corners", id, len(corners[i]))
		}

		o := pose.Observation{ID: id}

		for j, c := range corners[i] {
			o.Corners[j] = r2.Point{X: float64(c.X), Y: float64(c.Y)}
		}

		obs = append(obs, o)
	}

	return obs, nil
}

// ImagePoints rounds the corners of an observation to integer pixels for
// drawing
func ImagePoints(obs pose.Observation) []image.Point {

	pts := make([]image.Point, pose.Corners)

	for i, c := range obs.Corners {
		pts[i] = image.Pt(int(math.Round(c.X)), int(math.Round(c.Y)))
	}

	return pts
}
