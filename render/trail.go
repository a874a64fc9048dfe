package render

import (
	"image/color"

	"github.com/swdee/go-tagtrack/pose"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the marker.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
	}
}

// Trail draws the pixel history of each marker id as a poly line on the
// source image.  Points are multiplied by scale before drawing.
func Trail(img *gocv.Mat, ids []int, trail *pose.Trail, scale float64,
	style TrailStyle) {

	for _, id := range ids {

		lineClr := MarkerColor(id)

		if !style.LineSame {
			lineClr = style.LineColor
		}

		points := trail.Points(id)

		if len(points) < 2 {
			continue
		}

		prev := scaled(points[0], scale)

		for i := 1; i < len(points); i++ {
			cur := scaled(points[i], scale)
			gocv.Line(img, prev, cur, lineClr, style.LineThickness)
			prev = cur
		}
	}
}
