package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/golang/geo/r2"
	"github.com/swdee/go-tagtrack/pose"
	"gocv.io/x/gocv"
)

// MarkerStyle defines the parameters used for drawing a tracked marker
type MarkerStyle struct {
	// OutlineOffset is the distance in pixels the outline is drawn outside
	// of the detected corners
	OutlineOffset float64
	LineThickness int
	// ArrowLength is the length in pixels of the heading arrow
	ArrowLength  int
	CentreRadius int
	Font         Font
}

// DefaultMarkerStyle returns default marker style settings
func DefaultMarkerStyle() MarkerStyle {
	return MarkerStyle{
		OutlineOffset: 4,
		LineThickness: 1,
		ArrowLength:   30,
		CentreRadius:  3,
		Font:          DefaultFont(),
	}
}

// Marker draws the outline of an observed marker, its undistorted centre and
// heading arrow and a label with its name and pose.  All image coordinates
// are multiplied by scale so the overlay can be drawn on a resized frame.
func Marker(img *gocv.Mat, obs pose.Observation, p pose.Pose, name string,
	scale float64, style MarkerStyle) {

	clr := MarkerColor(obs.ID)

	outline := Outline(obs.Corners[:], scale, style.OutlineOffset)

	if len(outline) > 0 {
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{outline})
		gocv.Polylines(img, pv, true, clr, style.LineThickness)
		pv.Close()
	}

	centre := scaled(p.Pixel, scale)
	gocv.Circle(img, centre, style.CentreRadius, clr, -1)

	// image y axis points down, so the heading angle is clockwise on screen
	rad := p.Angle * math.Pi / 180
	tip := image.Pt(
		centre.X+int(math.Round(float64(style.ArrowLength)*math.Cos(rad))),
		centre.Y+int(math.Round(float64(style.ArrowLength)*math.Sin(rad))),
	)
	gocv.ArrowedLine(img, centre, tip, clr, style.LineThickness)

	if name == "" {
		name = fmt.Sprintf("id %d", obs.ID)
	}

	text := fmt.Sprintf("%s %s", name, p)

	top := outline
	if len(top) == 0 {
		top = []image.Point{centre}
	}

	Label(img, text, image.Pt(minX(top), minY(top)-style.LineThickness), style.Font, clr)
}

// Outline returns the marker corners scaled and grown outwards by offset
// pixels.  Corners that do not form a polygon are returned scaled only.
func Outline(corners []r2.Point, scale, offset float64) []image.Point {

	// convert the corner points to Clipper Path
	var path clipper.Path

	for _, c := range corners {
		pt := scaled(c, scale)
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	// create a ClipperOffset object and add the path
	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	// execute the offset operation
	solution := co.Execute(offset)

	var points []image.Point

	for _, sol := range solution {
		for _, pt := range sol {
			points = append(points, image.Pt(int(pt.X), int(pt.Y)))
		}
	}

	if len(points) == 0 {
		for _, pt := range path {
			points = append(points, image.Pt(int(pt.X), int(pt.Y)))
		}
	}

	return points
}

// scaled maps an image point to integer pixels at the given scale
func scaled(p r2.Point, scale float64) image.Point {
	return image.Pt(int(math.Round(p.X*scale)), int(math.Round(p.Y*scale)))
}

func minX(pts []image.Point) int {
	m := pts[0].X
	for _, p := range pts[1:] {
		if p.X < m {
			m = p.X
		}
	}
	return m
}

func minY(pts []image.Point) int {
	m := pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < m {
			m = p.Y
		}
	}
	return m
}

// Candidates outlines the marker candidates the detector rejected, used to
// diagnose lighting or focus problems
func Candidates(img *gocv.Mat, candidates [][]gocv.Point2f, scale float64,
	clr color.RGBA, thickness int) {

	if len(candidates) == 0 {
		return
	}

	outlines := make([][]image.Point, 0, len(candidates))

	for _, cand := range candidates {
		pts := make([]image.Point, len(cand))

		for i, c := range cand {
			pts[i] = scaled(r2.Point{X: float64(c.X), Y: float64(c.Y)}, scale)
		}

		outlines = append(outlines, pts)
	}

	pv := gocv.NewPointsVectorFromPoints(outlines)
	defer pv.Close()

	gocv.Polylines(img, pv, true, clr, thickness)
}
