package record

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotSize is the width and height of a trajectory plot
const PlotSize = 8 * vg.Inch

// Tracks groups entries by marker id keeping their log order
func Tracks(entries []Entry) map[int][]Entry {

	tracks := make(map[int][]Entry)

	for _, e := range entries {
		tracks[e.ID] = append(tracks[e.ID], e)
	}

	return tracks
}

// Trajectory returns a plot of the world plane path of every marker in the
// log.  Both axes share the same range so distances are not distorted.
func Trajectory(entries []Entry) (*plot.Plot, error) {

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to plot")
	}

	p := plot.New()
	p.Title.Text = "Marker trajectory"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	tracks := Tracks(entries)

	ids := make([]int, 0, len(tracks))
	for id := range tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	xs := make([]float64, 0, len(entries))
	ys := make([]float64, 0, len(entries))

	for i, id := range ids {

		pts := make(plotter.XYs, 0, len(tracks[id]))

		for _, e := range tracks[id] {
			pts = append(pts, plotter.XY{X: e.X, Y: e.Y})
			xs = append(xs, e.X)
			ys = append(ys, e.Y)
		}

		line, err := plotter.NewLine(pts)

		if err != nil {
			return nil, fmt.Errorf("failed to create line for marker %d: %w", id, err)
		}

		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)

		// mark where the marker was first seen
		start, err := plotter.NewScatter(pts[:1])

		if err != nil {
			return nil, fmt.Errorf("failed to create start point for marker %d: %w", id, err)
		}

		start.GlyphStyle.Color = plotutil.Color(i)
		start.GlyphStyle.Shape = draw.CircleGlyph{}
		start.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, start)
		p.Legend.Add(fmt.Sprintf("id %d", id), line)
	}

	// square axes around the centre of the data
	span := floats.Max(xs) - floats.Min(xs)
	if s := floats.Max(ys) - floats.Min(ys); s > span {
		span = s
	}
	if span == 0 {
		span = 1
	}

	half := span/2 + span*0.05
	cx := (floats.Max(xs) + floats.Min(xs)) / 2
	cy := (floats.Max(ys) + floats.Min(ys)) / 2

	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// PlotTrajectory saves the trajectory of the logged markers to file, the
// image format is chosen by the file extension
func PlotTrajectory(entries []Entry, file string) error {

	p, err := Trajectory(entries)

	if err != nil {
		return err
	}

	if err := p.Save(PlotSize, PlotSize, file); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}

	return nil
}
