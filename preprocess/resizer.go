package preprocess

import (
	"image"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"
)

// DefaultPreviewScale is the factor frames are shrunk by for the preview
// stream, a 1600x1600 sensor frame becomes 400x400
const DefaultPreviewScale = 0.25

// Resizer defines the struct used for scaling camera frames down for preview
// and mapping full resolution image coordinates onto the preview
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// scale is the factor applied to both axes
	scale float64
	// interp is the interpolation used when scaling
	interp gocv.InterpolationFlags
}

// NewResizer returns a resizer that scales frames of the given source size
// by the scale factor.  A non positive scale uses DefaultPreviewScale.
func NewResizer(srcWidth, srcHeight int, scale float64) *Resizer {

	if scale <= 0 {
		scale = DefaultPreviewScale
	}

	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		scale:     scale,
		interp:    gocv.InterpolationCubic,
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// preCalc the destination dimensions, never smaller than a single pixel
func (r *Resizer) preCalc() {

	r.destWidth = int(float64(r.srcWidth) * r.scale)
	r.destHeight = int(float64(r.srcHeight) * r.scale)

	if r.destWidth < 1 {
		r.destWidth = 1
	}

	if r.destHeight < 1 {
		r.destHeight = 1
	}
}

// Resize scales the source image into dest
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {
	gocv.Resize(src, dest, image.Pt(r.destWidth, r.destHeight), 0, 0, r.interp)
}

// ToPreview maps a full resolution image point to preview pixel coordinates
func (r *Resizer) ToPreview(p r2.Point) image.Point {
	return image.Pt(int(p.X*r.scale+0.5), int(p.Y*r.scale+0.5))
}

// FromPreview maps a preview pixel back to full resolution image coordinates
func (r *Resizer) FromPreview(p image.Point) r2.Point {
	return r2.Point{X: float64(p.X) / r.scale, Y: float64(p.Y) / r.scale}
}

// ScaleFactor returns the scale factor used in resizing
func (r *Resizer) ScaleFactor() float64 {
	return r.scale
}

// DestWidth returns the width of the resized image
func (r *Resizer) DestWidth() int {
	return r.destWidth
}

// DestHeight returns the height of the resized image
func (r *Resizer) DestHeight() int {
	return r.destHeight
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
