package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Banner draws lines of status text in the top left corner of a frame using
// a TrueType or bitmap font face
type Banner struct {
	face font.Face
	// Color of the text
	Color color.RGBA
	// Margin in pixels from the frame edge
	Margin int
}

// NewBanner returns a banner drawing with the given font face.  A nil face
// uses the built in 7x13 bitmap font.
func NewBanner(face font.Face) *Banner {

	if face == nil {
		face = basicfont.Face7x13
	}

	return &Banner{
		face:   face,
		Color:  White,
		Margin: 8,
	}
}

// LoadFontFace loads a TTF or OTF font file and returns a face of the given
// point size
func LoadFontFace(path string, size float64) (font.Face, error) {

	// load font data
	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	// parse the font
	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	// create a type face
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return face, nil
}

// Raster renders the text lines onto a transparent RGBA image of the given
// size
func (b *Banner) Raster(width, height int, lines []string) *image.RGBA {

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	metrics := b.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	y := b.Margin + metrics.Ascent.Ceil()

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(b.Color),
		Face: b.face,
	}

	for _, line := range lines {
		dr.Dot = fixed.Point26_6{
			X: fixed.I(b.Margin),
			Y: fixed.I(y),
		}
		dr.DrawString(line)
		y += lineHeight
	}

	return rgba
}

// Draw writes the text lines on to the BGR image
func (b *Banner) Draw(img *gocv.Mat, lines []string) error {

	if len(lines) == 0 {
		return nil
	}

	rgba := b.Raster(img.Cols(), img.Rows(), lines)

	// Convert image.RGBA to gocv.Mat
	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil {
		return fmt.Errorf("error creating Mat from RGBA: %w", err)
	}

	defer imgRGBA.Close()

	if imgRGBA.Empty() {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)

	return nil
}
