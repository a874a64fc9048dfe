package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.4,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 5,
	}
}

// Label draws text on a filled box whose bottom left corner is at the
// anchor point
func Label(img *gocv.Mat, text string, anchor image.Point, font Font, bg color.RGBA) {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// create box for placing text on
	bRect := image.Rect(anchor.X, anchor.Y-textSize.Y-font.TopPad-font.BottomPad,
		anchor.X+textSize.X+font.LeftPad+font.RightPad, anchor.Y)
	gocv.Rectangle(img, bRect, bg, -1)

	gocv.PutTextWithParams(img, text, image.Pt(anchor.X+font.LeftPad, anchor.Y-font.BottomPad),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
