package preprocess

import "gocv.io/x/gocv"

// SwapRB swaps the red and blue channels of a three channel image.  Industrial
// GenICam cameras deliver RGB ordered frames while OpenCV expects BGR.
func SwapRB(src gocv.Mat, dest *gocv.Mat) {
	gocv.CvtColor(src, dest, gocv.ColorRGBToBGR)
}
