package camera

import (
	"math"

	"github.com/swdee/go-tagtrack"
	"gonum.org/v1/gonum/mat"
)

// Intrinsics holds the pinhole camera parameters, the focal lengths and the
// principal point, all in pixels
type Intrinsics struct {
	Fx float64
	Fy float64
	Cx float64
	Cy float64
}

// NewIntrinsics takes a 3x3 camera matrix of the form
//
//	| fx  0 cx |
//	|  0 fy cy |
//	|  0  0  1 |
//
// and returns its Intrinsics.  A matrix of the wrong shape, with non finite
// values, skew or a bottom row other than (0 0 1), or that is not invertible
// returns a ConfigurationError.
func NewIntrinsics(k mat.Matrix) (Intrinsics, error) {

	if k == nil {
		return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix", "not provided")
	}

	rows, cols := k.Dims()

	if rows != 3 || cols != 3 {
		return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
			"expected 3x3 matrix, got %dx%d", rows, cols)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if v := k.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
					"non finite value %v at (%d,%d)", v, i, j)
			}
		}
	}

	// only focal lengths and principal point may be set
	for _, c := range [][2]int{{0, 1}, {1, 0}, {2, 0}, {2, 1}} {
		if v := k.At(c[0], c[1]); v != 0 {
			return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
				"expected 0 at (%d,%d), got %v", c[0], c[1], v)
		}
	}

	if v := k.At(2, 2); v != 1 {
		return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
			"expected 1 at (2,2), got %v", v)
	}

	var inv mat.Dense

	if err := inv.Inverse(k); err != nil {
		return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
			"matrix is not invertible: %v", err)
	}

	in := Intrinsics{
		Fx: k.At(0, 0),
		Fy: k.At(1, 1),
		Cx: k.At(0, 2),
		Cy: k.At(1, 2),
	}

	if in.Fx <= 0 || in.Fy <= 0 {
		return Intrinsics{}, tagtrack.NewConfigurationError("camera_matrix",
			"focal lengths must be positive, got fx=%v fy=%v", in.Fx, in.Fy)
	}

	return in, nil
}

// Matrix returns the 3x3 projection matrix built from the intrinsics
func (in Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.Fx, 0, in.Cx,
		0, in.Fy, in.Cy,
		0, 0, 1,
	})
}
