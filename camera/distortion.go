package camera

import (
	"math"

	"github.com/swdee/go-tagtrack"
)

const (
	// maxIterations is the maximum number of Newton-Raphson steps taken
	// when inverting the distortion model
	maxIterations = 20
	// tolerance is the squared residual in normalized coordinates at which
	// the inversion is considered converged
	tolerance = 1e-24
)

// Distortion is the Brown-Conrady lens distortion model with radial terms
// K1, K2, K3 and tangential terms P1, P2.  Coefficients are supplied in the
// OpenCV order (k1, k2, p1, p2, k3).
type Distortion struct {
	K1 float64
	K2 float64
	P1 float64
	P2 float64
	K3 float64
}

// NewDistortion builds the distortion model from an OpenCV ordered
// coefficient vector.  An empty vector means no distortion, four values
// leave K3 at zero.
func NewDistortion(coeffs []float64) (Distortion, error) {

	switch len(coeffs) {
	case 0:
		return Distortion{}, nil
	case 4, 5:
	default:
		return Distortion{}, tagtrack.NewConfigurationError("dist_coeffs",
			"expected 0, 4 or 5 coefficients, got %d", len(coeffs))
	}

	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Distortion{}, tagtrack.NewConfigurationError("dist_coeffs",
				"non finite coefficient %v at index %d", c, i)
		}
	}

	d := Distortion{
		K1: coeffs[0],
		K2: coeffs[1],
		P1: coeffs[2],
		P2: coeffs[3],
	}

	if len(coeffs) == 5 {
		d.K3 = coeffs[4]
	}

	return d, nil
}

// Coefficients returns the coefficients in OpenCV order
func (d Distortion) Coefficients() []float64 {
	return []float64{d.K1, d.K2, d.P1, d.P2, d.K3}
}

// Apply distorts a point given in normalized camera coordinates
//
//	x_d = x (1 + k1 r² + k2 r⁴ + k3 r⁶) + 2 p1 x y + p2 (r² + 2 x²)
//	y_d = y (1 + k1 r² + k2 r⁴ + k3 r⁶) + p1 (r² + 2 y²) + 2 p2 x y
func (d Distortion) Apply(x, y float64) (float64, float64) {

	r2 := x*x + y*y
	radial := 1 + r2*(d.K1+r2*(d.K2+r2*d.K3))

	xd := x*radial + 2*d.P1*x*y + d.P2*(r2+2*x*x)
	yd := y*radial + d.P1*(r2+2*y*y) + 2*d.P2*x*y

	return xd, yd
}

// Invert finds the undistorted normalized point that Apply maps onto the
// given distorted normalized point, using Newton-Raphson iteration starting
// from the distorted point itself.
func (d Distortion) Invert(xd, yd float64) (float64, float64) {

	x, y := xd, yd

	for i := 0; i < maxIterations; i++ {

		ex, ey := d.Apply(x, y)
		ex -= xd
		ey -= yd

		if ex*ex+ey*ey < tolerance {
			break
		}

		// jacobian of Apply at (x, y)
		r2 := x*x + y*y
		radial := 1 + r2*(d.K1+r2*(d.K2+r2*d.K3))
		dRadial := 2 * (d.K1 + 2*d.K2*r2 + 3*d.K3*r2*r2)

		j11 := radial + x*x*dRadial + 2*d.P1*y + 6*d.P2*x
		j12 := x*y*dRadial + 2*d.P1*x + 2*d.P2*y
		j21 := x*y*dRadial + 2*d.P1*x + 2*d.P2*y
		j22 := radial + y*y*dRadial + 6*d.P1*y + 2*d.P2*x

		det := j11*j22 - j12*j21

		if det == 0 || math.IsNaN(det) {
			break
		}

		x -= (j22*ex - j12*ey) / det
		y -= (-j21*ex + j11*ey) / det
	}

	return x, y
}
