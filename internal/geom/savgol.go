package geom

import (
	"fmt"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// SavGolKernel computes the convolution weights of a Savitzky-Golay
// smoothing filter: the least-squares fit of a degree-`order` polynomial
// over a symmetric window, evaluated at the window center. window must be
// odd and strictly larger than order.
//
// The weights are the center row of the projection matrix
// A (AᵀA)⁻¹ Aᵀ, where A is the Vandermonde matrix of offsets -h..h.
func SavGolKernel(window, order int) ([]float64, error) {
	if window%2 == 0 || window < 3 {
		return nil, fmt.Errorf("savgol window must be odd and >= 3, got %d", window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("savgol order %d invalid for window %d", order, window)
	}

	h := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - h)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("savgol normal equations singular: %w", err)
	}
	var proj mat.Dense
	proj.Product(a, &inv, a.T())

	return mat.Row(nil, h, &proj), nil
}

// SmoothPeriodic convolves vals with the kernel, wrapping indices across
// both ends. The series is treated as one period of a closed loop, so no
// artificial kink appears at the seam. len(vals) must be at least
// len(kernel).
func SmoothPeriodic(vals, kernel []float64) ([]float64, error) {
	n := len(vals)
	w := len(kernel)
	if n < w {
		return nil, fmt.Errorf("periodic smoothing needs at least %d points, got %d", w, n)
	}
	h := w / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := 0; k < w; k++ {
			j := (i + k - h + n) % n
			acc += kernel[k] * vals[j]
		}
		out[i] = acc
	}
	return out, nil
}

// SmoothPathPeriodic applies the kernel to the x and y coordinates of a
// closed polyline independently.
func SmoothPathPeriodic(pts []r2.Point, kernel []float64) ([]r2.Point, error) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	sx, err := SmoothPeriodic(xs, kernel)
	if err != nil {
		return nil, err
	}
	sy, err := SmoothPeriodic(ys, kernel)
	if err != nil {
		return nil, err
	}
	out := make([]r2.Point, len(pts))
	for i := range out {
		out[i] = r2.Point{X: sx[i], Y: sy[i]}
	}
	return out, nil
}
