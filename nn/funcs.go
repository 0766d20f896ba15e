package nn

import "math"

// Sigmoid squashes x into (0, 1).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ReLU clamps negative values to zero.
func ReLU(x float64) float64 {
	if x < 0 {
		return 0
	}

	return x
}

// GELU is the tanh approximation of the Gaussian error linear unit.
func GELU(x float64) float64 {
	return 0.5 * x * (1 + math.Tanh(math.Sqrt(2/math.Pi)*(x+0.044715*x*x*x)))
}

// Softmax writes the softmax of src into dst (which may alias src) using
// the max-subtraction trick for numerical stability.
// Complexity: O(len(src)).
func Softmax(dst, src []float64) {
	if len(dst) != len(src) || len(src) == 0 {
		return
	}
	maxv := src[0]
	for _, v := range src[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for i, v := range src {
		e := math.Exp(v - maxv)
		dst[i] = e
		sum += e
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}

	return sum / float64(len(xs))
}

// AddInto accumulates src into dst element-wise; slices must share length.
func AddInto(dst, src []float64) {
	for i := range src {
		dst[i] += src[i]
	}
}

// ScaleInto multiplies every element of dst by s.
func ScaleInto(dst []float64, s float64) {
	for i := range dst {
		dst[i] *= s
	}
}
