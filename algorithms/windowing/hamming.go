package windowing

import (
	"math"
)

// Hamming represents a Hamming window function.
// The raised-cosine taper reduces spectral leakage at the frame edges; the
// symmetric form uses N-1 as the denominator so the endpoints land on the
// 0.08 sidelobe floor.
type Hamming struct {
	*window
}

// NewHamming creates a new Hamming window
func NewHamming(size int, symmetric bool) *Hamming {
	return &Hamming{
		window: newWindow(size, symmetric, "hamming", func(i int, denominator float64) float64 {
			// 0.54 - 0.46 * cos(2π * i / denominator)
			return 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
		}),
	}
}
