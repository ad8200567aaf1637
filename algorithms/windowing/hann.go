package windowing

import (
	"math"
)

// Hann represents a Hann window function
type Hann struct {
	*window
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	return &Hann{
		window: newWindow(size, symmetric, "hann", func(i int, denominator float64) float64 {
			return 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
		}),
	}
}
