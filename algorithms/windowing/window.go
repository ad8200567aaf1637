package windowing

import (
	"fmt"
)

// Window is the contract the spectral stage relies on: a fixed-size taper
// applied to each analysis frame before the FFT.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// window holds precomputed coefficients shared by all window types.
type window struct {
	size         int
	symmetric    bool
	name         string
	coefficients []float64
}

func newWindow(size int, symmetric bool, name string, formula func(i int, denominator float64) float64) *window {
	w := &window{
		size:      size,
		symmetric: symmetric,
		name:      name,
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	w.coefficients = make([]float64, size)
	for i := 0; i < size; i++ {
		w.coefficients[i] = formula(i, denominator)
	}

	return w
}

// Apply applies the window to a signal (creates new array)
func (w *window) Apply(signal []float64) []float64 {
	if len(signal) != w.size {
		return nil
	}

	windowed := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		windowed[i] = signal[i] * w.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *window) ApplyInPlace(signal []float64) error {
	if len(signal) != w.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.size)
	}

	for i := 0; i < w.size; i++ {
		signal[i] *= w.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *window) GetCoefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// GetSize returns the window size
func (w *window) GetSize() int {
	return w.size
}

// GetType returns the window type
func (w *window) GetType() string {
	return w.name
}
