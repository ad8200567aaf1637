package spectral

import (
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/sortify/audioprint/algorithms/windowing"
	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/logging"
)

// Config holds the spectrogram analysis parameters.
type Config struct {
	SampleRate int        `json:"sample_rate"`
	WindowSize int        `json:"window_size"`
	Overlap    float64    `json:"overlap"`    // fraction of a window shared with its successor, [0, 1)
	FreqRange  [2]float64 `json:"freq_range"` // [min, max] Hz retained in the output
}

// DefaultConfig returns the analysis parameters used for fingerprinting:
// CD-rate audio, 2048-sample windows with 50% overlap, and the 20 Hz - 5 kHz
// range that carries most musical energy.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 44100,
		WindowSize: 2048,
		Overlap:    0.5,
		FreqRange:  [2]float64{20.0, 5000.0},
	}
}

// Spectrogram is a frequency-major magnitude matrix: Magnitudes[row][col]
// holds the magnitude of retained bin (MinBin + row) at time window col.
// The matrix is created in one pass and not mutated afterward.
type Spectrogram struct {
	Magnitudes  [][]float64 `json:"magnitudes"`
	FreqBins    int         `json:"freq_bins"`    // rows
	TimeWindows int         `json:"time_windows"` // columns
	MinBin      int         `json:"min_bin"`      // first retained FFT bin
	MaxBin      int         `json:"max_bin"`      // last retained FFT bin (inclusive)
	SampleRate  int         `json:"sample_rate"`
	WindowSize  int         `json:"window_size"`
	StepSize    int         `json:"step_size"`
	BinSize     int         `json:"bin_size"`        // Hz per FFT bin
	TimePerStep float64     `json:"time_resolution"` // seconds per time window
}

// Generate transforms a sample buffer into a magnitude spectrogram.
//
// Each window of WindowSize samples is tapered with a Hamming window,
// transformed, and the magnitudes of the bins covering FreqRange are written
// into one column. Only the first half of the spectrum is valid per the
// Nyquist limit; retained bins at or beyond WindowSize/2 stay zero.
//
// A nil cfg uses DefaultConfig. Failures are tagged *errs.Error values; no
// partial matrix is ever returned.
func Generate(samples []float64, cfg *Config) (*Spectrogram, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "spectrogram",
	})

	if len(samples) == 0 {
		return nil, errs.New(errs.InvalidInput, "empty audio samples provided")
	}
	if cfg.SampleRate <= 0 {
		return nil, errs.New(errs.InvalidInput, "sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.WindowSize <= 0 {
		return nil, errs.New(errs.InvalidInput, "window size must be positive, got %d", cfg.WindowSize)
	}
	if cfg.Overlap < 0.0 || cfg.Overlap >= 1.0 {
		return nil, errs.New(errs.InvalidInput, "overlap must be in [0.0, 1.0), got %g", cfg.Overlap)
	}
	minFreq, maxFreq := cfg.FreqRange[0], cfg.FreqRange[1]
	if minFreq < 0.0 {
		return nil, errs.New(errs.InvalidInput, "minimum frequency cannot be negative, got %g", minFreq)
	}
	if maxFreq <= minFreq {
		return nil, errs.New(errs.InvalidInput, "maximum frequency (%g) must be greater than minimum frequency (%g)", maxFreq, minFreq)
	}

	// Step between consecutive windows; clamped so overlap approaching 1.0
	// can never produce a zero step.
	stepSize := int(float64(cfg.WindowSize) * (1.0 - cfg.Overlap))
	if stepSize == 0 {
		stepSize = 1
	}

	// Integer division truncates toward zero, so a buffer shorter than one
	// window by less than stepSize would still yield one window; reject it
	// before the division.
	if len(samples) < cfg.WindowSize {
		return nil, errs.New(errs.InsufficientSamples,
			"sample buffer too small for window size: %d samples, window %d", len(samples), cfg.WindowSize)
	}
	numWindows := (len(samples)-cfg.WindowSize)/stepSize + 1

	// Hz covered by one FFT bin. Integer division is deliberate and part of
	// the fingerprint format: changing it shifts every bin index and breaks
	// hash compatibility.
	binSize := cfg.SampleRate / cfg.WindowSize
	if binSize == 0 {
		return nil, errs.New(errs.InvalidFrequencyRange,
			"window size %d exceeds sample rate %d", cfg.WindowSize, cfg.SampleRate)
	}

	minBin := int(math.Ceil(minFreq / float64(binSize)))
	maxBin := int(math.Floor(maxFreq / float64(binSize)))
	if maxBin > cfg.WindowSize/2 {
		maxBin = cfg.WindowSize / 2
	}
	if maxBin <= minBin {
		return nil, errs.New(errs.InvalidFrequencyRange,
			"invalid frequency range for given window size and sample rate")
	}

	numBins := maxBin - minBin + 1

	logger.Info("generating spectrogram", logging.Fields{
		"windows":   numWindows,
		"freq_bins": numBins,
		"step_size": stepSize,
	})

	window := windowing.NewHamming(cfg.WindowSize, true)

	spec := &Spectrogram{
		Magnitudes:  make([][]float64, numBins),
		FreqBins:    numBins,
		TimeWindows: numWindows,
		MinBin:      minBin,
		MaxBin:      maxBin,
		SampleRate:  cfg.SampleRate,
		WindowSize:  cfg.WindowSize,
		StepSize:    stepSize,
		BinSize:     binSize,
		TimePerStep: float64(stepSize) / float64(cfg.SampleRate),
	}
	for i := range spec.Magnitudes {
		spec.Magnitudes[i] = make([]float64, numWindows)
	}

	// Windows are independent; fan them out over a bounded worker pool.
	// Every worker writes a disjoint column, so no locking is needed.
	numWorkers := optimalWorkerCount(numWindows)
	jobs := make(chan int, numWindows)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			fft := NewFFT()
			frame := make([]float64, cfg.WindowSize)

			for windowIdx := range jobs {
				start := windowIdx * stepSize
				for i := 0; i < cfg.WindowSize; i++ {
					sampleIdx := start + i
					if sampleIdx < len(samples) {
						frame[i] = samples[sampleIdx]
					} else {
						frame[i] = 0.0 // zero-padding past the buffer end
					}
				}

				// ApplyInPlace cannot fail here: frame length equals the
				// window size by construction.
				_ = window.ApplyInPlace(frame)

				coeffs := fft.Compute(frame)

				for row := 0; row < numBins; row++ {
					srcBin := minBin + row
					if srcBin < len(coeffs)/2 {
						spec.Magnitudes[row][windowIdx] = cmplx.Abs(coeffs[srcBin])
					}
				}
			}
		}()
	}

	for windowIdx := 0; windowIdx < numWindows; windowIdx++ {
		jobs <- windowIdx
	}
	close(jobs)
	wg.Wait()

	logger.Info("spectrogram generation complete", logging.Fields{
		"freq_bins":    spec.FreqBins,
		"time_windows": spec.TimeWindows,
	})

	return spec, nil
}

// optimalWorkerCount sizes the worker pool to the workload
func optimalWorkerCount(numWindows int) int {
	numCPU := runtime.NumCPU()

	workers := numCPU
	if numWindows < 100 {
		workers = numCPU / 2
	} else if numWindows < 1000 {
		workers = min(numCPU, 8)
	}

	workers = min(workers, numWindows)
	if workers < 1 {
		workers = 1
	}
	return workers
}
