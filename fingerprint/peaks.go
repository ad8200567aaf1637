package fingerprint

import (
	"github.com/sortify/audioprint/algorithms/common"
	"github.com/sortify/audioprint/algorithms/spectral"
	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/logging"
)

// Peak is a locally dominant time-frequency landmark. Frequency is the
// retained-bin row index and Time the time-window column index of the
// spectrogram it came from; both are float-valued integers so they can feed
// directly into hash packing.
type Peak struct {
	Frequency float64 `json:"frequency"`
	Time      float64 `json:"time"`
	Magnitude float64 `json:"magnitude"`
}

// bandFractions splits the retained frequency axis into six contiguous
// bands. The split approximates auditory critical bands: narrow at the
// bottom where the ear resolves pitch finely, wide at the top. The exact
// fractions are part of the fingerprint format.
var bandFractions = [6][2]float64{
	{0.0, 0.10},
	{0.10, 0.25},
	{0.25, 0.40},
	{0.40, 0.60},
	{0.60, 0.80},
	{0.80, 1.0},
}

// ExtractPeaks reduces a spectrogram to its constellation of landmarks.
//
// Each time window is processed independently: the strongest bin of each of
// the six bands is a candidate, and candidates strictly above the mean of
// the window's candidates survive. The per-window threshold adapts to
// loudness and spectral tilt, so quiet passages still yield landmarks.
//
// Peaks are returned in ascending time order; CreateFingerprint depends on
// that ordering.
func ExtractPeaks(spec *spectral.Spectrogram) ([]Peak, error) {
	if spec == nil || spec.FreqBins == 0 || spec.TimeWindows == 0 || len(spec.Magnitudes) == 0 {
		return nil, errs.New(errs.EmptyInput, "empty spectrogram provided")
	}

	logger := logging.WithFields(logging.Fields{
		"component": "peak_extractor",
	})

	numFreqBins := spec.FreqBins
	numTimeWindows := spec.TimeWindows

	logger.Info("extracting peaks from spectrogram", logging.Fields{
		"freq_bins":    numFreqBins,
		"time_windows": numTimeWindows,
	})

	type band struct {
		lo, hi int // [lo, hi) in retained-bin rows
	}
	bands := make([]band, 0, len(bandFractions))
	for _, frac := range bandFractions {
		bands = append(bands, band{
			lo: int(float64(numFreqBins) * frac[0]),
			hi: int(float64(numFreqBins) * frac[1]),
		})
	}

	var peaks []Peak

	for t := 0; t < numTimeWindows; t++ {
		bandPeaks := make([]Peak, 0, len(bands))
		bandMags := make([]float64, 0, len(bands))

		for _, b := range bands {
			// A zero-width band (tiny spectrograms) contributes no candidate.
			maxPeak := Peak{Frequency: 0.0, Time: float64(t), Magnitude: 0.0}
			found := false

			for f := b.lo; f < b.hi && f < numFreqBins; f++ {
				if spec.Magnitudes[f][t] > maxPeak.Magnitude {
					maxPeak.Magnitude = spec.Magnitudes[f][t]
					maxPeak.Frequency = float64(f)
					found = true
				}
			}

			if found {
				bandPeaks = append(bandPeaks, maxPeak)
				bandMags = append(bandMags, maxPeak.Magnitude)
			}
		}

		if len(bandPeaks) == 0 {
			continue
		}

		// Dynamic threshold: only band maxima strictly above the mean of
		// this window's maxima survive. A candidate exactly at the mean is
		// excluded, so a window of equal-strength bands emits nothing.
		avgMagnitude := common.Mean(bandMags)

		for _, p := range bandPeaks {
			if p.Magnitude > avgMagnitude {
				peaks = append(peaks, p)
			}
		}
	}

	if len(peaks) == 0 {
		return nil, errs.New(errs.NoPeaksFound, "no significant peaks found in spectrogram")
	}

	logger.Info("peak extraction complete", logging.Fields{
		"peaks": len(peaks),
	})

	return peaks, nil
}
