package config

import (
	"github.com/sortify/audioprint/algorithms/spectral"
)

// TargetZone bounds the search for pairing candidates ahead of each anchor
// peak. Times are in window indices, frequencies in bin indices.
type TargetZone struct {
	TimeRange    float64 `json:"time_range"`     // look this far ahead of the anchor
	MinTimeDelta float64 `json:"min_time_delta"` // ignore targets closer than this
	MaxFreqDelta float64 `json:"max_freq_delta"` // ignore targets further than this in frequency
	MaxTargets   int     `json:"max_targets"`    // pairs accepted per anchor
}

// DefaultTargetZone returns the pairing geometry the hash format was tuned
// for. Changing any of these alters which pairs exist, so fingerprints built
// with different zones are not comparable.
func DefaultTargetZone() *TargetZone {
	return &TargetZone{
		TimeRange:    3.0,
		MinTimeDelta: 0.5,
		MaxFreqDelta: 30.0,
		MaxTargets:   5,
	}
}

// PipelineConfig bundles the parameters of the full fingerprinting pipeline.
type PipelineConfig struct {
	Spectrogram *spectral.Config `json:"spectrogram"`
	TargetZone  *TargetZone      `json:"target_zone"`
}

// DefaultPipelineConfig returns defaults for every stage.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Spectrogram: spectral.DefaultConfig(),
		TargetZone:  DefaultTargetZone(),
	}
}
