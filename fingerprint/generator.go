package fingerprint

import (
	"time"

	"github.com/google/uuid"

	"github.com/sortify/audioprint/algorithms/common"
	"github.com/sortify/audioprint/algorithms/spectral"
	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/fingerprint/config"
	"github.com/sortify/audioprint/logging"
	"github.com/sortify/audioprint/transcode"
)

// AudioFingerprint is the result of running the full pipeline over one
// recording.
type AudioFingerprint struct {
	ID          string        `json:"id"`
	SongID      int           `json:"song_id"`
	SampleRate  int           `json:"sample_rate"`
	Duration    time.Duration `json:"duration"`
	PeakCount   int           `json:"peak_count"`
	Hashes      Fingerprint   `json:"hashes"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Generator runs spectrogram -> peaks -> fingerprint over decoded audio.
// Every invocation is independent and stateless; a Generator is safe for
// concurrent use.
type Generator struct {
	cfg    *config.PipelineConfig
	logger logging.Logger
}

// NewGenerator creates a generator. A nil cfg uses DefaultPipelineConfig.
func NewGenerator(cfg *config.PipelineConfig) *Generator {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig()
	}

	return &Generator{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "fingerprint_generator",
		}),
	}
}

// Fingerprint runs the pipeline end to end. The first failing stage
// short-circuits the rest; no partial result is ever returned.
func (g *Generator) Fingerprint(audio *transcode.AudioData, songID int) (*AudioFingerprint, error) {
	if audio == nil || len(audio.PCM) == 0 {
		return nil, errs.New(errs.InvalidInput, "no audio data provided")
	}

	logger := g.logger.WithFields(logging.Fields{
		"song_id":     songID,
		"sample_rate": audio.SampleRate,
		"samples":     len(audio.PCM),
	})

	logger.Debug("starting fingerprint pipeline", logging.Fields{
		"rms": common.RMS(audio.PCM),
	})

	specCfg := g.cfg.Spectrogram
	if specCfg == nil {
		specCfg = spectral.DefaultConfig()
	}
	if audio.SampleRate > 0 && audio.SampleRate != specCfg.SampleRate {
		// Analyze at the decoded rate rather than silently mislabeling bins.
		adjusted := *specCfg
		adjusted.SampleRate = audio.SampleRate
		specCfg = &adjusted
	}

	spectrogram, err := spectral.Generate(audio.PCM, specCfg)
	if err != nil {
		return nil, err
	}

	peaks, err := ExtractPeaks(spectrogram)
	if err != nil {
		return nil, err
	}

	hashes, err := CreateFingerprintWithZone(peaks, songID, g.cfg.TargetZone)
	if err != nil {
		return nil, err
	}

	fp := &AudioFingerprint{
		ID:          uuid.NewString(),
		SongID:      songID,
		SampleRate:  specCfg.SampleRate,
		Duration:    audio.Duration,
		PeakCount:   len(peaks),
		Hashes:      hashes,
		GeneratedAt: time.Now(),
	}

	logger.Info("fingerprint pipeline complete", logging.Fields{
		"id":            fp.ID,
		"peaks":         fp.PeakCount,
		"unique_hashes": len(fp.Hashes),
	})

	return fp, nil
}
