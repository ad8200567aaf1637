package fingerprint

import (
	"math"
	"testing"
	"time"

	"github.com/sortify/audioprint/algorithms/spectral"
	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/fingerprint/config"
	"github.com/sortify/audioprint/transcode"
)

// toneAudio builds decoded audio carrying a pure tone.
func toneAudio(freq float64, sampleRate int, seconds float64) *transcode.AudioData {
	numSamples := int(seconds * float64(sampleRate))
	pcm := make([]float64, numSamples)
	for i := range pcm {
		pcm[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   time.Duration(seconds * float64(time.Second)),
	}
}

func TestGeneratorValidation(t *testing.T) {
	gen := NewGenerator(nil)

	if _, err := gen.Fingerprint(nil, 1); !errs.IsKind(err, errs.InvalidInput) {
		t.Errorf("nil audio: expected InvalidInput, got %v", err)
	}
	if _, err := gen.Fingerprint(&transcode.AudioData{}, 1); !errs.IsKind(err, errs.InvalidInput) {
		t.Errorf("empty PCM: expected InvalidInput, got %v", err)
	}
}

func TestGeneratorEndToEnd(t *testing.T) {
	gen := NewGenerator(nil)

	fp, err := gen.Fingerprint(toneAudio(440, 44100, 1.0), 7)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if fp.ID == "" {
		t.Error("fingerprint ID should be set")
	}
	if fp.SongID != 7 {
		t.Errorf("SongID = %d, expected 7", fp.SongID)
	}
	if fp.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, expected 44100", fp.SampleRate)
	}
	if fp.PeakCount == 0 {
		t.Error("expected at least one peak")
	}
	if len(fp.Hashes) == 0 {
		t.Error("expected at least one hash bucket")
	}
	if fp.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}

	for hash, records := range fp.Hashes {
		for _, r := range records {
			if r.SongID != 7 {
				t.Fatalf("record under %#x carries song ID %d", hash, r.SongID)
			}
		}
	}
}

func TestGeneratorAdoptsDecodedRate(t *testing.T) {
	cfg := config.DefaultPipelineConfig()
	cfg.Spectrogram.WindowSize = 1024
	gen := NewGenerator(cfg)

	// Audio decoded at 8000 Hz must be analyzed at 8000 Hz even though the
	// configured spectrogram assumes 44100.
	fp, err := gen.Fingerprint(toneAudio(440, 8000, 2.0), 1)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, expected decoded rate 8000", fp.SampleRate)
	}
}

func TestGeneratorShortAudio(t *testing.T) {
	gen := NewGenerator(nil)

	// 100 samples cannot fill one 2048-sample window.
	_, err := gen.Fingerprint(toneAudio(440, 44100, 100.0/44100.0), 1)
	if !errs.IsKind(err, errs.InsufficientSamples) {
		t.Errorf("expected InsufficientSamples, got %v", err)
	}
}

func TestPipelinePrefixSelfSimilarity(t *testing.T) {
	// A stationary tone fingerprints the same way everywhere, so the
	// fingerprint of a prefix should share most of its hash keys with the
	// fingerprint of the full signal.
	cfg := spectral.DefaultConfig()

	full := toneAudio(440, 44100, 2.0)
	prefix := &transcode.AudioData{
		PCM:        full.PCM[:44100],
		SampleRate: 44100,
		Channels:   1,
		Duration:   time.Second,
	}

	fingerprintFor := func(audio *transcode.AudioData, songID int) Fingerprint {
		spec, err := spectral.Generate(audio.PCM, cfg)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		peaks, err := ExtractPeaks(spec)
		if err != nil {
			t.Fatalf("ExtractPeaks failed: %v", err)
		}
		if len(peaks) < spec.TimeWindows {
			t.Fatalf("expected a peak per window, got %d peaks for %d windows", len(peaks), spec.TimeWindows)
		}
		fp, err := CreateFingerprint(peaks, songID)
		if err != nil {
			t.Fatalf("CreateFingerprint failed: %v", err)
		}
		return fp
	}

	fullFP := fingerprintFor(full, 1)
	prefixFP := fingerprintFor(prefix, 2)

	result := CompareFingerprints(fullFP, prefixFP)
	if result.MatchPercentage <= 50.0 {
		t.Errorf("prefix match percentage = %f, expected well above 50", result.MatchPercentage)
	}
}
