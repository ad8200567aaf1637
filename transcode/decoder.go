package transcode

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/sortify/audioprint/logging"
)

// AudioData represents decoded audio data: mono float64 PCM in [-1, 1] at a
// known sample rate, ready for the fingerprinting pipeline.
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // channel count of the source, before mono mixing
	Duration   time.Duration `json:"duration"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // used for the ffmpeg path only
	FFmpegPath       string        `json:"ffmpeg_path"`
	Timeout          time.Duration `json:"timeout"`      // timeout for ffmpeg operations
	MaxDuration      time.Duration `json:"max_duration"` // 0 = no limit
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		FFmpegPath:       "ffmpeg", // assume in PATH
		Timeout:          30 * time.Second,
		MaxDuration:      0,
	}
}

// Decoder turns audio files into AudioData. WAV files are decoded natively;
// everything else (MP3, M4A, ...) is handed to an external ffmpeg process.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file into mono PCM samples. Multi-channel
// sources are averaged down to one channel before the pipeline sees them.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"filename":  filename,
	})

	logger.Debug("starting audio file decode")

	var (
		audioData *AudioData
		err       error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		audioData, err = d.decodeWAV(filename)
	default:
		audioData, err = d.decodeWithFFmpeg(ctx, filename)
	}
	if err != nil {
		logger.Error(err, "audio decode failed")
		return nil, err
	}

	logger.Debug("audio decode complete", logging.Fields{
		"sample_rate": audioData.SampleRate,
		"channels":    audioData.Channels,
		"samples":     len(audioData.PCM),
		"duration":    audioData.Duration,
	})

	return audioData, nil
}

// decodeWAV decodes a WAV file natively using go-audio.
func (d *Decoder) decodeWAV(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", filename)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("wav file contains no samples: %s", filename)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	sampleRate := buf.Format.SampleRate

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	// Average interleaved channels down to mono.
	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) * scale
		}
		pcm[i] = sum / float64(channels)
	}

	if d.config.MaxDuration > 0 {
		maxSamples := int(d.config.MaxDuration.Seconds() * float64(sampleRate))
		if maxSamples > 0 && maxSamples < len(pcm) {
			pcm = pcm[:maxSamples]
		}
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   durationOf(len(pcm), sampleRate),
	}, nil
}

// decodeWithFFmpeg shells out to ffmpeg for non-WAV containers, asking for
// mono raw float64 at the target sample rate.
func (d *Decoder) decodeWithFFmpeg(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeWithFFmpeg",
		"filename":  filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := []string{
		"-i", filename,
		"-f", "f64le", // raw float64 little-endian
		"-ac", "1", // mono
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}
	args = append(args, "-v", "error", "pipe:1")

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)

	logger.Debug("running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	pcm := bytesToFloat64(output)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no samples for %s", filename)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: d.config.TargetSampleRate,
		Channels:   1,
		Duration:   durationOf(len(pcm), d.config.TargetSampleRate),
	}, nil
}

func durationOf(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	seconds := float64(samples) / float64(sampleRate)
	return time.Duration(seconds * float64(time.Second))
}

func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}

	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)

	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}
