package fingerprint

import (
	"math"

	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/fingerprint/config"
	"github.com/sortify/audioprint/logging"
)

// FingerprintHash is one indexed landmark pair: the packed hash, the
// anchor's time-window index, and the recording it came from. Many records
// may share a hash value; collisions are meaningful, they mark structurally
// identical pairs in different places.
type FingerprintHash struct {
	Hash   uint32  `json:"hash"`
	Time   float64 `json:"time"`
	SongID int     `json:"song_id"`
}

// Fingerprint maps each 32-bit hash to the records sharing it, in append
// order. Read-only once built.
type Fingerprint map[uint32][]FingerprintHash

// PackHash packs an anchor/target pair into the 32-bit hash layout:
//
//	bits 22-31 (10 bits): anchor frequency bin
//	bits 12-21 (10 bits): target frequency bin
//	bits  0-11 (12 bits): time delta in tenths of a window
//
// Values are floored, not rounded, and out-of-range fields silently wrap
// under the masks. Both behaviors are part of the hash format; matching
// against reference fingerprints requires them bit for bit.
func PackHash(anchorFreq, targetFreq, timeDelta float64) uint32 {
	return (uint32(anchorFreq)&0x3FF)<<22 |
		(uint32(targetFreq)&0x3FF)<<12 |
		(uint32(timeDelta*10.0) & 0xFFF)
}

// CreateFingerprint pairs peaks into hashes using the default target zone.
// Peaks must be in ascending time order, as ExtractPeaks produces them.
func CreateFingerprint(peaks []Peak, songID int) (Fingerprint, error) {
	return CreateFingerprintWithZone(peaks, songID, config.DefaultTargetZone())
}

// CreateFingerprintWithZone pairs each peak (the anchor) with up to
// zone.MaxTargets later peaks inside the target zone and indexes the
// resulting hashes.
//
// The forward scan stops as soon as a candidate is beyond zone.TimeRange:
// with time-ordered peaks no later candidate can be closer, so the early
// exit never skips a valid pair.
func CreateFingerprintWithZone(peaks []Peak, songID int, zone *config.TargetZone) (Fingerprint, error) {
	if len(peaks) == 0 {
		return nil, errs.New(errs.InvalidInput, "empty peaks slice provided")
	}
	if songID < 0 {
		return nil, errs.New(errs.InvalidInput, "invalid song ID: %d", songID)
	}
	if zone == nil {
		zone = config.DefaultTargetZone()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "fingerprint_builder",
		"song_id":   songID,
	})

	logger.Info("creating fingerprint", logging.Fields{
		"peaks": len(peaks),
	})

	fingerprint := make(Fingerprint)

	for i := range peaks {
		anchor := &peaks[i]
		numTargets := 0

		for j := i + 1; j < len(peaks) && numTargets < zone.MaxTargets; j++ {
			target := &peaks[j]

			timeDelta := target.Time - anchor.Time
			if timeDelta < zone.MinTimeDelta {
				continue
			}
			if timeDelta > zone.TimeRange {
				break // peaks are time-ordered; nothing further can qualify
			}

			freqDelta := math.Abs(target.Frequency - anchor.Frequency)
			if freqDelta > zone.MaxFreqDelta {
				continue
			}

			hash := PackHash(anchor.Frequency, target.Frequency, timeDelta)

			fingerprint[hash] = append(fingerprint[hash], FingerprintHash{
				Hash:   hash,
				Time:   anchor.Time,
				SongID: songID,
			})
			numTargets++
		}
	}

	if len(fingerprint) == 0 {
		return nil, errs.New(errs.NoHashesGenerated, "failed to create any fingerprint hashes")
	}

	logger.Info("fingerprint created", logging.Fields{
		"unique_hashes": len(fingerprint),
	})

	return fingerprint, nil
}
