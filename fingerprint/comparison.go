package fingerprint

import (
	"github.com/sortify/audioprint/logging"
)

// MatchResult summarizes how well two fingerprints line up.
type MatchResult struct {
	MatchingHashes  int     `json:"matching_hashes"`  // hash keys present in both
	MatchPercentage float64 `json:"match_percentage"` // matching keys / smaller key count, 0-100
	BestOffsetMs    int     `json:"best_offset_ms"`   // dominant time offset, milliseconds of window index
	BestOffsetVotes int     `json:"best_offset_votes"`
	Confidence      float64 `json:"confidence"` // dominant offset votes / distinct offsets, 0-100
}

// CompareFingerprints measures the overlap between two fingerprints.
//
// Matching alone is not enough: two different recordings can share hashes by
// coincidence. A genuine match concentrates its shared hashes at one time
// offset, so the offset histogram's dominant bucket is the real signal.
// MatchPercentage above a few percent together with a high Confidence
// indicates the same recording.
func CompareFingerprints(a, b Fingerprint) *MatchResult {
	result := &MatchResult{}
	if len(a) == 0 || len(b) == 0 {
		return result
	}

	logger := logging.WithFields(logging.Fields{
		"component": "fingerprint_comparison",
	})

	offsetHistogram := make(map[int]int)

	for hash, aRecords := range a {
		bRecords, ok := b[hash]
		if !ok {
			continue
		}
		result.MatchingHashes++

		for _, ra := range aRecords {
			for _, rb := range bRecords {
				offsetMs := int((ra.Time - rb.Time) * 1000)
				offsetHistogram[offsetMs]++
			}
		}
	}

	smaller := min(len(a), len(b))
	result.MatchPercentage = 100.0 * float64(result.MatchingHashes) / float64(smaller)

	for offset, count := range offsetHistogram {
		if count > result.BestOffsetVotes {
			result.BestOffsetVotes = count
			result.BestOffsetMs = offset
		}
	}

	if len(offsetHistogram) > 0 {
		result.Confidence = 100.0 * float64(result.BestOffsetVotes) / float64(len(offsetHistogram))
	}

	logger.Debug("fingerprint comparison complete", logging.Fields{
		"matching_hashes":  result.MatchingHashes,
		"match_percentage": result.MatchPercentage,
		"confidence":       result.Confidence,
	})

	return result
}
