package fingerprint

import (
	"testing"

	"github.com/sortify/audioprint/errs"
	"github.com/sortify/audioprint/fingerprint/config"
)

func TestPackHashLayout(t *testing.T) {
	tests := []struct {
		name       string
		anchorFreq float64
		targetFreq float64
		timeDelta  float64
		expected   uint32
	}{
		{"basic", 100, 200, 1.5, 100<<22 | 200<<12 | 15},
		{"zero", 0, 0, 0, 0},
		{"all max", 1023, 1023, 409.5, 1023<<22 | 1023<<12 | 4095},
		{"delta floors not rounds", 100, 200, 1.59, 100<<22 | 200<<12 | 15},
		{"anchor wraps under mask", 1024, 5, 1.0, 0<<22 | 5<<12 | 10},
		{"target wraps under mask", 5, 1030, 1.0, 5<<22 | 6<<12 | 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackHash(tt.anchorFreq, tt.targetFreq, tt.timeDelta); got != tt.expected {
				t.Errorf("PackHash(%g, %g, %g) = %#x, expected %#x",
					tt.anchorFreq, tt.targetFreq, tt.timeDelta, got, tt.expected)
			}
		})
	}
}

func TestPackHashDeterministic(t *testing.T) {
	a := PackHash(120, 135, 2.3)
	b := PackHash(120, 135, 2.3)
	if a != b {
		t.Errorf("same inputs produced %#x and %#x", a, b)
	}
}

func TestCreateFingerprintValidation(t *testing.T) {
	peaks := []Peak{{Frequency: 100, Time: 0}, {Frequency: 110, Time: 1}}

	if _, err := CreateFingerprint(nil, 1); !errs.IsKind(err, errs.InvalidInput) {
		t.Errorf("empty peaks: expected InvalidInput, got %v", err)
	}
	if _, err := CreateFingerprint(peaks, -1); !errs.IsKind(err, errs.InvalidInput) {
		t.Errorf("negative song ID: expected InvalidInput, got %v", err)
	}
}

func TestCreateFingerprintSinglePeak(t *testing.T) {
	// One peak has no later peak to pair with.
	_, err := CreateFingerprint([]Peak{{Frequency: 100, Time: 0}}, 1)
	if !errs.IsKind(err, errs.NoHashesGenerated) {
		t.Errorf("expected NoHashesGenerated, got %v", err)
	}
}

func TestCreateFingerprintBasicPair(t *testing.T) {
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 110, Time: 1},
	}

	fp, err := CreateFingerprint(peaks, 42)
	if err != nil {
		t.Fatalf("CreateFingerprint failed: %v", err)
	}

	want := PackHash(100, 110, 1.0)
	records, ok := fp[want]
	if !ok {
		t.Fatalf("expected hash %#x in fingerprint, keys: %v", want, keysOf(fp))
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].SongID != 42 {
		t.Errorf("SongID = %d, expected 42", records[0].SongID)
	}
	if records[0].Time != 0 {
		t.Errorf("record time = %g, expected anchor time 0", records[0].Time)
	}
	if records[0].Hash != want {
		t.Errorf("record hash = %#x, expected %#x", records[0].Hash, want)
	}
}

func TestCreateFingerprintMinTimeDelta(t *testing.T) {
	// Pair closer than MinTimeDelta is rejected.
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 110, Time: 0.3},
	}

	_, err := CreateFingerprint(peaks, 1)
	if !errs.IsKind(err, errs.NoHashesGenerated) {
		t.Errorf("expected NoHashesGenerated for sub-threshold delta, got %v", err)
	}
}

func TestCreateFingerprintTimeRangeExcludes(t *testing.T) {
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 105, Time: 3.5},
	}

	_, err := CreateFingerprint(peaks, 1)
	if !errs.IsKind(err, errs.NoHashesGenerated) {
		t.Errorf("expected NoHashesGenerated beyond the target zone, got %v", err)
	}
}

func TestCreateFingerprintFreqDeltaSkipsNotStops(t *testing.T) {
	// The middle peak is too far away in frequency; the scan must move past
	// it and still pair the anchor with the third peak.
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 200, Time: 0.6},
		{Frequency: 110, Time: 0.7},
	}

	fp, err := CreateFingerprint(peaks, 1)
	if err != nil {
		t.Fatalf("CreateFingerprint failed: %v", err)
	}

	want := PackHash(100, 110, 0.7)
	if _, ok := fp[want]; !ok {
		t.Errorf("expected hash %#x past the rejected candidate, keys: %v", want, keysOf(fp))
	}
	reject := PackHash(100, 200, 0.6)
	if _, ok := fp[reject]; ok {
		t.Errorf("hash %#x should have been excluded by frequency delta", reject)
	}
}

func TestCreateFingerprintMaxTargetsCap(t *testing.T) {
	// Seven qualifying targets for the first anchor; only the five earliest
	// may be paired.
	peaks := []Peak{{Frequency: 100, Time: 0}}
	for i := 0; i < 7; i++ {
		peaks = append(peaks, Peak{
			Frequency: float64(101 + i),
			Time:      0.5 + 0.4*float64(i),
		})
	}

	fp, err := CreateFingerprint(peaks, 1)
	if err != nil {
		t.Fatalf("CreateFingerprint failed: %v", err)
	}

	anchorRecords := 0
	for _, records := range fp {
		for _, r := range records {
			if r.Time == 0 {
				anchorRecords++
			}
		}
	}
	if anchorRecords != 5 {
		t.Errorf("first anchor produced %d records, expected cap of 5", anchorRecords)
	}

	// The sixth target would have paired if not for the cap.
	uncapped := PackHash(100, 106, 2.5)
	if _, ok := fp[uncapped]; ok {
		t.Errorf("hash %#x should have been cut off by the target cap", uncapped)
	}
}

func TestCreateFingerprintCustomZone(t *testing.T) {
	zone := &config.TargetZone{
		TimeRange:    10.0,
		MinTimeDelta: 0.0,
		MaxFreqDelta: 1000.0,
		MaxTargets:   1,
	}
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 500, Time: 0.1},
		{Frequency: 300, Time: 5.0},
	}

	fp, err := CreateFingerprintWithZone(peaks, 1, zone)
	if err != nil {
		t.Fatalf("CreateFingerprintWithZone failed: %v", err)
	}

	// Each anchor pairs with exactly its next peak.
	if _, ok := fp[PackHash(100, 500, 0.1)]; !ok {
		t.Error("first pair missing under widened zone")
	}
	if _, ok := fp[PackHash(500, 300, 4.9)]; !ok {
		t.Error("second pair missing under widened zone")
	}
	if _, ok := fp[PackHash(100, 300, 5.0)]; ok {
		t.Error("MaxTargets of 1 should stop after the first pair")
	}
}

func TestCreateFingerprintNilZoneUsesDefault(t *testing.T) {
	peaks := []Peak{
		{Frequency: 100, Time: 0},
		{Frequency: 110, Time: 1},
	}

	fp, err := CreateFingerprintWithZone(peaks, 1, nil)
	if err != nil {
		t.Fatalf("CreateFingerprintWithZone failed: %v", err)
	}
	if _, ok := fp[PackHash(100, 110, 1.0)]; !ok {
		t.Error("nil zone should fall back to the default target zone")
	}
}

func keysOf(fp Fingerprint) []uint32 {
	keys := make([]uint32, 0, len(fp))
	for k := range fp {
		keys = append(keys, k)
	}
	return keys
}
