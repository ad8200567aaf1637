// Command audioprint fingerprints audio files from the command line.
//
// With one file it prints the fingerprint summary; with two it also prints
// how well the two recordings match.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sortify/audioprint/fingerprint"
	"github.com/sortify/audioprint/fingerprint/config"
	"github.com/sortify/audioprint/logging"
	"github.com/sortify/audioprint/transcode"
)

func main() {
	var (
		songID  = flag.Int("song-id", 0, "source identifier stored in the fingerprint")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio-file> [second-audio-file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	ctx := context.Background()
	decoder := transcode.NewDecoder(nil)
	generator := fingerprint.NewGenerator(config.DefaultPipelineConfig())

	fingerprints := make([]*fingerprint.AudioFingerprint, 0, flag.NArg())

	for i, path := range flag.Args() {
		audio, err := decoder.DecodeFile(ctx, path)
		if err != nil {
			logging.Fatal(err, "failed to decode audio file", logging.Fields{"file": path})
		}

		fp, err := generator.Fingerprint(audio, *songID+i)
		if err != nil {
			logging.Fatal(err, "failed to fingerprint audio file", logging.Fields{"file": path})
		}

		fmt.Printf("%s: %d peaks, %d unique hashes, %.1fs\n",
			path, fp.PeakCount, len(fp.Hashes), fp.Duration.Seconds())
		fingerprints = append(fingerprints, fp)
	}

	if len(fingerprints) == 2 {
		match := fingerprint.CompareFingerprints(fingerprints[0].Hashes, fingerprints[1].Hashes)
		fmt.Printf("match: %d shared hashes (%.1f%%), offset %dms, confidence %.1f%%\n",
			match.MatchingHashes, match.MatchPercentage, match.BestOffsetMs, match.Confidence)
	}
}
