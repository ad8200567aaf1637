package errs

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can branch on the cause
// without parsing message strings.
type Kind int

const (
	// InvalidInput indicates malformed or out-of-range parameters.
	InvalidInput Kind = iota
	// InsufficientSamples indicates the sample buffer is shorter than one
	// analysis window.
	InsufficientSamples
	// InvalidFrequencyRange indicates the requested frequency range maps to
	// a degenerate bin range after clamping.
	InvalidFrequencyRange
	// EmptyInput indicates a zero-size spectrogram.
	EmptyInput
	// NoPeaksFound indicates no landmark survived thresholding.
	NoPeaksFound
	// NoHashesGenerated indicates no anchor/target pair satisfied the
	// pairing filters.
	NoHashesGenerated
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case InsufficientSamples:
		return "insufficient_samples"
	case InvalidFrequencyRange:
		return "invalid_frequency_range"
	case EmptyInput:
		return "empty_input"
	case NoPeaksFound:
		return "no_peaks_found"
	case NoHashesGenerated:
		return "no_hashes_generated"
	default:
		return "unknown"
	}
}

// Error is the tagged failure value returned by every pipeline stage.
// A stage either returns a usable value or an *Error; partial results are
// never returned as success.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes errors.Is match two *Error values by kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New creates a tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the Kind from an error chain. The second return value is
// false if the chain contains no *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
