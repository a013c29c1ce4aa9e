package profile

import (
	"errors"
	"fmt"

	"github.com/banshee-data/birdprofile/internal/profile/svd"
)

// Sentinel error kinds, one per pipeline failure mode. Call sites wrap these with
// %w so errors.Is still recognizes the kind after context is attached.
var (
	// ErrConfigInvalid means a configuration option is out of bounds or malformed.
	ErrConfigInvalid = errors.New("profile: config invalid")
	// ErrMissingParameter means a requested scan parameter is absent.
	ErrMissingParameter = errors.New("profile: missing parameter")
	// ErrRangeEncoding means a decoded value does not fit its byte encoding.
	ErrRangeEncoding = errors.New("profile: value does not fit byte encoding")
	// ErrSvdNonConvergent means QR iteration exceeded its sweep cap. It is
	// the svd package's sentinel re-exported so callers only need this
	// package to classify failures; the engine treats it as layer-local.
	ErrSvdNonConvergent = svd.ErrNonConvergent
	// ErrCellFinderDegenerate means the dBZ threshold encodes to the missing sentinel.
	ErrCellFinderDegenerate = errors.New("profile: cell finder threshold degenerate")
	// ErrIndexOverflow means a layer's write window was exceeded; a programming error.
	ErrIndexOverflow = errors.New("profile: points table index overflow")
)

func errIndexOverflowf(layer int) error {
	return fmt.Errorf("%w: layer %d", ErrIndexOverflow, layer)
}
