// Package clip extracts time ranges from an audio track by proportional
// byte slicing. The mapping from time to byte offset assumes a constant
// bitrate; it is an approximation, not signal analysis, and will drift
// on variable-bitrate files.
package clip

import (
	"errors"
	"fmt"
	"time"

	"readaloud/internal/audioplan"
)

var errZeroTotal = errors.New("total duration is zero")

// Cutter slices byte ranges proportional to time ranges.
type Cutter struct{}

// New constructs a Cutter.
func New() *Cutter {
	return &Cutter{}
}

// Cut returns the bytes of audio covering rng within a track of length
// total. The returned slice is a copy.
func (c *Cutter) Cut(audio []byte, rng audioplan.Segment, total time.Duration) ([]byte, error) {
	if total <= 0 {
		return nil, errZeroTotal
	}
	if rng.Start < 0 || rng.End < rng.Start || rng.End > total {
		return nil, fmt.Errorf("range %s outside track of %s", rng, total)
	}

	size := int64(len(audio))
	lo := size * int64(rng.Start) / int64(total)
	hi := size * int64(rng.End) / int64(total)

	out := make([]byte, hi-lo)
	copy(out, audio[lo:hi])
	return out, nil
}
