// Package audioplan proposes time ranges covering an audio track.
//
// No acoustic analysis happens here: segments are derived from the
// total duration and a slicing strategy only, assuming uniform time
// distribution. A silence-based planner would plug in as another
// Strategy yielding the same Segment shape.
package audioplan

import (
	"fmt"
	"time"
)

// Segment is a contiguous time range within an audio track.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of the segment.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("[%s-%s]", s.Start, s.End)
}

// Strategy selects how a track's duration is sliced. It is a sealed
// set: FixedCount, FixedLength, and Manual.
type Strategy interface {
	isStrategy()
}

// FixedCount slices the track into Count equal ranges.
type FixedCount struct {
	Count int
}

// FixedLength slices the track into ranges of Length each, the last
// one clipped to the track end.
type FixedLength struct {
	Length time.Duration
}

// Manual passes through caller-provided segments unchanged.
type Manual struct {
	Segments []Segment
}

func (FixedCount) isStrategy()  {}
func (FixedLength) isStrategy() {}
func (Manual) isStrategy()      {}

// Plan computes ordered, non-overlapping segments covering [0, total).
// A zero total or a zero count/length yields an empty plan.
func Plan(total time.Duration, strategy Strategy) ([]Segment, error) {
	if total < 0 {
		return nil, fmt.Errorf("negative total duration %s", total)
	}

	switch s := strategy.(type) {
	case FixedCount:
		return planFixedCount(total, s.Count), nil
	case FixedLength:
		return planFixedLength(total, s.Length), nil
	case Manual:
		return s.Segments, nil
	default:
		return nil, fmt.Errorf("unknown strategy %T", strategy)
	}
}

func planFixedCount(total time.Duration, count int) []Segment {
	if count <= 0 || total == 0 {
		return nil
	}

	step := total / time.Duration(count)
	segments := make([]Segment, count)
	for i := 0; i < count; i++ {
		segments[i] = Segment{
			Start: step * time.Duration(i),
			End:   step * time.Duration(i+1),
		}
	}
	// Integer division leaves a remainder on the last boundary.
	segments[count-1].End = total
	return segments
}

func planFixedLength(total, length time.Duration) []Segment {
	if length <= 0 || total == 0 {
		return nil
	}

	count := int((total + length - 1) / length)
	segments := make([]Segment, 0, count)
	for start := time.Duration(0); start < total; start += length {
		end := start + length
		if end > total {
			end = total
		}
		segments = append(segments, Segment{Start: start, End: end})
	}
	return segments
}
