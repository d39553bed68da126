package audioplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlanFixedCountCoversTrack(t *testing.T) {
	durations := []time.Duration{
		time.Second,
		90 * time.Second,
		7*time.Minute + 13*time.Second + 137*time.Millisecond,
	}
	counts := []int{1, 2, 3, 7, 10, 100}

	for _, total := range durations {
		for _, count := range counts {
			segments, err := Plan(total, FixedCount{Count: count})
			require.NoError(t, err)
			require.Len(t, segments, count)

			require.Equal(t, time.Duration(0), segments[0].Start)
			require.Equal(t, total, segments[count-1].End)
			for i := 1; i < count; i++ {
				require.Equal(t, segments[i-1].End, segments[i].Start,
					"gap or overlap at %d for total=%s count=%d", i, total, count)
			}
		}
	}
}

func TestPlanFixedCountSingleSegment(t *testing.T) {
	segments, err := Plan(time.Minute, FixedCount{Count: 1})
	require.NoError(t, err)
	require.Equal(t, []Segment{{Start: 0, End: time.Minute}}, segments)
}

func TestPlanFixedCountDegenerate(t *testing.T) {
	segments, err := Plan(time.Minute, FixedCount{Count: 0})
	require.NoError(t, err)
	require.Empty(t, segments)

	segments, err = Plan(0, FixedCount{Count: 5})
	require.NoError(t, err)
	require.Empty(t, segments)
}

func TestPlanFixedLength(t *testing.T) {
	segments, err := Plan(100*time.Second, FixedLength{Length: 30 * time.Second})
	require.NoError(t, err)
	require.Len(t, segments, 4)
	require.Equal(t, 30*time.Second, segments[0].Duration())
	require.Equal(t, Segment{Start: 90 * time.Second, End: 100 * time.Second}, segments[3])
}

func TestPlanFixedLengthExactMultiple(t *testing.T) {
	segments, err := Plan(time.Minute, FixedLength{Length: 20 * time.Second})
	require.NoError(t, err)
	require.Len(t, segments, 3)
	require.Equal(t, time.Minute, segments[2].End)
}

func TestPlanFixedLengthDegenerate(t *testing.T) {
	segments, err := Plan(time.Minute, FixedLength{Length: 0})
	require.NoError(t, err)
	require.Empty(t, segments)
}

func TestPlanManualPassthrough(t *testing.T) {
	manual := []Segment{{Start: 0, End: time.Second}, {Start: time.Second, End: 3 * time.Second}}
	segments, err := Plan(3*time.Second, Manual{Segments: manual})
	require.NoError(t, err)
	require.Equal(t, manual, segments)
}

func TestPlanNegativeTotal(t *testing.T) {
	_, err := Plan(-time.Second, FixedCount{Count: 2})
	require.Error(t, err)
}

func TestSegmentDuration(t *testing.T) {
	s := Segment{Start: 2 * time.Second, End: 5 * time.Second}
	require.Equal(t, 3*time.Second, s.Duration())
}
