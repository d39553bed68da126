// Package match reconciles an ordered list of paragraphs with an
// ordered list of audio time segments when their counts disagree.
package match

import (
	"time"

	"readaloud/internal/audioplan"
)

// Strategy is the count-reconciliation policy picked for a match pass.
type Strategy int

const (
	// StrategyOneToOne pairs paragraph i with segment i.
	StrategyOneToOne Strategy = iota
	// StrategyMerge fuses runs of segments so each paragraph gets one range.
	StrategyMerge
	// StrategySplit subdivides segments so each paragraph gets one range.
	StrategySplit
)

func (s Strategy) String() string {
	switch s {
	case StrategyOneToOne:
		return "one-to-one"
	case StrategyMerge:
		return "merge"
	case StrategySplit:
		return "split"
	default:
		return "unknown"
	}
}

const (
	// Above this mismatch ratio, one-to-one pairing is abandoned for
	// merge or split.
	strategyCutoff = 0.2
	// Above this mismatch ratio, the result is flagged for human
	// review. Intentionally looser than strategyCutoff: ratios in
	// (0.2, 0.3] run merge/split without being flagged.
	reviewCutoff = 0.3
)

// Pair assigns one time range to one paragraph. HasAudio is false when
// the strategy could not give the paragraph any range (an empty merge
// group); such paragraphs end up without audio.
type Pair struct {
	ParagraphIndex int // zero-based position in the paragraph list
	Range          audioplan.Segment
	HasAudio       bool
}

// Plan is the outcome of one match pass.
type Plan struct {
	Strategy              Strategy
	Ratio                 float64
	NeedsManualAdjustment bool
	Pairs                 []Pair
}

// Align matches paragraphCount ordered paragraphs against ordered,
// covering segments. It is a pure function: materializing audio for
// each pair is the caller's concern.
func Align(paragraphCount int, segments []audioplan.Segment) Plan {
	p, s := paragraphCount, len(segments)
	if p == 0 && s == 0 {
		return Plan{Strategy: StrategyOneToOne}
	}

	ratio := mismatchRatio(p, s)
	plan := Plan{
		Ratio:                 ratio,
		NeedsManualAdjustment: ratio > reviewCutoff,
	}

	switch {
	case p == 0 || s == 0:
		// Nothing to pair; the ratio is 1 and the plan is flagged.
		plan.Strategy = StrategyOneToOne
		if s > p {
			plan.Strategy = StrategyMerge
		} else if p > s {
			plan.Strategy = StrategySplit
		}
	case ratio <= strategyCutoff:
		plan.Strategy = StrategyOneToOne
		plan.Pairs = alignOneToOne(p, segments)
	case s > p:
		plan.Strategy = StrategyMerge
		plan.Pairs = alignMerge(p, segments)
	default:
		plan.Strategy = StrategySplit
		plan.Pairs = alignSplit(p, segments)
	}
	return plan
}

func mismatchRatio(p, s int) float64 {
	diff := p - s
	if diff < 0 {
		diff = -diff
	}
	max := p
	if s > max {
		max = s
	}
	return float64(diff) / float64(max)
}

// alignOneToOne pairs index-for-index up to the shorter list. Leftover
// paragraphs or segments stay unmatched.
func alignOneToOne(paragraphCount int, segments []audioplan.Segment) []Pair {
	n := paragraphCount
	if len(segments) < n {
		n = len(segments)
	}
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{ParagraphIndex: i, Range: segments[i], HasAudio: true}
	}
	return pairs
}

// alignMerge partitions segments into paragraphCount contiguous groups
// of ceil(S/P) and fuses each group into a single range. Groups past
// the end of the segment list are empty and leave their paragraph
// without audio.
func alignMerge(paragraphCount int, segments []audioplan.Segment) []Pair {
	groupSize := ceilDiv(len(segments), paragraphCount)
	pairs := make([]Pair, paragraphCount)
	for i := 0; i < paragraphCount; i++ {
		lo := i * groupSize
		if lo >= len(segments) {
			pairs[i] = Pair{ParagraphIndex: i}
			continue
		}
		hi := lo + groupSize
		if hi > len(segments) {
			hi = len(segments)
		}
		pairs[i] = Pair{
			ParagraphIndex: i,
			Range: audioplan.Segment{
				Start: segments[lo].Start,
				End:   segments[hi-1].End,
			},
			HasAudio: true,
		}
	}
	return pairs
}

// alignSplit partitions paragraphs into len(segments) contiguous groups
// of ceil(P/S) and subdivides each group's segment evenly across the
// group's members, back-to-back from the segment start with the final
// sub-range clipped to the segment end. The sub-ranges of one group
// reconstruct the segment exactly.
func alignSplit(paragraphCount int, segments []audioplan.Segment) []Pair {
	groupSize := ceilDiv(paragraphCount, len(segments))
	pairs := make([]Pair, 0, paragraphCount)
	for j, seg := range segments {
		lo := j * groupSize
		if lo >= paragraphCount {
			break
		}
		hi := lo + groupSize
		if hi > paragraphCount {
			hi = paragraphCount
		}
		members := hi - lo
		sub := seg.Duration() / time.Duration(members)
		for k := 0; k < members; k++ {
			r := audioplan.Segment{
				Start: seg.Start + sub*time.Duration(k),
				End:   seg.Start + sub*time.Duration(k+1),
			}
			if k == members-1 {
				r.End = seg.End
			}
			pairs = append(pairs, Pair{ParagraphIndex: lo + k, Range: r, HasAudio: true})
		}
	}
	return pairs
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
