package svcaller

import "sort"

// Deletion is a breakpoint-precise deletion call.
type Deletion struct {
	ReferenceName string
	LeftBp        int // 1-based, inclusive: last aligned base before the deletion
	RightBp       int // 1-based, inclusive: first aligned base after the deletion
	Length        int // deleted base count
	MergedFrom    int // CallMerger support count; 1 until merged
}

// DeletionCaller searches, for each TargetRegion on a reference, the
// upstream (RightClip) and downstream (LeftClip) Consensus streams for an
// overlapping pair that explains the region's discordant evidence as a
// deletion.
type DeletionCaller struct {
	Engine          OverlapEngine
	LengthThreshold int // minimum accepted deletion length; default 50
}

// NewDeletionCaller returns a DeletionCaller with LengthThreshold defaulted
// to 50.
func NewDeletionCaller(engine OverlapEngine) DeletionCaller {
	return DeletionCaller{Engine: engine, LengthThreshold: 50}
}

// Call evaluates one TargetRegion against the given sorted-by-ClipPosition
// upstream (RightClip-side) and downstream (LeftClip-side) Consensus slices
// for the region's reference, returning at most one Deletion.
func (c DeletionCaller) Call(region TargetRegion, referenceName string, upstreams, downstreams []Consensus) (Deletion, bool) {
	rights := inRange(upstreams, region.Start, region.End)
	lefts := inRange(downstreams, region.Start, region.End)

	var (
		best         Overlap
		bestR, bestL Consensus
		found        bool
	)
	for _, r := range rights {
		for _, l := range lefts {
			baseDist := l.ClipPosition - r.ClipPosition
			if baseDist < region.MinDeletionLength {
				continue
			}
			if baseDist > region.MaxDeletionLength {
				break
			}
			minOffset := region.MinDeletionLength - baseDist
			maxOffset := region.MaxDeletionLength - baseDist
			o, ok := c.Engine.FindBestOverlap(referenceName, r, l, minOffset, maxOffset)
			if !ok {
				continue
			}
			if !found || better(o, best) {
				best, bestR, bestL = o, r, l
				found = true
			}
		}
	}
	if !found {
		return Deletion{}, false
	}

	leftBp := bestR.ClipPosition - 1
	rightBp := bestL.ClipPosition + best.Offset
	length := rightBp - leftBp - 1

	if length < c.LengthThreshold {
		return Deletion{}, false
	}
	if length > region.MaxDeletionLength {
		return Deletion{}, false
	}
	if best.Score() >= c.Engine.mismatchRate() {
		return Deletion{}, false
	}
	return Deletion{
		ReferenceName: referenceName,
		LeftBp:        leftBp,
		RightBp:       rightBp,
		Length:        length,
		MergedFrom:    1,
	}, true
}

// inRange returns the subslice of consensuses (sorted by ClipPosition) whose
// ClipPosition falls within [start, end], using binary search for both
// bounds.
func inRange(consensuses []Consensus, start, end int) []Consensus {
	lo := sort.Search(len(consensuses), func(i int) bool {
		return consensuses[i].ClipPosition >= start
	})
	hi := sort.Search(len(consensuses), func(i int) bool {
		return consensuses[i].ClipPosition > end
	})
	if lo >= hi {
		return nil
	}
	return consensuses[lo:hi]
}
