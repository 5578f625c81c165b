package svcaller

import (
	"sort"

	"github.com/biogo/store/interval"
)

// CallMerger deduplicates the raw per-TargetRegion Deletions a DeletionCaller
// produces, merging calls whose intervals dovetail or nest.
type CallMerger struct {
	// SimilarityFraction is the relative length difference within which two
	// merging calls are considered equivalent enough to take the
	// intersection of their breakpoints; beyond it, the higher-support call
	// wins outright. Default 0.10.
	SimilarityFraction float64
}

// NewCallMerger returns a CallMerger with SimilarityFraction defaulted to
// 0.10.
func NewCallMerger() CallMerger {
	return CallMerger{SimilarityFraction: 0.10}
}

// Merge sorts calls by (ReferenceName, LeftBp, RightBp) and merges adjacent
// calls that dovetail (their intervals overlap) or nest (one contains the
// other), producing a canonical, non-overlapping set with MergedFrom support
// counts.
func (m CallMerger) Merge(calls []Deletion) []Deletion {
	if len(calls) == 0 {
		return nil
	}
	sorted := make([]Deletion, len(calls))
	copy(sorted, calls)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ReferenceName != sorted[j].ReferenceName {
			return sorted[i].ReferenceName < sorted[j].ReferenceName
		}
		if sorted[i].LeftBp != sorted[j].LeftBp {
			return sorted[i].LeftBp < sorted[j].LeftBp
		}
		return sorted[i].RightBp < sorted[j].RightBp
	})

	var merged []Deletion
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.ReferenceName == cur.ReferenceName && dovetailsOrNests(cur, next) {
			cur = m.combine(cur, next)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)

	assertNoOverlap(merged)
	return merged
}

// dovetailsOrNests reports whether a and b's [LeftBp, RightBp] intervals
// overlap or one contains the other.
func dovetailsOrNests(a, b Deletion) bool {
	return a.LeftBp <= b.RightBp && b.LeftBp <= a.RightBp
}

// combine merges b into a. If their lengths are within SimilarityFraction of
// each other, the result is the intersection of their breakpoints
// (tightest common call); otherwise the higher-support call wins. Either
// way MergedFrom accumulates.
func (m CallMerger) combine(a, b Deletion) Deletion {
	support := a.MergedFrom + b.MergedFrom
	if similarLength(a.Length, b.Length, m.SimilarityFraction) {
		leftBp := max(a.LeftBp, b.LeftBp)
		rightBp := min(a.RightBp, b.RightBp)
		return Deletion{
			ReferenceName: a.ReferenceName,
			LeftBp:        leftBp,
			RightBp:       rightBp,
			Length:        rightBp - leftBp - 1,
			MergedFrom:    support,
		}
	}
	winner := a
	if b.MergedFrom > a.MergedFrom {
		winner = b
	}
	winner.MergedFrom = support
	return winner
}

func similarLength(a, b int, fraction float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	larger := a
	if b > larger {
		larger = b
	}
	return float64(diff) <= fraction*float64(larger)
}

// delInterval adapts a Deletion to interval.IntTree's IntInterface, used by
// assertNoOverlap to query for overlapping neighbors in O(log n + k) instead
// of an all-pairs scan.
type delInterval struct {
	uid uintptr
	Deletion
}

func (d delInterval) ID() uintptr { return d.uid }
func (d delInterval) Range() interval.IntRange {
	return interval.IntRange{Start: d.LeftBp, End: d.RightBp + 1}
}
func (d delInterval) Overlap(b interval.IntRange) bool {
	return d.LeftBp < b.End && b.Start < d.RightBp+1
}

// assertNoOverlap panics if any two calls in merged dovetail or nest; it is
// a self-check on the merge sweep above, not a second merging pass.
func assertNoOverlap(merged []Deletion) {
	byRef := map[string][]Deletion{}
	for _, d := range merged {
		byRef[d.ReferenceName] = append(byRef[d.ReferenceName], d)
	}
	for _, ds := range byRef {
		var tree interval.IntTree
		for i, d := range ds {
			if err := tree.Insert(delInterval{uid: uintptr(i), Deletion: d}, true); err != nil {
				panic(err)
			}
		}
		tree.AdjustRanges()
		for _, d := range ds {
			hits := tree.Get(delInterval{Deletion: d})
			if len(hits) > 1 {
				panic("svcaller: CallMerger produced overlapping output calls")
			}
		}
	}
}
