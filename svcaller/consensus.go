package svcaller

import "sort"

// Consensus is the quality-weighted majority base string over a Cluster: one
// representative sequence plus the offset within it where ClipPosition
// falls.
type Consensus struct {
	ReferenceID  int
	ClipPosition int
	// LocalClipPosition is the offset of ClipPosition within Sequence: the
	// number of bases of Sequence that precede the clip boundary.
	LocalClipPosition int
	Sequence          string
	Support           int
}

// BuildConsensus derives a Consensus from a non-empty Cluster, correcting
// each base by quality-weighted majority vote across member Clips that
// cover it. The window width is set by the *second-largest* left/right
// extent among members (not the largest), so a single outlier-long read
// cannot widen the consensus beyond majority-supported coverage.
func BuildConsensus(c Cluster) Consensus {
	if len(c.Clips) == 1 {
		clip := c.Clips[0]
		return Consensus{
			ReferenceID:       c.ReferenceID,
			ClipPosition:      c.ClipPosition,
			LocalClipPosition: clip.LengthOfLeftPart,
			Sequence:          clip.Sequence,
			Support:           1,
		}
	}

	leftParts := make([]int, len(c.Clips))
	rightParts := make([]int, len(c.Clips))
	for i, clip := range c.Clips {
		leftParts[i] = clip.LengthOfLeftPart
		rightParts[i] = clip.LengthOfRightPart
	}
	nLeft := secondLargest(leftParts)
	nRight := secondLargest(rightParts)
	n := nLeft + nRight

	seq := make([]byte, n)
	for i := 0; i < n; i++ {
		seq[i] = correctBaseAt(c.Clips, nLeft, i)
	}
	return Consensus{
		ReferenceID:       c.ReferenceID,
		ClipPosition:      c.ClipPosition,
		LocalClipPosition: nLeft,
		Sequence:          string(seq),
		Support:           len(c.Clips),
	}
}

// secondLargest returns the second order statistic of vals: sort descending
// and take the element at index 1. REQUIRES len(vals) >= 2.
func secondLargest(vals []int) int {
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return sorted[1]
}

// correctBaseAt resolves the consensus base at window offset i (0 <= i <
// nLeft+nRight) by tallying, across every member clip whose window covers
// i, the base call and its quality. The symbol with the highest count wins;
// ties break by highest average quality, then by lexicographically smallest
// symbol.
func correctBaseAt(clips []Clip, nLeft, i int) byte {
	counts := map[byte]int{}
	qualSums := map[byte]int{}
	for _, clip := range clips {
		diff := clip.LengthOfLeftPart - nLeft
		idx := diff + i
		if idx < 0 || idx >= len(clip.Sequence) {
			continue
		}
		base := clip.Sequence[idx]
		counts[base]++
		qualSums[base] += int(clip.Qualities[idx])
	}
	var best byte
	bestCount := -1
	bestAvgQual := -1.0
	first := true
	symbols := make([]byte, 0, len(counts))
	for b := range counts {
		symbols = append(symbols, b)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	for _, b := range symbols {
		count := counts[b]
		avgQual := float64(qualSums[b]) / float64(count)
		if first || count > bestCount ||
			(count == bestCount && avgQual > bestAvgQual) {
			best = b
			bestCount = count
			bestAvgQual = avgQual
			first = false
		}
	}
	return best
}
