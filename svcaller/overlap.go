package svcaller

import (
	"math"
	"strings"

	"github.com/grailbio/delsv/encoding/fasta"
)

// Overlap is the transient outcome of ungapped-aligning two Consensuses that
// may flank a deletion.
type Overlap struct {
	Left, Right   Consensus
	Length        int
	NumMismatches int
	Offset        int
}

// Score is numMismatches/length, the quantity OverlapEngine minimizes when
// selecting among candidate offsets.
func (o Overlap) Score() float64 {
	if o.Length == 0 {
		return math.Inf(1)
	}
	return float64(o.NumMismatches) / float64(o.Length)
}

// OverlapEngine performs ungapped, offset-scanned alignment between an
// upstream Consensus (clipped on its trailing end, so its sequence runs into
// the deletion) and a downstream Consensus (clipped on its leading end, so
// its sequence runs back into the deletion from the other side).
type OverlapEngine struct {
	MinOverlapLen int
	MaxMismatches int

	// Fasta, if non-nil, enables a reference-arbitrated rescue: when no
	// offset passes the ungapped scan, the engine fetches the reference bases
	// under the window of the closest-scoring offset and re-scores that one
	// window, not counting a consensus/consensus mismatch where either side
	// matches the reference. No additional shifts are tried, so an indel
	// between the two consensuses is not absorbed. This can only rescue a
	// call the ungapped pass would have dropped; it never overrides an
	// ungapped success. Disabled when Fasta is nil (the default).
	Fasta fasta.Fasta

	// GapSlack is not read by the engine; the rescue re-scores only the
	// closest-scoring offset.
	GapSlack int
}

// mismatchRate derives the fractional mismatch cap the ungapped scan
// enforces from the two absolute CLI parameters: MaxMismatches is allowed
// per MinOverlapLen bases of overlap, by definition of the CLI's defaults
// (2 mismatches per 10-base minimum overlap).
func (e OverlapEngine) mismatchRate() float64 {
	if e.MinOverlapLen == 0 {
		return 0
	}
	return float64(e.MaxMismatches) / float64(e.MinOverlapLen)
}

// FindBestOverlap searches offsets in [minOffset, maxOffset] for the best
// ungapped alignment between upstream and downstream, returning the Overlap
// with the lowest score (ties broken by greater length, then by smaller
// |offset|). ok is false if no offset produced a qualifying overlap.
//
// If the ungapped scan finds nothing and e.Fasta is set, FindBestOverlap
// retries the single closest-scoring offset against the actual flanking
// reference sequence at refName: a consensus/consensus mismatch that the
// reference resolves in favor of one side is not counted against either,
// which can rescue a candidate a sequencing error in one consensus would
// otherwise have sunk. This never overrides an ungapped success.
func (e OverlapEngine) FindBestOverlap(refName string, upstream, downstream Consensus, minOffset, maxOffset int) (best Overlap, ok bool) {
	rate := e.mismatchRate()
	var (
		nearMissOffset int
		nearMissScore  = math.Inf(1)
		haveNearMiss   bool
	)
	for offset := minOffset; offset <= maxOffset; offset++ {
		o, found := e.tryOffset(upstream, downstream, offset, rate)
		if found {
			if !ok || better(o, best) {
				best, ok = o, true
			}
			continue
		}
		if e.Fasta == nil {
			continue
		}
		if full, fullOK := e.tryOffset(upstream, downstream, offset, 1.0); fullOK && full.Score() < nearMissScore {
			nearMissOffset, nearMissScore, haveNearMiss = offset, full.Score(), true
		}
	}
	if ok || !haveNearMiss {
		return best, ok
	}
	return e.tryGappedRescue(refName, upstream, downstream, nearMissOffset, rate)
}

// tryGappedRescue re-scores the overlap window at offset against the actual
// reference bases fetched from e.Fasta, crediting a consensus/consensus
// mismatch as correct when either side agrees with the reference.
func (e OverlapEngine) tryGappedRescue(refName string, upstream, downstream Consensus, offset int, rate float64) (Overlap, bool) {
	upstreamWinStart := upstream.ClipPosition - upstream.LocalClipPosition
	upstreamWinEnd := upstreamWinStart + len(upstream.Sequence)
	downstreamWinStart := upstream.ClipPosition - downstream.LocalClipPosition - offset
	downstreamWinEnd := downstreamWinStart + len(downstream.Sequence)

	start := max(upstreamWinStart, downstreamWinStart)
	end := min(upstreamWinEnd, downstreamWinEnd)
	overlapLen := end - start
	if overlapLen < e.MinOverlapLen || start < 1 {
		return Overlap{}, false
	}

	// Window positions are 1-based; Fasta.Get takes 0-based coordinates.
	ref, err := e.Fasta.Get(refName, uint64(start-1), uint64(end-1))
	if err != nil || len(ref) != overlapLen {
		return Overlap{}, false
	}
	ref = strings.ToUpper(ref)

	maxMismatches := int(math.Ceil(rate * float64(overlapLen)))
	mismatches := 0
	for p := start; p < end; p++ {
		ub := upstream.Sequence[p-upstreamWinStart]
		db := downstream.Sequence[p-downstreamWinStart]
		if ub == db {
			continue
		}
		rb := ref[p-start]
		if ub != rb && db != rb {
			mismatches++
			if mismatches > maxMismatches {
				return Overlap{}, false
			}
		}
	}
	return Overlap{
		Left:          upstream,
		Right:         downstream,
		Length:        overlapLen,
		NumMismatches: mismatches,
		Offset:        offset,
	}, true
}

func better(a, b Overlap) bool {
	if a.Score() != b.Score() {
		return a.Score() < b.Score()
	}
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	return absInt(a.Offset) < absInt(b.Offset)
}

// tryOffset computes the overlap window implied by offset, compares bases
// with N-as-wildcard, and aborts early once mismatches exceed
// ceil(rate*overlapLen).
//
// offset is the small deviation from the TargetRegion-implied deletion
// length D that FindBestOverlap is scanning: D = (downstream.ClipPosition +
// offset) - upstream.ClipPosition. Collapsing the hypothesized deletion maps
// downstream's window into upstream's reference frame at
// upstream.ClipPosition - downstream.LocalClipPosition - offset; critically
// this does not depend on downstream.ClipPosition directly (it cancels),
// since the two Consensuses live on opposite sides of a gap whose length is
// exactly what's being hypothesized.
func (e OverlapEngine) tryOffset(upstream, downstream Consensus, offset int, rate float64) (Overlap, bool) {
	upstreamWinStart := upstream.ClipPosition - upstream.LocalClipPosition
	upstreamWinEnd := upstreamWinStart + len(upstream.Sequence)
	downstreamWinStart := upstream.ClipPosition - downstream.LocalClipPosition - offset
	downstreamWinEnd := downstreamWinStart + len(downstream.Sequence)

	start := max(upstreamWinStart, downstreamWinStart)
	end := min(upstreamWinEnd, downstreamWinEnd)
	overlapLen := end - start
	if overlapLen < e.MinOverlapLen {
		return Overlap{}, false
	}

	maxMismatches := int(math.Ceil(rate * float64(overlapLen)))
	mismatches := 0
	for p := start; p < end; p++ {
		ub := upstream.Sequence[p-upstreamWinStart]
		db := downstream.Sequence[p-downstreamWinStart]
		if ub != db && ub != 'N' && db != 'N' {
			mismatches++
			if mismatches > maxMismatches {
				return Overlap{}, false
			}
		}
	}
	return Overlap{
		Left:          upstream,
		Right:         downstream,
		Length:        overlapLen,
		NumMismatches: mismatches,
		Offset:        offset,
	}, true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
