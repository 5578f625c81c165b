package svcaller

import (
	"math"
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/delsv/encoding/bamprovider"
)

// TargetRegion is a candidate genomic window, built from discordant-pair
// evidence, in which a deletion may exist.
type TargetRegion struct {
	ReferenceID       int
	Start, End        int // 1-based, inclusive
	MinDeletionLength int
	MaxDeletionLength int
}

// DiscordantScanner identifies windows where paired-end insert size is
// larger than expected by the supplied InsertStats, implying a deletion, and
// translates the discordant pairs it finds into TargetRegions.
type DiscordantScanner struct {
	Stats InsertStats
	// K is the sigma multiplier used to decide both whether a pair is
	// discordant (|InsertSize| > Mean + K*StdDev) and how far apart two
	// discordant intervals may start and still be merged into the same
	// TargetRegion. Default 3.
	K float64
}

// NewDiscordantScanner returns a DiscordantScanner with K defaulted to 3.
func NewDiscordantScanner(stats InsertStats) DiscordantScanner {
	return DiscordantScanner{Stats: stats, K: 3}
}

type discordantInterval struct {
	start, end int // 1-based inclusive, start = Pos+1, end = MatePos+1
	insertSize int
}

// Scan drives it to completion, collecting discordant-pair intervals and
// merging them into TargetRegions for a single reference.
func (d DiscordantScanner) Scan(it bamprovider.Iterator, referenceID int) ([]TargetRegion, error) {
	threshold := d.Stats.Mean + d.K*d.Stats.StdDev
	var intervals []discordantInterval
	for it.Scan() {
		r := it.Record()
		if !discordantEligible(r) {
			continue
		}
		if r.Ref == nil || r.MateRef == nil || r.Ref.ID() != r.MateRef.ID() {
			continue
		}
		if r.Pos >= r.MatePos {
			continue
		}
		// Correct F/R orientation: this read forward, mate reverse.
		if r.Flags&sam.Reverse != 0 || r.Flags&sam.MateReverse == 0 {
			continue
		}
		insertSize := r.TempLen
		if insertSize < 0 {
			insertSize = -insertSize
		}
		if float64(insertSize) <= threshold {
			continue
		}
		intervals = append(intervals, discordantInterval{
			start:      r.Pos + 1,
			end:        r.MatePos + 1,
			insertSize: insertSize,
		})
	}
	if err := it.Err(); err != nil {
		return nil, E(OpenFailed, err)
	}
	if len(intervals) == 0 {
		return nil, nil
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	var regions []TargetRegion
	group := []discordantInterval{intervals[0]}
	flush := func() {
		regions = append(regions, buildTargetRegion(referenceID, group, threshold, d.Stats.Mean, d.K*d.Stats.StdDev))
	}
	for _, iv := range intervals[1:] {
		if float64(iv.start-group[len(group)-1].start) <= threshold {
			group = append(group, iv)
			continue
		}
		flush()
		group = []discordantInterval{iv}
	}
	flush()
	return regions, nil
}

// discordantEligible applies the flag mask spec.md §6 assigns to discordant
// detection: paired, mapped, mate-mapped, not a proper pair, not a
// duplicate, not QC-failed, not secondary.
func discordantEligible(r *sam.Record) bool {
	if r.Flags&sam.Paired == 0 {
		return false
	}
	if r.Flags&sam.Unmapped != 0 || r.Flags&sam.MateUnmapped != 0 {
		return false
	}
	if r.Flags&sam.ProperPair != 0 {
		return false
	}
	if r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
		return false
	}
	if r.Flags&sam.Duplicate != 0 || r.Flags&sam.QCFail != 0 {
		return false
	}
	return true
}

func buildTargetRegion(referenceID int, group []discordantInterval, threshold, mean, kSigma float64) TargetRegion {
	a, b := group[0].start, group[0].end
	maxInsert := group[0].insertSize
	for _, iv := range group[1:] {
		if iv.start < a {
			a = iv.start
		}
		if iv.end > b {
			b = iv.end
		}
		if iv.insertSize > maxInsert {
			maxInsert = iv.insertSize
		}
	}
	minLen := float64(maxInsert) - threshold
	if minLen < 0 {
		minLen = 0
	}
	maxLen := float64(maxInsert) - (mean - kSigma)
	return TargetRegion{
		ReferenceID:       referenceID,
		Start:             a,
		End:               b,
		MinDeletionLength: int(math.Round(minLen)),
		MaxDeletionLength: int(math.Round(maxLen)),
	}
}
