package svcaller

import (
	"math"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/delsv/encoding/bamprovider"
)

// DefaultInsertStatsPrefix is the number of leading properly-paired
// alignments InsertStats scans by default.
const DefaultInsertStatsPrefix = 200000

// InsertStats holds the mean and sample standard deviation of |TempLen|
// measured over a prefix of a BAM's properly-paired alignments. It is a
// pure, immutable value: computing it never touches disk beyond the scan.
type InsertStats struct {
	Mean   float64
	StdDev float64
	N      int
}

// ComputeInsertStats scans up to prefixLen properly-paired, primary records
// from it (typically an iterator over the whole file's GetFileShards range)
// and returns the mean and sample standard deviation of their absolute
// template length, computed with Welford's one-pass algorithm so the whole
// sample never needs to be held in memory.
func ComputeInsertStats(it bamprovider.Iterator, prefixLen int) (InsertStats, error) {
	var (
		n    int
		mean float64
		m2   float64
	)
	for n < prefixLen && it.Scan() {
		r := it.Record()
		if r.Flags&sam.ProperPair == 0 {
			continue
		}
		if r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}
		x := math.Abs(float64(r.TempLen))
		n++
		delta := x - mean
		mean += delta / float64(n)
		delta2 := x - mean
		m2 += delta * delta2
	}
	if err := it.Err(); err != nil {
		return InsertStats{}, E(OpenFailed, err)
	}
	stats := InsertStats{Mean: mean, N: n}
	if n > 1 {
		stats.StdDev = math.Sqrt(m2 / float64(n-1))
	}
	return stats, nil
}
