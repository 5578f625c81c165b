package svcaller

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"

	gbam "github.com/grailbio/delsv/encoding/bam"
	"github.com/grailbio/delsv/encoding/bamprovider"
)

func discordantFRRecord(ref *sam.Reference, pos, matePos int) *sam.Record {
	tempLen := matePos - pos
	return newRecord("r", ref, pos, sam.Paired|sam.MateReverse, matePos, ref, tempLen, nil, "", "")
}

func TestDiscordantScannerBuildsTargetRegion(t *testing.T) {
	chr1 := mustRef("chr1", 1000000)
	header := mustHeader(chr1)
	stats := InsertStats{Mean: 300, StdDev: 10, N: 1000}
	scanner := NewDiscordantScanner(stats)

	// threshold = 300 + 3*10 = 330; insert sizes of 600 are well beyond it.
	recs := []*sam.Record{
		discordantFRRecord(chr1, 9999, 10599),
		discordantFRRecord(chr1, 10005, 10605),
		discordantFRRecord(chr1, 10010, 10610),
	}
	provider := bamprovider.NewFakeProvider(header, recs)
	it := provider.NewIterator(gbam.UniversalShard(header))
	regions, err := scanner.Scan(it, chr1.ID())
	assert.NoError(t, err)
	assert.NoError(t, it.Close())

	if assert.Len(t, regions, 1) {
		r := regions[0]
		assert.Equal(t, chr1.ID(), r.ReferenceID)
		assert.True(t, r.MinDeletionLength >= 0)
		assert.True(t, r.MaxDeletionLength >= r.MinDeletionLength)
	}
}

func TestDiscordantScannerNoEvidence(t *testing.T) {
	chr1 := mustRef("chr1", 1000000)
	header := mustHeader(chr1)
	stats := InsertStats{Mean: 300, StdDev: 10, N: 1000}
	scanner := NewDiscordantScanner(stats)

	recs := []*sam.Record{
		discordantFRRecord(chr1, 1000, 1300), // insert size 300, within threshold
	}
	provider := bamprovider.NewFakeProvider(header, recs)
	it := provider.NewIterator(gbam.UniversalShard(header))
	regions, err := scanner.Scan(it, chr1.ID())
	assert.NoError(t, err)
	assert.NoError(t, it.Close())
	assert.Empty(t, regions)
}

func TestDiscordantScannerSeparatesDistantGroups(t *testing.T) {
	chr1 := mustRef("chr1", 10000000)
	header := mustHeader(chr1)
	stats := InsertStats{Mean: 300, StdDev: 10, N: 1000}
	scanner := NewDiscordantScanner(stats)

	recs := []*sam.Record{
		discordantFRRecord(chr1, 1000, 1600),
		discordantFRRecord(chr1, 900000, 900600),
	}
	provider := bamprovider.NewFakeProvider(header, recs)
	it := provider.NewIterator(gbam.UniversalShard(header))
	regions, err := scanner.Scan(it, chr1.ID())
	assert.NoError(t, err)
	assert.NoError(t, it.Close())
	assert.Len(t, regions, 2)
}
