package svcaller

import (
	"context"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"

	"github.com/grailbio/delsv/encoding/bamprovider"
)

// buildDeletionEvidence assembles the record set for a single clean 200bp
// deletion on chr1: a matched pair of soft-clipped reads flanking the
// breakpoint, plus one discordant-insert-size pair whose window covers both
// clip positions.
func buildDeletionEvidence(chr1, chr2 *sam.Reference) (*sam.Header, []*sam.Record) {
	header := mustHeader(chr1, chr2)

	upSeq := strings.Repeat("A", 50) + "GATTACAGGG"
	upQual := strings.Repeat("I", 60)
	upCigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 55), sam.NewCigarOp(sam.CigarSoftClipped, 5)}
	up := newRecord("up1", chr1, 99944, sam.Paired|sam.ProperPair|sam.Reverse, 99700, chr1, 300, upCigar, upSeq, upQual)

	downSeq := "GATTACAGGG" + strings.Repeat("T", 50)
	downQual := strings.Repeat("I", 60)
	downCigar := sam.Cigar{sam.NewCigarOp(sam.CigarSoftClipped, 5), sam.NewCigarOp(sam.CigarMatch, 55)}
	down := newRecord("down1", chr1, 100199, sam.Paired|sam.ProperPair, 100400, chr1, 300, downCigar, downSeq, downQual)

	discordSeq, discordQual := seqQual(40)
	discordCigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 40)}
	discord := newRecord("dc1", chr1, 99999, sam.Paired|sam.MateReverse, 100199, chr1, 500, discordCigar, discordSeq, discordQual)

	return header, []*sam.Record{up, discord, down}
}

func TestOrchestratorRunCallsCleanDeletion(t *testing.T) {
	chr1 := mustRef("chr1", 200000)
	chr2 := mustRef("chr2", 1000)
	header, recs := buildDeletionEvidence(chr1, chr2)

	provider := bamprovider.NewFakeProvider(header, recs)
	engine := OverlapEngine{MinOverlapLen: 10, MaxMismatches: 2}
	o := NewOrchestrator(provider, engine)
	o.MinClip = 3

	dels, err := o.Run(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, dels, 1) {
		d := dels[0]
		assert.Equal(t, "chr1", d.ReferenceName)
		assert.Equal(t, 99999, d.LeftBp)
		assert.Equal(t, 100200, d.RightBp)
		assert.Equal(t, 200, d.Length)
		assert.Equal(t, 1, d.MergedFrom)
	}
}

func TestOrchestratorRunNoEvidenceProducesNoCalls(t *testing.T) {
	chr1 := mustRef("chr1", 200000)
	header := mustHeader(chr1)

	provider := bamprovider.NewFakeProvider(header, nil)
	engine := OverlapEngine{MinOverlapLen: 10, MaxMismatches: 2}
	o := NewOrchestrator(provider, engine)
	o.MinClip = 3

	dels, err := o.Run(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, dels)
}

func TestOrchestratorRunCancelledContext(t *testing.T) {
	chr1 := mustRef("chr1", 200000)
	chr2 := mustRef("chr2", 1000)
	header, recs := buildDeletionEvidence(chr1, chr2)

	provider := bamprovider.NewFakeProvider(header, recs)
	engine := OverlapEngine{MinOverlapLen: 10, MaxMismatches: 2}
	o := NewOrchestrator(provider, engine)
	o.MinClip = 3

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dels, err := o.Run(ctx)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Cancelled")
	}
	// Cancelled before any reference worker ran, so there is nothing to flush.
	assert.Empty(t, dels)
}

// TestOrchestratorMergeSortedKeepsCompletedReferencesOnPartialInput covers
// what Run's cancellation path relies on: mergeSorted must tolerate some
// per-reference slots being nil (a worker that never got to run, or was
// cancelled mid-flight) and still return the completed references' calls,
// rather than the whole run's output collapsing to nothing.
func TestOrchestratorMergeSortedKeepsCompletedReferencesOnPartialInput(t *testing.T) {
	o := NewOrchestrator(nil, OverlapEngine{})
	perRef := [][]Deletion{
		{{ReferenceName: "chr2", LeftBp: 500, RightBp: 700, Length: 199, MergedFrom: 1}},
		nil, // e.g. chr1's worker was still in flight when the run was cancelled
		{{ReferenceName: "chr1", LeftBp: 100, RightBp: 300, Length: 199, MergedFrom: 1}},
	}

	dels := o.mergeSorted(perRef)
	if assert.Len(t, dels, 2) {
		assert.Equal(t, "chr1", dels[0].ReferenceName)
		assert.Equal(t, "chr2", dels[1].ReferenceName)
	}
}
