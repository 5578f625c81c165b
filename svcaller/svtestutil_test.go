package svcaller

import (
	"github.com/biogo/hts/sam"
)

// newRecord builds a minimal *sam.Record for use in table-driven tests,
// adapted from the record builders markduplicates tests use.
func newRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, matePos int, mateRef *sam.Reference, tempLen int, cigar sam.Cigar, seq, qual string) *sam.Record {
	r := &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MateRef: mateRef,
		MatePos: matePos,
		Flags:   flags,
		TempLen: tempLen,
		Cigar:   cigar,
	}
	if seq != "" {
		r.Seq = sam.NewSeq([]byte(seq))
		r.Qual = []byte(qual)
	}
	return r
}

func mustRef(name string, length int) *sam.Reference {
	ref, err := sam.NewReference(name, "", "", length, nil, nil)
	if err != nil {
		panic(err)
	}
	return ref
}

func mustHeader(refs ...*sam.Reference) *sam.Header {
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		panic(err)
	}
	return h
}
