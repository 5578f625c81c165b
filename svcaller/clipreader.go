package svcaller

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/delsv/encoding/bamprovider"
)

// enhancedInsertSizeMin is the minimum |TempLen| enhanced mode requires
// before trusting an improper pair's orientation as deletion-spanning
// evidence, per spec.md §4.A's "e.g. > 540" example.
const enhancedInsertSizeMin = 540

// ExtractClips drives it to completion, classifying each alignment's
// leading/trailing soft clips into Clip records. Records that fail the base
// eligibility filter (unpaired, unmapped, mate-unmapped, duplicate, QC-fail,
// secondary/supplementary) contribute no Clip. malformed counts records
// skipped due to a CIGAR/sequence inconsistency; it does not stop the scan.
func ExtractClips(it bamprovider.Iterator, minClip int, enhanced bool) (left, right []Clip, malformed int, err error) {
	for it.Scan() {
		r := it.Record()
		if !eligibleForClipping(r) {
			continue
		}
		if ok := validateCigarSeq(r); !ok {
			malformed++
			continue
		}
		properPairOK := r.Flags&sam.ProperPair != 0
		if !properPairOK {
			if !enhanced || !enhancedOrientationOK(r) {
				continue
			}
		}

		leadClip := leadingSoftClipLen(r.Cigar)
		trailClip := trailingSoftClipLen(r.Cigar)
		reverse := r.Flags&sam.Reverse != 0
		mateReversed := r.Flags&sam.MateReverse != 0

		if properPairOK && !reverse && leadClip > minClip && trailClip <= minClip {
			left = append(left, Clip{
				ReferenceID:       r.Ref.ID(),
				Side:              LeftClip,
				ClipPosition:      r.Pos + 1,
				Sequence:          string(r.Seq.Expand()),
				Qualities:         string(qualToPhred33(r.Qual)),
				LengthOfLeftPart:  leadClip,
				LengthOfRightPart: len(r.Seq.Expand()) - leadClip,
				MateReversed:      mateReversed,
				Reversed:          reverse,
				MatePosition:      r.MatePos + 1,
			})
			continue
		}
		if properPairOK && reverse && trailClip > minClip && leadClip <= minClip {
			right = append(right, Clip{
				ReferenceID:       r.Ref.ID(),
				Side:              RightClip,
				ClipPosition:      r.Pos + referenceSpan(r.Cigar) + 1,
				Sequence:          string(r.Seq.Expand()),
				Qualities:         string(qualToPhred33(r.Qual)),
				LengthOfLeftPart:  len(r.Seq.Expand()) - trailClip,
				LengthOfRightPart: trailClip,
				MateReversed:      mateReversed,
				Reversed:          reverse,
				MatePosition:      r.MatePos + 1,
			})
			continue
		}
		if !enhanced || properPairOK {
			continue
		}
		// Mirror the two base rules onto the opposite strand. This is the
		// symmetrical "ReverseBClip" branch: forward-strand reads can flank a
		// deletion on their trailing end, and reverse-strand reads on their
		// leading end, exactly as the unmirrored cases do for the near flank.
		if reverse && leadClip > minClip && trailClip <= minClip {
			left = append(left, Clip{
				ReferenceID:       r.Ref.ID(),
				Side:              LeftClip,
				ClipPosition:      r.Pos + 1,
				Sequence:          string(r.Seq.Expand()),
				Qualities:         string(qualToPhred33(r.Qual)),
				LengthOfLeftPart:  leadClip,
				LengthOfRightPart: len(r.Seq.Expand()) - leadClip,
				MateReversed:      mateReversed,
				Reversed:          reverse,
				MatePosition:      r.MatePos + 1,
			})
			continue
		}
		if !reverse && trailClip > minClip && leadClip <= minClip {
			right = append(right, Clip{
				ReferenceID:       r.Ref.ID(),
				Side:              RightClip,
				ClipPosition:      r.Pos + referenceSpan(r.Cigar) + 1,
				Sequence:          string(r.Seq.Expand()),
				Qualities:         string(qualToPhred33(r.Qual)),
				LengthOfLeftPart:  len(r.Seq.Expand()) - trailClip,
				LengthOfRightPart: trailClip,
				MateReversed:      mateReversed,
				Reversed:          reverse,
				MatePosition:      r.MatePos + 1,
			})
		}
	}
	if ierr := it.Err(); ierr != nil {
		err = E(OpenFailed, ierr)
		return nil, nil, malformed, err
	}
	return left, right, malformed, nil
}

// eligibleForClipping applies the base record filter shared by every clip
// acceptance rule: paired, mapped, mate-mapped, primary, not a duplicate or
// QC failure.
func eligibleForClipping(r *sam.Record) bool {
	if r.Flags&sam.Paired == 0 {
		return false
	}
	if r.Flags&sam.Unmapped != 0 || r.Flags&sam.MateUnmapped != 0 {
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

// enhancedOrientationOK reports whether an improper pair's strand
// orientation and insert size are still consistent with a deletion spanning
// the pair: F/R with the mate downstream, or R/F with the mate upstream, and
// |TempLen| large enough to suggest the gap a deletion would introduce.
func enhancedOrientationOK(r *sam.Record) bool {
	if r.TempLen < 0 {
		if -r.TempLen <= enhancedInsertSizeMin {
			return false
		}
	} else if r.TempLen <= enhancedInsertSizeMin {
		return false
	}
	reverse := r.Flags&sam.Reverse != 0
	mateReversed := r.Flags&sam.MateReverse != 0
	if !reverse && mateReversed && r.MatePos > r.Pos {
		return true // F/R, mate downstream
	}
	if reverse && !mateReversed && r.MatePos < r.Pos {
		return true // R/F, mate upstream
	}
	return false
}

// leadingSoftClipLen returns the length of a soft-clip op at the start of
// cigar, or 0 if none.
func leadingSoftClipLen(cigar sam.Cigar) int {
	if len(cigar) == 0 {
		return 0
	}
	if cigar[0].Type() == sam.CigarSoftClipped {
		return cigar[0].Len()
	}
	return 0
}

// trailingSoftClipLen returns the length of a soft-clip op at the end of
// cigar, or 0 if none.
func trailingSoftClipLen(cigar sam.Cigar) int {
	if len(cigar) == 0 {
		return 0
	}
	last := cigar[len(cigar)-1]
	if last.Type() == sam.CigarSoftClipped {
		return last.Len()
	}
	return 0
}

// referenceSpan returns the number of reference bases consumed by cigar.
func referenceSpan(cigar sam.Cigar) int {
	n := 0
	for _, op := range cigar {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarDeletion, sam.CigarSkipped, sam.CigarEqual, sam.CigarMismatch:
			n += op.Len()
		}
	}
	return n
}

// validateCigarSeq reports whether r's CIGAR is self-consistent with its
// sequence: no op has a negative length, and the CIGAR's read-consuming ops
// account for exactly len(Seq) bases.
func validateCigarSeq(r *sam.Record) bool {
	seq := r.Seq.Expand()
	if len(seq) != len(r.Qual) {
		return false
	}
	readLen := 0
	for _, op := range r.Cigar {
		if op.Len() < 0 {
			return false
		}
		switch op.Type() {
		case sam.CigarMatch, sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarEqual, sam.CigarMismatch:
			readLen += op.Len()
		}
	}
	return readLen == len(seq)
}

// qualToPhred33 converts raw (0-based) quality scores to a Phred+33 string.
func qualToPhred33(qual []byte) []byte {
	out := make([]byte, len(qual))
	for i, q := range qual {
		out[i] = q + 33
	}
	return out
}
