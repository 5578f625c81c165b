package bam

import "github.com/biogo/hts/sam"

// HasNoMappedMate returns true if record is unpaired or has an unmapped mate.
func HasNoMappedMate(record *sam.Record) bool {
	return (record.Flags&sam.Paired) == 0 || (record.Flags&sam.MateUnmapped) != 0
}

// IsPaired returns true if record's Paired flag is set.
func IsPaired(record *sam.Record) bool { return record.Flags&sam.Paired != 0 }

// IsProperPair returns true if record's ProperPair flag is set.
func IsProperPair(record *sam.Record) bool { return record.Flags&sam.ProperPair != 0 }

// IsUnmapped returns true if record's Unmapped flag is set.
func IsUnmapped(record *sam.Record) bool { return record.Flags&sam.Unmapped != 0 }

// IsMateUnmapped returns true if record's MateUnmapped flag is set.
func IsMateUnmapped(record *sam.Record) bool { return record.Flags&sam.MateUnmapped != 0 }

// IsReverse returns true if record's Reverse flag is set.
func IsReverse(record *sam.Record) bool { return record.Flags&sam.Reverse != 0 }

// IsMateReverse returns true if record's MateReverse flag is set.
func IsMateReverse(record *sam.Record) bool { return record.Flags&sam.MateReverse != 0 }

// IsRead1 returns true if record's Read1 flag is set.
func IsRead1(record *sam.Record) bool { return record.Flags&sam.Read1 != 0 }

// IsRead2 returns true if record's Read2 flag is set.
func IsRead2(record *sam.Record) bool { return record.Flags&sam.Read2 != 0 }

// IsSecondary returns true if record's Secondary flag is set.
func IsSecondary(record *sam.Record) bool { return record.Flags&sam.Secondary != 0 }

// IsQCFail returns true if record's QCFail flag is set.
func IsQCFail(record *sam.Record) bool { return record.Flags&sam.QCFail != 0 }

// IsDuplicate returns true if record's Duplicate flag is set.
func IsDuplicate(record *sam.Record) bool { return record.Flags&sam.Duplicate != 0 }

// IsSupplementary returns true if record's Supplementary flag is set.
func IsSupplementary(record *sam.Record) bool { return record.Flags&sam.Supplementary != 0 }

// IsPrimary returns true unless record is a secondary or supplementary
// alignment.
func IsPrimary(record *sam.Record) bool {
	return record.Flags&(sam.Secondary|sam.Supplementary) == 0
}

// leadingClipLen returns the combined length of the soft/hard clip
// operations at the start of record's CIGAR.
func leadingClipLen(cigar []sam.CigarOp) int {
	n := 0
	for _, op := range cigar {
		if op.Type() != sam.CigarSoftClipped && op.Type() != sam.CigarHardClipped {
			break
		}
		n += op.Len()
	}
	return n
}

// trailingClipLen returns the combined length of the soft/hard clip
// operations at the end of record's CIGAR.
func trailingClipLen(cigar []sam.CigarOp) int {
	n := 0
	for i := len(cigar) - 1; i >= 0; i-- {
		op := cigar[i]
		if op.Type() != sam.CigarSoftClipped && op.Type() != sam.CigarHardClipped {
			break
		}
		n += op.Len()
	}
	return n
}

// referenceSpan returns the number of reference bases consumed by record's
// CIGAR (the M/D/N/=/X operations).
func referenceSpan(cigar []sam.CigarOp) int {
	n := 0
	for _, op := range cigar {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarDeletion, sam.CigarSkipped, sam.CigarEqual, sam.CigarMismatch:
			n += op.Len()
		}
	}
	return n
}

// LeftClipDistance returns the number of bases clipped (soft or hard) from
// the start of record's alignment.
func LeftClipDistance(record *sam.Record) int { return leadingClipLen(record.Cigar) }

// RightClipDistance returns the number of bases clipped (soft or hard) from
// the end of record's alignment.
func RightClipDistance(record *sam.Record) int { return trailingClipLen(record.Cigar) }

// UnclippedStart returns the alignment start position, extended backwards to
// account for any clipped bases.
func UnclippedStart(record *sam.Record) int {
	return record.Pos - LeftClipDistance(record)
}

// UnclippedEnd returns the alignment end position (inclusive), extended
// forward to account for any clipped bases.
func UnclippedEnd(record *sam.Record) int {
	return record.Pos + referenceSpan(record.Cigar) - 1 + RightClipDistance(record)
}

// FivePrimeClipDistance returns the number of bases clipped from the 5' end
// of the sequenced template, accounting for strand.
func FivePrimeClipDistance(record *sam.Record) int {
	if IsReverse(record) {
		return RightClipDistance(record)
	}
	return LeftClipDistance(record)
}

// UnclippedFivePrimePosition returns the unclipped coordinate of the 5' end
// of the sequenced template, accounting for strand.
func UnclippedFivePrimePosition(record *sam.Record) int {
	if IsReverse(record) {
		return UnclippedEnd(record)
	}
	return UnclippedStart(record)
}

// BaseAtPos returns the base call of record at reference position refPos, and
// whether refPos falls within the aligned span of record. A refPos that falls
// inside a deletion or skip returns (0, true): the position is covered by the
// alignment, but no base was sequenced there.
func BaseAtPos(record *sam.Record, refPos int) (byte, bool) {
	seq := record.Seq.Expand()
	pos := record.Pos
	seqIdx := 0
	for _, op := range record.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if refPos >= pos && refPos < pos+n {
				return seq[seqIdx+(refPos-pos)], true
			}
			pos += n
			seqIdx += n
		case sam.CigarDeletion, sam.CigarSkipped:
			if refPos >= pos && refPos < pos+n {
				return 0, true
			}
			pos += n
		case sam.CigarInsertion, sam.CigarSoftClipped:
			seqIdx += n
		case sam.CigarHardClipped, sam.CigarPadded:
			// Consume neither the reference nor the read sequence.
		}
	}
	return 0, false
}
