// Package svcaller implements a deletion structural-variant caller: it
// extracts soft-clip and discordant-pair evidence from a coordinate-sorted,
// indexed BAM and emits breakpoint-precise deletion calls.
package svcaller

// Side identifies which end of a read's alignment was soft-clipped.
type Side uint8

const (
	// LeftClip marks a read whose leading (5' in reference orientation) end
	// is soft-clipped; the clip boundary is the first aligned base.
	LeftClip Side = iota
	// RightClip marks a read whose trailing end is soft-clipped; the clip
	// boundary is one past the last aligned base.
	RightClip
)

func (s Side) String() string {
	if s == LeftClip {
		return "LEFT"
	}
	return "RIGHT"
}

// Clip records one soft-clipped alignment, classified to one side.
type Clip struct {
	ReferenceID int
	Side        Side

	// ClipPosition is the 1-based reference position of the clip boundary:
	// for LeftClip, the first aligned base; for RightClip, one past the last
	// aligned base.
	ClipPosition int

	// Sequence and Qualities are the read's full, unclipped bases and
	// Phred+33 quality string, in reference orientation.
	Sequence  string
	Qualities string

	// LengthOfLeftPart and LengthOfRightPart split Sequence at ClipPosition:
	// LengthOfLeftPart is the read-coordinate count of bases before the clip
	// boundary, LengthOfRightPart the count at-and-after it.
	// LengthOfLeftPart + LengthOfRightPart == len(Sequence).
	LengthOfLeftPart  int
	LengthOfRightPart int

	MateReversed bool
	Reversed     bool
	MatePosition int // 1-based
}

// clippedLen returns the length of the soft-clip this Clip was accepted for:
// the leading clip size for a LeftClip, the trailing clip size for a
// RightClip.
func (c Clip) clippedLen() int {
	if c.Side == LeftClip {
		return c.LengthOfLeftPart
	}
	return c.LengthOfRightPart
}

// byPositionThenClipLen orders Clips the way Clusterer requires: by
// ClipPosition ascending, then by descending clipped length (so the
// longest-clipped read in a position group sorts first).
type byPositionThenClipLen []Clip

func (c byPositionThenClipLen) Len() int      { return len(c) }
func (c byPositionThenClipLen) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c byPositionThenClipLen) Less(i, j int) bool {
	if c[i].ClipPosition != c[j].ClipPosition {
		return c[i].ClipPosition < c[j].ClipPosition
	}
	return c[i].clippedLen() > c[j].clippedLen()
}
