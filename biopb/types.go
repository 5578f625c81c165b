// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package biopb

// Coord identifies the position of a record within a BAM file: its reference
// sequence, its alignment position, and a tiebreaker for records that share
// the same (RefId,Pos).
type Coord struct {
	RefId int32
	Pos   int32
	Seq   int32
}

// CoordRange is a half-open [Start,Limit) range of Coord values.
type CoordRange struct {
	Start Coord
	Limit Coord
}
