package main

import (
	"fmt"
	"io"

	"github.com/grailbio/delsv/svcaller"
)

// writeBEDPE writes one BEDPE line per Deletion:
//
//	chrom  leftBp-1  leftBp  chrom  rightBp  rightBp+1  DEL  length  +  +
func writeBEDPE(w io.Writer, dels []svcaller.Deletion) error {
	for _, d := range dels {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\tDEL\t%d\t+\t+\n",
			d.ReferenceName, d.LeftBp-1, d.LeftBp,
			d.ReferenceName, d.RightBp, d.RightBp+1,
			d.Length); err != nil {
			return err
		}
	}
	return nil
}
