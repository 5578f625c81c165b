package main

import (
	"fmt"
	"io"

	"github.com/grailbio/delsv/svcaller"
)

// writeVCF writes a minimal VCFv4.2 stream: a header declaring the DEL ALT
// type, followed by one record per Deletion with SVTYPE/SVLEN/END in INFO.
func writeVCF(w io.Writer, dels []svcaller.Deletion) error {
	header := "" +
		"##fileformat=VCFv4.2\n" +
		"##ALT=<ID=DEL,Description=\"Deletion\">\n" +
		"##INFO=<ID=SVTYPE,Number=1,Type=String,Description=\"Type of structural variant\">\n" +
		"##INFO=<ID=SVLEN,Number=1,Type=Integer,Description=\"Difference in length between REF and ALT alleles\">\n" +
		"##INFO=<ID=END,Number=1,Type=Integer,Description=\"End position of the variant\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, d := range dels {
		if _, err := fmt.Fprintf(w, "%s\t%d\t.\tN\t<DEL>\t.\tPASS\tSVTYPE=DEL;SVLEN=-%d;END=%d\n",
			d.ReferenceName, d.LeftBp, d.Length, d.RightBp); err != nil {
			return err
		}
	}
	return nil
}
