// bio-delsv calls deletion structural variants from a coordinate-sorted,
// indexed BAM file using soft-clip and discordant-pair evidence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/base/file"

	"github.com/grailbio/delsv/encoding/bamprovider"
	"github.com/grailbio/delsv/encoding/fasta"
	"github.com/grailbio/delsv/svcaller"
)

var (
	mean          = flag.Float64("m", 200, "Expected mean insert size μ")
	stdDev        = flag.Float64("s", 10, "Expected insert size standard deviation σ")
	minOverlapLen = flag.Int("l", 10, "Minimum ungapped overlap length between flanking consensuses")
	maxMismatches = flag.Int("x", 2, "Maximum mismatches tolerated at minOverlapLen")
	enhanced      = flag.Int("e", 0, "Enhanced clip mode (0|1): relax proper-pair requirement for spanning-orientation reads")
	minClip       = flag.Int("c", 5, "Minimum soft-clip length to classify a read as clipped")
	outPath       = flag.String("o", "", "Output file path (required)")
	format        = flag.String("format", "bedpe", "Output format: bedpe or vcf")
	fastaPath     = flag.String("fasta", "", "Optional indexed reference FASTA path, enabling gapped-overlap rescue (requires a .fai alongside it)")
	bamIndexPath  = flag.String("index", "", "Input BAM index path. Defaults to bampath + .bai")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-m mu] [-s sigma] [-l minOverlapLen] [-x maxMismatches]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [-e enhanced(0|1)] [-c minClip] -o OUTFILE <INPUT.bam>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOther options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *outPath == "" || flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	bamPath := flag.Arg(0)

	ctx, stop := signal.NotifyContext(vcontext.Background(), os.Interrupt)
	defer stop()

	engine := svcaller.OverlapEngine{
		MinOverlapLen: *minOverlapLen,
		MaxMismatches: *maxMismatches,
	}
	if *fastaPath != "" {
		fa, err := openFasta(*fastaPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		engine.Fasta = fa
	}

	provider := bamprovider.NewProvider(bamPath, bamprovider.ProviderOpts{Index: *bamIndexPath})
	defer func() {
		if err := provider.Close(); err != nil {
			log.Printf("error closing BAM provider: %v", err)
		}
	}()

	o := svcaller.NewOrchestrator(provider, engine)
	o.MinClip = *minClip
	o.Enhanced = *enhanced != 0
	o.FallbackMean = *mean
	o.FallbackStdDev = *stdDev

	dels, err := o.Run(ctx)
	if err != nil {
		kind, _ := svcaller.KindOf(err)
		if kind != svcaller.Cancelled {
			log.Fatalf("%v", err)
		}
		// Cancelled: Run still returns whatever per-reference calls completed
		// before the signal arrived. Flush that partial set rather than
		// dropping it, using a fresh context since ctx is already canceled.
		log.Printf("cancelled, flushing %d partial deletion call(s): %v", len(dels), err)
		if werr := writeOutput(vcontext.Background(), *outPath, *format, dels); werr != nil {
			log.Printf("error flushing partial output: %v", werr)
		}
		os.Exit(130)
	}

	if err := writeOutput(ctx, *outPath, *format, dels); err != nil {
		log.Fatalf("%v", svcaller.E(svcaller.OpenFailed, err))
	}
	log.Printf("wrote %d deletion call(s) to %s", len(dels), *outPath)
}

func writeOutput(ctx context.Context, path, format string, dels []svcaller.Deletion) error {
	dst, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	w := dst.Writer(ctx)

	switch format {
	case "vcf":
		err = writeVCF(w, dels)
	default:
		err = writeBEDPE(w, dels)
	}
	if cerr := dst.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

func openFasta(path string) (fasta.Fasta, error) {
	fastaFile, err := os.Open(path)
	if err != nil {
		return nil, svcaller.E(svcaller.OpenFailed, err)
	}
	faiFile, err := os.Open(path + ".fai")
	if err != nil {
		fastaFile.Close()
		return nil, svcaller.E(svcaller.IndexMissing, err)
	}
	defer faiFile.Close()
	fa, err := fasta.NewIndexed(fastaFile, faiFile)
	if err != nil {
		return nil, svcaller.E(svcaller.IndexMissing, err)
	}
	return fa, nil
}
