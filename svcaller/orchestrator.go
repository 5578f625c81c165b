package svcaller

import (
	"context"
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/traverse"
	gbam "github.com/grailbio/delsv/encoding/bam"
	"github.com/grailbio/delsv/encoding/bamprovider"
)

// Orchestrator wires the pipeline stages together over a bamprovider.Provider:
// a global InsertStats pass, then one clip-extraction + discordant-scan +
// deletion-calling pass per reference, run in parallel across references,
// finished by a single CallMerger pass over the union of per-reference calls.
type Orchestrator struct {
	Provider bamprovider.Provider

	MinClip  int
	Enhanced bool

	InsertStatsPrefix int
	SigmaMultiplier   float64 // DiscordantScanner.K; default 3

	// FallbackMean and FallbackStdDev seed InsertStats when the file's
	// proper-pair prefix scan yields no samples (N==0), e.g. a BAM with no
	// properly-paired reads at all. Ignored otherwise.
	FallbackMean   float64
	FallbackStdDev float64

	Engine          OverlapEngine
	LengthThreshold int

	Merger CallMerger
}

// NewOrchestrator returns an Orchestrator with every sub-component defaulted:
// InsertStatsPrefix=DefaultInsertStatsPrefix, SigmaMultiplier=3,
// LengthThreshold=50, Merger=NewCallMerger().
func NewOrchestrator(provider bamprovider.Provider, engine OverlapEngine) Orchestrator {
	return Orchestrator{
		Provider:          provider,
		InsertStatsPrefix: DefaultInsertStatsPrefix,
		SigmaMultiplier:   3,
		Engine:            engine,
		LengthThreshold:   50,
		Merger:            NewCallMerger(),
	}
}

// Run computes InsertStats from a prefix of the file, then calls deletions on
// every reference in parallel, merges the results, and returns them sorted
// by (ReferenceName, LeftBp, RightBp). A single reference's failure aborts
// the whole run and Run returns no calls with that error. If ctx is
// cancelled while references are being called, Run returns the merged calls
// of the references that finished, together with a Cancelled-kind error.
func (o Orchestrator) Run(ctx context.Context) ([]Deletion, error) {
	if ctx.Err() != nil {
		return nil, E(Cancelled, ctx.Err())
	}

	header, err := o.Provider.GetHeader()
	if err != nil {
		return nil, E(OpenFailed, err)
	}

	stats, err := o.computeInsertStats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, E(Cancelled, ctx.Err())
		}
		return nil, err
	}

	refs := header.Refs()
	if len(refs) == 0 {
		return nil, nil
	}

	perRef := make([][]Deletion, len(refs))
	err = traverse.Each(len(refs), func(i int) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		dels, err := o.callReference(ctx, refs[i], stats)
		if err != nil {
			return err
		}
		perRef[i] = dels
		return nil
	})
	if err != nil {
		// On cancellation, every reference that finished before the signal
		// arrived still holds a valid, fully-merged-eligible result: flush it
		// alongside the error rather than discarding completed work, so the
		// CLI can still write a partial BEDPE/VCF before exiting 130.
		if ctx.Err() != nil {
			return o.mergeSorted(perRef), E(Cancelled, ctx.Err())
		}
		return nil, err
	}

	return o.mergeSorted(perRef), nil
}

// mergeSorted merges the per-reference deletion slices (some of which may be
// nil, when that reference's worker never ran or was cancelled mid-flight)
// through CallMerger and sorts the result by (ReferenceName, LeftBp, RightBp).
func (o Orchestrator) mergeSorted(perRef [][]Deletion) []Deletion {
	var all []Deletion
	for _, dels := range perRef {
		all = append(all, dels...)
	}
	merged := o.Merger.Merge(all)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ReferenceName != merged[j].ReferenceName {
			return merged[i].ReferenceName < merged[j].ReferenceName
		}
		if merged[i].LeftBp != merged[j].LeftBp {
			return merged[i].LeftBp < merged[j].LeftBp
		}
		return merged[i].RightBp < merged[j].RightBp
	})
	return merged
}

func (o Orchestrator) computeInsertStats(ctx context.Context) (InsertStats, error) {
	shards, err := o.Provider.GetFileShards()
	if err != nil {
		return InsertStats{}, E(OpenFailed, err)
	}
	if len(shards) == 0 {
		return InsertStats{}, nil
	}
	it := newCancelableIterator(ctx, o.Provider.NewIterator(shards[0]))
	stats, err := ComputeInsertStats(it, o.InsertStatsPrefix)
	if cerr := it.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil && stats.N == 0 && o.FallbackMean > 0 {
		stats.Mean, stats.StdDev = o.FallbackMean, o.FallbackStdDev
	}
	return stats, err
}

// callReference runs the clip/discordant/call stages for a single reference,
// each over its own Iterator covering [0, ref.Len()) on that reference only.
func (o Orchestrator) callReference(ctx context.Context, ref *sam.Reference, stats InsertStats) ([]Deletion, error) {
	shard := gbam.Shard{StartRef: ref, EndRef: ref, Start: 0, End: ref.Len()}

	clipIt := newCancelableIterator(ctx, o.Provider.NewIterator(shard))
	left, right, _, err := ExtractClips(clipIt, o.MinClip, o.Enhanced)
	if cerr := clipIt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	leftConsensuses := buildSortedConsensuses(left)
	rightConsensuses := buildSortedConsensuses(right)

	discordIt := newCancelableIterator(ctx, o.Provider.NewIterator(shard))
	scanner := NewDiscordantScanner(stats)
	if o.SigmaMultiplier > 0 {
		scanner.K = o.SigmaMultiplier
	}
	regions, err := scanner.Scan(discordIt, ref.ID())
	if cerr := discordIt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	caller := NewDeletionCaller(o.Engine)
	if o.LengthThreshold > 0 {
		caller.LengthThreshold = o.LengthThreshold
	}

	var out []Deletion
	for _, region := range regions {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if d, ok := caller.Call(region, ref.Name(), rightConsensuses, leftConsensuses); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func buildSortedConsensuses(clips []Clip) []Consensus {
	clusters := ClusterClips(clips)
	consensuses := make([]Consensus, len(clusters))
	for i, c := range clusters {
		consensuses[i] = BuildConsensus(c)
	}
	sort.Slice(consensuses, func(i, j int) bool {
		return consensuses[i].ClipPosition < consensuses[j].ClipPosition
	})
	return consensuses
}

// cancelableIterator wraps a bamprovider.Iterator so Scan stops, and Err
// reports ctx's error, as soon as ctx is canceled -- giving every stage that
// consumes an Iterator per-record cancellation for free.
type cancelableIterator struct {
	ctx context.Context
	bamprovider.Iterator
}

func newCancelableIterator(ctx context.Context, it bamprovider.Iterator) *cancelableIterator {
	return &cancelableIterator{ctx: ctx, Iterator: it}
}

func (c *cancelableIterator) Scan() bool {
	if c.ctx.Err() != nil {
		return false
	}
	return c.Iterator.Scan()
}

func (c *cancelableIterator) Err() error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return c.Iterator.Err()
}
