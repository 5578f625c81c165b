// Package bamprovider provides utilities for scanning an indexed BAM file in
// parallel, one genomic shard at a time.
package bamprovider
