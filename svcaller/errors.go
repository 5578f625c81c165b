package svcaller

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Kind categorizes the errors a deletion-calling run can produce.
type Kind int

const (
	// OpenFailed indicates the BAM or FASTA file could not be opened.
	OpenFailed Kind = iota
	// IndexMissing indicates the .bai or .fai companion index is absent.
	IndexMissing
	// MalformedRecord indicates a CIGAR/sequence inconsistency in one record.
	// Callers tally these and continue; it is never returned as a fatal error.
	MalformedRecord
	// NoDeletionFound indicates an overlap search produced nothing for a
	// TargetRegion. Not an error condition; recorded here only so a caller can
	// distinguish "we looked and found nothing" from other Kinds if needed.
	NoDeletionFound
	// EmptyTargetRegions indicates a reference had no discordant-pair evidence.
	EmptyTargetRegions
	// Cancelled indicates the run was stopped via its context.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case OpenFailed:
		return "OpenFailed"
	case IndexMissing:
		return "IndexMissing"
	case MalformedRecord:
		return "MalformedRecord"
	case NoDeletionFound:
		return "NoDeletionFound"
	case EmptyTargetRegions:
		return "EmptyTargetRegions"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// taggedError pairs a Kind with the underlying errors.E chain, the same
// shape as grailbio/base/errors' own *errors.Error pairing a Kind with an
// error, which callers of that package recover with
// `if e, ok := err.(*errors.Error); ok && e.Kind == errors.NotExist`.
// Kind here is this package's own domain Kind rather than errors.Kind,
// since errors.Kind's generic categories (NotExist, Invalid, ...) don't
// distinguish OpenFailed from IndexMissing from MalformedRecord.
type taggedError struct {
	kind Kind
	err  error
}

func (e *taggedError) Error() string { return fmt.Sprintf("%s: %v", e.kind, e.err) }
func (e *taggedError) Unwrap() error { return e.err }

// E builds a Kind-tagged error wrapping an errors.E(err, "message", detail)
// chain, following grailbio/base/errors' own chaining idiom.
func E(kind Kind, args ...interface{}) error {
	return &taggedError{kind: kind, err: errors.E(args...)}
}

// Errorf is a convenience wrapper around E for formatted messages.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return E(kind, fmt.Sprintf(format, args...))
}

// KindOf recovers the Kind tagged onto err by E via a type assertion on
// *taggedError, mirroring the teacher's own err.(*errors.Error) idiom. It
// returns (OpenFailed, false) if err is nil or wasn't built by E, since
// OpenFailed is always treated as fatal by callers that ignore the ok
// result.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*taggedError); ok {
		return e.kind, true
	}
	return OpenFailed, false
}
