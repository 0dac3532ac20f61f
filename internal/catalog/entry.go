// Package catalog materializes typed content entries from the generic
// records in an rdb store.
package catalog

// TriState records a hardware-support fact that may be unknown. It is
// distinct from a boolean: absence of evidence is its own state.
type TriState int8

// TriState values.
const (
	Unknown     TriState = -1
	Unsupported TriState = 0
	Supported   TriState = 1
)

// String returns a human-readable state name.
func (t TriState) String() string {
	switch t {
	case Unsupported:
		return "unsupported"
	case Supported:
		return "supported"
	default:
		return "unknown"
	}
}

// Entry is one materialized catalog record. Optional string fields default
// to empty, numeric fields to zero, tri-states to Unknown.
type Entry struct {
	Title       string
	Description string
	Publisher   string
	Developer   string
	Origin      string
	Franchise   string

	// Content ratings, one field per rating authority.
	BBFCRating  string
	ELSPARating string
	ESRBRating  string
	PEGIRating  string
	CERORating  string

	EnhancementHW string
	EdgeReview    string

	EdgeRating    uint64
	EdgeIssue     uint64
	FamitsuRating uint64
	MaxUsers      uint64
	ReleaseMonth  uint64
	ReleaseYear   uint64

	AnalogSupported TriState
	RumbleSupported TriState

	// Checksums in upper-case hexadecimal text.
	CRC32 string
	SHA1  string
	MD5   string
}

// NewEntry returns an Entry with every optional field at its default.
func NewEntry() Entry {
	return Entry{
		AnalogSupported: Unknown,
		RumbleSupported: Unknown,
	}
}

// List is a materialized catalog: a growable sequence of entries. The
// Entries slice of a successful build is never nil, so a zero-match query
// yields an empty catalog rather than an absent one.
type List struct {
	Entries []Entry
}

// Count returns the number of materialized entries. Safe on a nil list.
func (l *List) Count() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}
