package core

import (
	"sort"

	"github.com/JonMunkholm/prevalidate/internal/schema"
)

// DefaultOutOfRangeErrorRatio is the share of out-of-range timestamps above
// which the field is reported as an error instead of a warning.
const DefaultOutOfRangeErrorRatio = 0.10

// IssueCounts tallies problem cells for one field. Counts only grow.
type IssueCounts struct {
	Empty      int64
	BadFormat  int64
	OutOfRange int64
}

func (c IssueCounts) zero() bool {
	return c.Empty == 0 && c.BadFormat == 0 && c.OutOfRange == 0
}

// FieldIssues is the report form of IssueCounts. Zero counts are omitted.
type FieldIssues struct {
	EmptyCount      int64 `json:"empty_count,omitempty" yaml:"empty_count,omitempty"`
	BadFormatCount  int64 `json:"bad_format_count,omitempty" yaml:"bad_format_count,omitempty"`
	OutOfRangeCount int64 `json:"out_of_range_count,omitempty" yaml:"out_of_range_count,omitempty"`
}

func (f FieldIssues) empty() bool {
	return f == FieldIssues{}
}

// IssueAccumulator collects per-field counts for one validation run.
type IssueAccumulator struct {
	counts         map[string]*IssueCounts
	kinds          map[string]schema.FieldKind
	identifierSeen bool
}

// NewIssueAccumulator returns an empty accumulator.
func NewIssueAccumulator() *IssueAccumulator {
	return &IssueAccumulator{
		counts: make(map[string]*IssueCounts),
		kinds:  make(map[string]schema.FieldKind),
	}
}

// Record counts one checked cell of field.
func (a *IssueAccumulator) Record(field string, kind schema.FieldKind, status CellStatus) {
	if status == CellOK {
		return
	}

	c, ok := a.counts[field]
	if !ok {
		c = &IssueCounts{}
		a.counts[field] = c
		a.kinds[field] = kind
	}

	switch status {
	case CellEmpty:
		c.Empty++
	case CellBadFormat:
		c.BadFormat++
	case CellOutOfRange:
		c.OutOfRange++
	}
}

// MarkIdentifierSeen notes that some row carried a non-empty identifier.
func (a *IssueAccumulator) MarkIdentifierSeen() {
	a.identifierSeen = true
}

// IdentifierSeen reports whether any identifier cell was non-empty.
func (a *IssueAccumulator) IdentifierSeen() bool {
	return a.identifierSeen
}

// Counts returns the tally for field.
func (a *IssueAccumulator) Counts(field string) IssueCounts {
	if c, ok := a.counts[field]; ok {
		return *c
	}
	return IssueCounts{}
}

// Fields returns the fields with at least one issue, sorted.
func (a *IssueAccumulator) Fields() []string {
	fields := make([]string, 0, len(a.counts))
	for f, c := range a.counts {
		if !c.zero() {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	return fields
}

// Classify splits the counts into errors and warnings. Severity is decided
// per counter, so one field can appear in both maps.
//
//   - identifier: bad format is an error; empty is an error only when no row
//     had an identifier at all
//   - timestamp: empty and bad format are errors; out of range is an error
//     when its share of rows exceeds ratio
//   - optional numeric: always warnings
func (a *IssueAccumulator) Classify(rows int64, ratio float64) (errs, warns map[string]FieldIssues) {
	errs = make(map[string]FieldIssues)
	warns = make(map[string]FieldIssues)

	for _, field := range a.Fields() {
		c := a.counts[field]
		var e, w FieldIssues

		switch a.kinds[field] {
		case schema.FieldIdentifier:
			e.BadFormatCount = c.BadFormat
			if a.identifierSeen {
				w.EmptyCount = c.Empty
			} else {
				e.EmptyCount = c.Empty
			}

		case schema.FieldTimestamp:
			e.EmptyCount = c.Empty
			e.BadFormatCount = c.BadFormat
			if rows > 0 && float64(c.OutOfRange)/float64(rows) > ratio {
				e.OutOfRangeCount = c.OutOfRange
			} else {
				w.OutOfRangeCount = c.OutOfRange
			}

		default:
			w.EmptyCount = c.Empty
			w.BadFormatCount = c.BadFormat
			w.OutOfRangeCount = c.OutOfRange
		}

		if !e.empty() {
			errs[field] = e
		}
		if !w.empty() {
			warns[field] = w
		}
	}
	return errs, warns
}
