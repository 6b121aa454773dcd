package core

// fields.go holds the per-cell checks applied to every data row.
//
// Formats:
//   - identifier: base64-like token, ^[A-Za-z0-9+/]+={0,2}$
//   - timestamp: unsigned integer seconds, optionally bounded by a range
//   - optional numeric: signed integer
//
// Cells are checked as they appear in the file. Surrounding whitespace is
// a format error, not something to trim.

import (
	"regexp"
	"strconv"

	"github.com/JonMunkholm/prevalidate/internal/schema"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	timestampPattern  = regexp.MustCompile(`^[0-9]+$`)
	numericPattern    = regexp.MustCompile(`^-?[0-9]+$`)
)

// CellStatus is the outcome of checking one cell.
type CellStatus int

const (
	CellOK CellStatus = iota
	CellEmpty
	CellBadFormat
	CellOutOfRange
)

func (s CellStatus) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellBadFormat:
		return "bad_format"
	case CellOutOfRange:
		return "out_of_range"
	default:
		return "ok"
	}
}

// TimestampRange bounds timestamp cells, inclusive on both ends. It only
// applies when Enabled is set.
type TimestampRange struct {
	Start   int64
	End     int64
	Enabled bool
}

// Contains reports whether ts falls within the range.
func (r TimestampRange) Contains(ts int64) bool {
	return !r.Enabled || (ts >= r.Start && ts <= r.End)
}

// Timestamp configuration warnings.
const (
	WarnStartTimestamp = "- Warning: the start timestamp is not valid"
	WarnEndTimestamp   = "- Warning: the end timestamp is not valid"
	WarnTimestampRange = "- Warning: the timestamp range is not valid"
)

// ParseTimestampRange parses the optional start and end bounds. Empty
// strings mean no bound. A bound that does not parse, or a start after the
// end, yields a warning and leaves range checking disabled.
func ParseTimestampRange(start, end string) (TimestampRange, []string) {
	var (
		warnings       []string
		rng            TimestampRange
		startOK, endOK bool
	)

	if start != "" {
		v, err := strconv.ParseInt(start, 10, 64)
		if err != nil {
			warnings = append(warnings, WarnStartTimestamp)
		} else {
			rng.Start, startOK = v, true
		}
	}
	if end != "" {
		v, err := strconv.ParseInt(end, 10, 64)
		if err != nil {
			warnings = append(warnings, WarnEndTimestamp)
		} else {
			rng.End, endOK = v, true
		}
	}

	if startOK && endOK {
		if rng.Start > rng.End {
			return TimestampRange{}, append(warnings, WarnTimestampRange)
		}
		rng.Enabled = true
	}
	return rng, warnings
}

// CheckCell applies the policy for kind to value.
func CheckCell(kind schema.FieldKind, value string, rng TimestampRange) CellStatus {
	switch kind {
	case schema.FieldIdentifier:
		return checkPattern(identifierPattern, value)

	case schema.FieldTimestamp:
		status := checkPattern(timestampPattern, value)
		if status != CellOK || !rng.Enabled {
			return status
		}
		ts, err := strconv.ParseInt(value, 10, 64)
		if err != nil || !rng.Contains(ts) {
			return CellOutOfRange
		}
		return CellOK

	case schema.FieldOptionalNumeric:
		return checkPattern(numericPattern, value)

	default:
		return CellOK
	}
}

func checkPattern(p *regexp.Regexp, value string) CellStatus {
	if value == "" {
		return CellEmpty
	}
	if !p.MatchString(value) {
		return CellBadFormat
	}
	return CellOK
}

// FieldValidator checks the cells of a data row and records the outcome.
type FieldValidator struct {
	Range TimestampRange
}

// ValidateRow checks every validated column of cells against layout.
// Identifier columns are merged under the identifier prefix.
func (v FieldValidator) ValidateRow(layout *Layout, cells []string, acc *IssueAccumulator) {
	for i, kind := range layout.Kinds {
		switch kind {
		case schema.FieldUnchecked, schema.FieldCohort:
			continue
		case schema.FieldIdentifier:
			if cells[i] != "" {
				acc.MarkIdentifierSeen()
			}
			acc.Record(schema.IDFieldPrefix, kind, CheckCell(kind, cells[i], v.Range))
		default:
			acc.Record(layout.Columns[i], kind, CheckCell(kind, cells[i], v.Range))
		}
	}
}
