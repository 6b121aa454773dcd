package core

import (
	"testing"

	"github.com/JonMunkholm/prevalidate/internal/schema"
)

func TestCheckCell(t *testing.T) {
	bounded := TimestampRange{Start: 1640000000, End: 1650000000, Enabled: true}

	tests := []struct {
		name  string
		kind  schema.FieldKind
		value string
		rng   TimestampRange
		want  CellStatus
	}{
		{"identifier ok", schema.FieldIdentifier, "abcd/1234+WXYZ=", TimestampRange{}, CellOK},
		{"identifier double padding", schema.FieldIdentifier, "YWJj==", TimestampRange{}, CellOK},
		{"identifier empty", schema.FieldIdentifier, "", TimestampRange{}, CellEmpty},
		{"identifier dots", schema.FieldIdentifier, "ab...", TimestampRange{}, CellBadFormat},
		{"identifier underscore", schema.FieldIdentifier, "_", TimestampRange{}, CellBadFormat},
		{"identifier spaces", schema.FieldIdentifier, " ! ", TimestampRange{}, CellBadFormat},
		{"identifier triple padding", schema.FieldIdentifier, "abc===", TimestampRange{}, CellBadFormat},

		{"timestamp ok", schema.FieldTimestamp, "1645157987", TimestampRange{}, CellOK},
		{"timestamp empty", schema.FieldTimestamp, "", bounded, CellEmpty},
		{"timestamp letters", schema.FieldTimestamp, "ts2", bounded, CellBadFormat},
		{"timestamp negative", schema.FieldTimestamp, "-1", TimestampRange{}, CellBadFormat},
		{"timestamp lower bound", schema.FieldTimestamp, "1640000000", bounded, CellOK},
		{"timestamp upper bound", schema.FieldTimestamp, "1650000000", bounded, CellOK},
		{"timestamp below", schema.FieldTimestamp, "1639999999", bounded, CellOutOfRange},
		{"timestamp above", schema.FieldTimestamp, "9999999999", bounded, CellOutOfRange},
		{"timestamp overflow", schema.FieldTimestamp, "99999999999999999999", bounded, CellOutOfRange},
		{"timestamp unbounded", schema.FieldTimestamp, "9999999999", TimestampRange{}, CellOK},

		{"numeric ok", schema.FieldOptionalNumeric, "100", TimestampRange{}, CellOK},
		{"numeric negative", schema.FieldOptionalNumeric, "-25", TimestampRange{}, CellOK},
		{"numeric currency", schema.FieldOptionalNumeric, "$20", TimestampRange{}, CellBadFormat},
		{"numeric decimal", schema.FieldOptionalNumeric, "1.5", TimestampRange{}, CellBadFormat},
		{"numeric empty", schema.FieldOptionalNumeric, "", TimestampRange{}, CellEmpty},

		{"unchecked anything", schema.FieldUnchecked, "$$$", TimestampRange{}, CellOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckCell(tt.kind, tt.value, tt.rng); got != tt.want {
				t.Errorf("CheckCell(%v, %q) = %v, want %v", tt.kind, tt.value, got, tt.want)
			}
		})
	}
}

func TestFieldValidator_MergesIdentifiers(t *testing.T) {
	layout, err := ClassifyHeader([]string{"id_email", "id_phone", "value", "event_timestamp"}, schema.RolePartner)
	if err != nil {
		t.Fatalf("ClassifyHeader: %v", err)
	}

	acc := NewIssueAccumulator()
	v := FieldValidator{}
	v.ValidateRow(layout, []string{"", "", "1", "1645157987"}, acc)
	if acc.IdentifierSeen() {
		t.Error("identifier seen after an all-empty row")
	}

	v.ValidateRow(layout, []string{"bad!", "", "1", "1645157987"}, acc)
	if !acc.IdentifierSeen() {
		t.Error("a non-empty identifier cell should mark identifiers as seen")
	}

	got := acc.Counts(schema.IDFieldPrefix)
	want := IssueCounts{Empty: 3, BadFormat: 1}
	if got != want {
		t.Errorf("id_ counts = %+v, want %+v", got, want)
	}
	if fields := acc.Fields(); len(fields) != 1 || fields[0] != schema.IDFieldPrefix {
		t.Errorf("fields with issues = %v, want [id_]", fields)
	}
}
