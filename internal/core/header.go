package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/prevalidate/internal/schema"
)

// Layout is the classified header: the matched schema plus the validation
// policy for every column position.
type Layout struct {
	Schema      schema.Schema
	Columns     []string
	Kinds       []schema.FieldKind
	CohortIndex int // -1 when the file has no cohort column
}

// Width is the number of cells every data row must have.
func (l *Layout) Width() int {
	return len(l.Columns)
}

// ClassifyHeader matches header columns against the schemas accepted from
// role. A schema matches when all of its fixed columns are present once the
// identifier group and a trailing cohort column are set aside.
func ClassifyHeader(columns []string, role schema.Role) (*Layout, error) {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "") {
		return nil, structural(MsgHeaderEmpty)
	}

	hasIdentifier := false
	for _, c := range columns {
		if schema.IsIdentifier(c) {
			hasIdentifier = true
			break
		}
	}
	if !hasIdentifier {
		return nil, structural(fmt.Sprintf(
			"Failed to parse the header row. The header row fields must have columns with prefix %s",
			schema.IDFieldPrefix))
	}

	trailingCohort := columns[len(columns)-1] == schema.CohortIDField
	present := make(map[string]bool, len(columns))
	for i, c := range columns {
		if schema.IsIdentifier(c) || (trailingCohort && i == len(columns)-1) {
			continue
		}
		present[c] = true
	}

	candidates := schema.ForRole(role)
	var matched []schema.Schema
	for _, s := range candidates {
		if hasAllFields(s, present) {
			matched = append(matched, s)
		}
	}

	switch len(matched) {
	case 1:
		return buildLayout(matched[0], columns, trailingCohort), nil
	case 0:
		return nil, structural(fmt.Sprintf(
			"Failed to parse the %s header row. The header row fields must have either: %s",
			role, describeSchemas(candidates)))
	default:
		return nil, structural(fmt.Sprintf(
			"The %s header row fields must contain just one of the following: %s",
			role, describeSchemas(candidates)))
	}
}

func hasAllFields(s schema.Schema, present map[string]bool) bool {
	for _, f := range s.Fields {
		if !present[f.Name] {
			return false
		}
	}
	return true
}

func buildLayout(s schema.Schema, columns []string, trailingCohort bool) *Layout {
	layout := &Layout{
		Schema:      s,
		Columns:     columns,
		Kinds:       make([]schema.FieldKind, len(columns)),
		CohortIndex: -1,
	}

	for i, c := range columns {
		switch {
		case schema.IsIdentifier(c):
			layout.Kinds[i] = schema.FieldIdentifier
		case trailingCohort && i == len(columns)-1 && s.AllowsCohort:
			layout.Kinds[i] = schema.FieldCohort
			layout.CohortIndex = i
		default:
			kind, _ := s.Kind(c)
			layout.Kinds[i] = kind
		}
	}
	return layout
}

// describeSchemas renders "[a, b] or: [c] or: [d]" in role order.
func describeSchemas(schemas []schema.Schema) string {
	parts := make([]string, len(schemas))
	for i, s := range schemas {
		parts[i] = "[" + strings.Join(s.FieldNames(), ", ") + "]"
	}
	return strings.Join(parts, " or: ")
}
