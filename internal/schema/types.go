// Package schema defines the column layouts an input file may implement and
// the caller roles each layout applies to.
package schema

import "strings"

// IDFieldPrefix marks identifier columns. A file may carry several of them
// (id_email, id_phone, ...); their issues are reported under this name.
const IDFieldPrefix = "id_"

// CohortIDField is the optional trailing column grouping rows into cohorts.
const CohortIDField = "cohort_id"

// FieldKind selects the validation policy applied to a column.
type FieldKind int

const (
	FieldUnchecked FieldKind = iota
	FieldIdentifier
	FieldTimestamp
	FieldOptionalNumeric
	FieldCohort
)

// String returns a lower-case name for the kind, used in logs.
func (k FieldKind) String() string {
	switch k {
	case FieldIdentifier:
		return "identifier"
	case FieldTimestamp:
		return "timestamp"
	case FieldOptionalNumeric:
		return "optional_numeric"
	case FieldCohort:
		return "cohort"
	default:
		return "unchecked"
	}
}

// FieldSpec describes one fixed, non-identifier column of a schema.
type FieldSpec struct {
	Name string    // Column header name (must match exactly)
	Kind FieldKind // Validation policy
}

// Role is the side of the computation submitting the file.
type Role int

const (
	RolePartner Role = iota
	RolePublisher
)

// String returns the upper-case role name used in header messages.
func (r Role) String() string {
	if r == RolePublisher {
		return "PUBLISHER"
	}
	return "PARTNER"
}

// ParseRole converts "partner" or "publisher" (any case) to a Role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PARTNER":
		return RolePartner, true
	case "PUBLISHER":
		return RolePublisher, true
	default:
		return RolePartner, false
	}
}

// Schema is a named layout: a fixed set of columns next to the identifier
// group, optionally followed by a cohort column.
//
// Fields must all be present for a header to match. Optional columns take
// no part in matching but are validated when a file carries them.
type Schema struct {
	Name         string
	Fields       []FieldSpec
	Optional     []FieldSpec
	AllowsCohort bool
	Roles        []Role
}

// FieldNames returns the fixed column names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Kind returns the policy for the named fixed or optional column, if the
// schema has it.
func (s Schema) Kind(name string) (FieldKind, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	for _, f := range s.Optional {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return FieldUnchecked, false
}

// AppliesTo reports whether the schema is accepted from the given role.
func (s Schema) AppliesTo(role Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether a header column belongs to the identifier group.
func IsIdentifier(column string) bool {
	return strings.HasPrefix(column, IDFieldPrefix)
}
