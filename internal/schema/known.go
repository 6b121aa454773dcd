package schema

// PLFieldSpecs defines the partner columns of a private lift file.
var PLFieldSpecs = []FieldSpec{
	{Name: "value", Kind: FieldOptionalNumeric},
	{Name: "event_timestamp", Kind: FieldTimestamp},
}

// PAFieldSpecs defines the partner columns of a private attribution file.
var PAFieldSpecs = []FieldSpec{
	{Name: "conversion_value", Kind: FieldOptionalNumeric},
	{Name: "conversion_timestamp", Kind: FieldTimestamp},
	{Name: "conversion_metadata", Kind: FieldOptionalNumeric},
}

// PrivateIDDFCAFieldSpecs defines the columns of a Private ID DFCA file.
var PrivateIDDFCAFieldSpecs = []FieldSpec{
	{Name: "partner_user_id", Kind: FieldUnchecked},
}

// PLPublisherFieldSpecs defines the publisher columns of a private lift file.
var PLPublisherFieldSpecs = []FieldSpec{
	{Name: "opportunity_timestamp", Kind: FieldTimestamp},
}

// PLPublisherOptionalSpecs are publisher lift columns validated when present.
var PLPublisherOptionalSpecs = []FieldSpec{
	{Name: "test_flag", Kind: FieldOptionalNumeric},
}

// PAPublisherFieldSpecs defines the publisher columns of a private attribution file.
var PAPublisherFieldSpecs = []FieldSpec{
	{Name: "ad_id", Kind: FieldOptionalNumeric},
	{Name: "timestamp", Kind: FieldTimestamp},
	{Name: "is_click", Kind: FieldOptionalNumeric},
}

var (
	PL = Schema{
		Name:         "PL",
		Fields:       PLFieldSpecs,
		AllowsCohort: true,
		Roles:        []Role{RolePartner},
	}
	PA = Schema{
		Name:         "PA",
		Fields:       PAFieldSpecs,
		AllowsCohort: true,
		Roles:        []Role{RolePartner},
	}
	PrivateIDDFCA = Schema{
		Name:   "PRIVATE_ID_DFCA",
		Fields: PrivateIDDFCAFieldSpecs,
		Roles:  []Role{RolePartner, RolePublisher},
	}
	PLPublisher = Schema{
		Name:     "PL_PUBLISHER",
		Fields:   PLPublisherFieldSpecs,
		Optional: PLPublisherOptionalSpecs,
		Roles:    []Role{RolePublisher},
	}
	PAPublisher = Schema{
		Name:   "PA_PUBLISHER",
		Fields: PAPublisherFieldSpecs,
		Roles:  []Role{RolePublisher},
	}
)

// partnerOrder and publisherOrder fix the order schemas are listed in
// header failure messages.
var (
	partnerOrder   = []Schema{PL, PA, PrivateIDDFCA}
	publisherOrder = []Schema{PrivateIDDFCA, PLPublisher, PAPublisher}
)

// ForRole returns the schemas a file from the given role may implement.
func ForRole(role Role) []Schema {
	order := partnerOrder
	if role == RolePublisher {
		order = publisherOrder
	}
	out := make([]Schema, 0, len(order))
	for _, s := range order {
		if s.AppliesTo(role) {
			out = append(out, s)
		}
	}
	return out
}
