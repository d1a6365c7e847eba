package model

// Category classifies the domain of a reference found in a plan
type Category string

const (
	CategoryFile          Category = "file"            // Project file path
	CategorySchemaModel   Category = "schema_model"    // ORM model addressed through a client accessor
	CategorySchemaField   Category = "schema_field"    // Field inside a query-options block
	CategorySchemaMethod  Category = "schema_method"   // ORM client method
	CategoryTable         Category = "table"           // SQL / table-builder table
	CategoryColumn        Category = "column"          // Column on a table
	CategoryDBFunction    Category = "db_function"     // Database function (rpc)
	CategoryDBEnum        Category = "db_enum"         // Database enum
	CategoryPackage       Category = "package"         // Imported package specifier
	CategoryPackageMember Category = "package_member"  // Export used from a package
	CategoryType          Category = "type"            // Project-declared type
	CategoryTypeMember    Category = "type_member"     // Member on a project-declared type
	CategoryRoute         Category = "route"           // URL route path
	CategoryRouteMethod   Category = "route_method"    // HTTP method on a route
	CategoryEnvVar        Category = "env_var"         // Environment variable access
)

// RawReference is a candidate reference recovered from plan text by
// extraction alone. It carries no validity judgment.
type RawReference struct {
	Raw      string   `json:"raw"`                // The matched plan text
	Category Category `json:"category"`           // Reference domain
	Name     string   `json:"name"`               // Primary name (path, accessor, table, package, type, URL, variable)
	Member   string   `json:"member,omitempty"`   // Secondary name (field, column, export, type member)
	Method   string   `json:"method,omitempty"`   // HTTP method or client method, when meaningful
	Offset   int      `json:"offset"`             // Byte offset of the match in the plan
	Line     int      `json:"line,omitempty"`     // 1-based line of the match

	// CreationHint is set during extraction when the surrounding plan text
	// signals the entity is intended to be created (imperative verb on the
	// line, a new/create annotation, or a "new files" heading). Validation
	// never re-scans the plan, so the hint must be captured here.
	CreationHint bool `json:"creation_hint,omitempty"`
}

// Reference is a RawReference after resolution against a source index.
// Validity is a pure function of (RawReference, index); validation never
// re-reads the plan text.
type Reference struct {
	RawReference

	Valid       bool   `json:"valid"`
	Subcategory string `json:"subcategory,omitempty"` // Hallucination subcategory, e.g. "unknown_column"
	Suggestion  string `json:"suggestion,omitempty"`  // Best-effort correction

	// IntentionalNew marks a missing entity the plan legitimately intends
	// to create. Not a hallucination.
	IntentionalNew bool `json:"intentional_new,omitempty"`
}

// Target returns the dotted display form of the referenced entity.
func (r RawReference) Target() string {
	switch {
	case r.Member != "":
		return r.Name + "." + r.Member
	case r.Method != "" && r.Category == CategoryRouteMethod:
		return r.Method + " " + r.Name
	default:
		return r.Name
	}
}

// DedupeKey implements the uniqueness invariant: within one checker's
// results, (raw text, category, validity, subcategory) appears once.
func (r Reference) DedupeKey() string {
	valid := "0"
	if r.Valid {
		valid = "1"
	}
	return r.Raw + "\x00" + string(r.Category) + "\x00" + valid + "\x00" + r.Subcategory
}
