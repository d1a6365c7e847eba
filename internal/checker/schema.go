package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// SchemaChecker verifies ORM client calls against the schema DSL:
// accessor resolves to a model, the client method is real, fields exist
// on the model, and include-block fields are actual relations.
type SchemaChecker struct{ base }

func NewSchemaChecker() *SchemaChecker {
	return &SchemaChecker{base{id: "schema", name: "Schema models"}}
}

func (c *SchemaChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	schema, err := index.LoadPrismaSchema(tree, opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return newResult(c, false).done(), nil
	}

	b := newResult(c, true)
	for _, raw := range extract.ORMReferences(plan) {
		switch raw.Category {
		case model.CategorySchemaModel:
			if _, ok := schema.ModelForAccessor(raw.Name); ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_model", suggest.Format(raw.Name, schema.Accessors())))
			}
		case model.CategorySchemaMethod:
			if extract.ORMMethods()[raw.Method] {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_method", suggest.Format(raw.Method, extract.ORMMethodNames())))
			}
		case model.CategorySchemaField:
			b.add(c.checkField(schema, raw))
		}
	}
	res := b.done()
	res.RawAnalysis = schemaContext(schema)
	return res, nil
}

func (c *SchemaChecker) checkField(schema *index.PrismaSchema, raw model.RawReference) model.Reference {
	modelName, ok := schema.ModelForAccessor(raw.Name)
	if !ok {
		// The accessor itself is flagged by the model reference; an
		// unresolvable field is not separately actionable.
		return valid(raw)
	}
	m := schema.Models[modelName]
	f, ok := m.Fields[raw.Member]
	if !ok {
		return invalid(raw, "unknown_field", suggest.Format(raw.Member, schema.FieldNames(modelName)))
	}
	if raw.Method == "include" && !f.IsRelation {
		return invalid(raw, "not_a_relation", suggest.Format(raw.Member, relationFieldNames(m)))
	}
	return valid(raw)
}

func relationFieldNames(m *index.PrismaModel) []string {
	var names []string
	for _, name := range m.FieldOrder {
		if m.Fields[name].IsRelation {
			names = append(names, name)
		}
	}
	return names
}

// schemaContext renders the ground truth for the tool surface: the full
// model and field list so a reviewer can self-correct without another
// lookup.
func schemaContext(schema *index.PrismaSchema) string {
	var b strings.Builder
	b.WriteString("Defined models:\n")
	for _, name := range schema.ModelOrder {
		fmt.Fprintf(&b, "- %s (accessor %q): %s\n",
			name, index.Accessor(name), strings.Join(schema.FieldNames(name), ", "))
	}
	if len(schema.EnumOrder) > 0 {
		fmt.Fprintf(&b, "Enums: %s\n", strings.Join(schema.EnumOrder, ", "))
	}
	return b.String()
}
