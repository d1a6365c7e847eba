package index

import (
	"strings"

	"github.com/ppiankov/groundcheck/internal/scan"
)

// PrismaField is one field of a schema model.
type PrismaField struct {
	Name       string
	Type       string // base type, list/optional markers stripped
	IsList     bool
	IsOptional bool
	IsRelation bool // type names another model
}

// PrismaModel is one model block of the schema DSL.
type PrismaModel struct {
	Name       string
	Fields     map[string]*PrismaField
	FieldOrder []string
}

// PrismaSchema is the parsed schema: models, enums, and the bidirectional
// accessor mapping used to address models through a client object.
type PrismaSchema struct {
	Models     map[string]*PrismaModel
	ModelOrder []string
	Enums      map[string][]string
	EnumOrder  []string

	accessorToModel map[string]string
	modelToAccessor map[string]string
}

// schemaCandidates are probed in order when no override is given.
var schemaCandidates = []string{
	"prisma/schema.prisma",
	"schema.prisma",
	"db/schema.prisma",
}

// LoadPrismaSchema locates and parses the schema DSL file. A missing
// schema returns (nil, nil): the domain is simply absent.
func LoadPrismaSchema(tree *FileTree, override string) (*PrismaSchema, error) {
	candidates := schemaCandidates
	if override != "" {
		candidates = []string{override}
	}
	for _, rel := range candidates {
		if tree.Contains(rel) {
			src, err := tree.ReadFile(rel)
			if err != nil {
				continue // unreadable artifact: skip, not fail
			}
			return ParsePrismaSchema(src), nil
		}
	}
	if override == "" {
		for _, rel := range tree.WithSuffix(".prisma") {
			src, err := tree.ReadFile(rel)
			if err != nil {
				continue
			}
			return ParsePrismaSchema(src), nil
		}
	}
	return nil, nil
}

// ParsePrismaSchema extracts model and enum blocks. Relation detection is
// two-pass so it does not depend on declaration order: the first pass
// marks a field relational when its type names a model already seen, the
// second re-resolves every field against the full model set.
func ParsePrismaSchema(src string) *PrismaSchema {
	schema := &PrismaSchema{
		Models:          make(map[string]*PrismaModel),
		Enums:           make(map[string][]string),
		accessorToModel: make(map[string]string),
		modelToAccessor: make(map[string]string),
	}

	src = stripDSLComments(src)

	// First pass: collect blocks, resolving relations against models seen
	// so far.
	pos := 0
	for pos < len(src) {
		kind, name, bodyStart, ok := nextBlock(src, pos)
		if !ok {
			break
		}
		body, bodyOK := scan.Body(src, bodyStart)
		if !bodyOK {
			break
		}
		pos = bodyStart + len(body) + 2

		switch kind {
		case "model":
			m := parseModelBody(name, body, schema.Models)
			if _, dup := schema.Models[name]; !dup {
				schema.ModelOrder = append(schema.ModelOrder, name)
			}
			schema.Models[name] = m
		case "enum":
			if _, dup := schema.Enums[name]; !dup {
				schema.EnumOrder = append(schema.EnumOrder, name)
			}
			schema.Enums[name] = parseEnumBody(body)
		}
	}

	// Second pass: a field whose type names a model declared later in the
	// file is re-resolved as relational.
	for _, m := range schema.Models {
		for _, f := range m.Fields {
			if _, isModel := schema.Models[f.Type]; isModel {
				f.IsRelation = true
			}
		}
	}

	for _, name := range schema.ModelOrder {
		accessor := Accessor(name)
		schema.accessorToModel[accessor] = name
		schema.modelToAccessor[name] = accessor
	}
	return schema
}

// Accessor derives the camelCase client handle for a model name.
func Accessor(model string) string {
	if model == "" {
		return ""
	}
	return strings.ToLower(model[:1]) + model[1:]
}

// ModelForAccessor resolves a client accessor back to its model.
func (s *PrismaSchema) ModelForAccessor(accessor string) (string, bool) {
	m, ok := s.accessorToModel[accessor]
	return m, ok
}

// AccessorForModel resolves a model to its client accessor.
func (s *PrismaSchema) AccessorForModel(model string) (string, bool) {
	a, ok := s.modelToAccessor[model]
	return a, ok
}

// Accessors returns all client accessors in declaration order.
func (s *PrismaSchema) Accessors() []string {
	out := make([]string, 0, len(s.ModelOrder))
	for _, m := range s.ModelOrder {
		out = append(out, s.modelToAccessor[m])
	}
	return out
}

// FieldNames returns a model's fields in declaration order.
func (s *PrismaSchema) FieldNames(model string) []string {
	m, ok := s.Models[model]
	if !ok {
		return nil
	}
	return m.FieldOrder
}

// nextBlock finds the next "model Name {" or "enum Name {" header at or
// after pos, returning the offset of the opening brace.
func nextBlock(src string, pos int) (kind, name string, bodyStart int, ok bool) {
	for pos < len(src) {
		lineEnd := strings.IndexByte(src[pos:], '\n')
		var line string
		if lineEnd < 0 {
			line = src[pos:]
			lineEnd = len(src) - pos
		} else {
			line = src[pos : pos+lineEnd]
		}
		fields := strings.Fields(line)
		if len(fields) >= 3 && (fields[0] == "model" || fields[0] == "enum") && fields[2] == "{" {
			brace := pos + strings.IndexByte(line, '{')
			return fields[0], fields[1], brace, true
		}
		pos += lineEnd + 1
	}
	return "", "", 0, false
}

func parseModelBody(name, body string, seen map[string]*PrismaModel) *PrismaModel {
	m := &PrismaModel{Name: name, Fields: make(map[string]*PrismaField)}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@@") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		fieldName := fields[0]
		rawType := fields[1]
		if !identLike(fieldName) {
			continue
		}

		f := &PrismaField{Name: fieldName, Type: rawType}
		if strings.HasSuffix(f.Type, "?") {
			f.IsOptional = true
			f.Type = strings.TrimSuffix(f.Type, "?")
		}
		if strings.HasSuffix(f.Type, "[]") {
			f.IsList = true
			f.Type = strings.TrimSuffix(f.Type, "[]")
		}
		if _, isModel := seen[f.Type]; isModel {
			f.IsRelation = true
		}
		if _, dup := m.Fields[fieldName]; !dup {
			m.FieldOrder = append(m.FieldOrder, fieldName)
		}
		m.Fields[fieldName] = f
	}
	return m
}

func parseEnumBody(body string) []string {
	var values []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@@") {
			continue
		}
		value := strings.Fields(line)[0]
		if identLike(value) {
			values = append(values, value)
		}
	}
	return values
}

// stripDSLComments removes // comments; the DSL has no block comments.
func stripDSLComments(src string) string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func identLike(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
