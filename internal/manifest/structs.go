package manifest

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// goColumnTypes maps Go field types to column types for fields without an
// explicit gorm type.
var goColumnTypes = map[string]core.ColumnType{
	"string":          core.ColumnTypeString,
	"sql.NullString":  core.ColumnTypeString,
	"bool":            core.ColumnTypeBoolean,
	"sql.NullBool":    core.ColumnTypeBoolean,
	"int":             core.ColumnTypeInteger,
	"int8":            core.ColumnTypeInteger,
	"int16":           core.ColumnTypeInteger,
	"int32":           core.ColumnTypeInteger,
	"int64":           core.ColumnTypeInteger,
	"uint":            core.ColumnTypeInteger,
	"uint8":           core.ColumnTypeInteger,
	"uint16":          core.ColumnTypeInteger,
	"uint32":          core.ColumnTypeInteger,
	"uint64":          core.ColumnTypeInteger,
	"sql.NullInt16":   core.ColumnTypeInteger,
	"sql.NullInt32":   core.ColumnTypeInteger,
	"sql.NullInt64":   core.ColumnTypeInteger,
	"float32":         core.ColumnTypeFloat,
	"float64":         core.ColumnTypeFloat,
	"sql.NullFloat64": core.ColumnTypeFloat,
	"time.Time":       core.ColumnTypeDatetime,
	"sql.NullTime":    core.ColumnTypeDatetime,
	"gorm.DeletedAt":  core.ColumnTypeDatetime,
	"[]byte":          core.ColumnTypeBinary,
	"uuid.UUID":       core.ColumnTypeUUID,
	"datatypes.JSON":  core.ColumnTypeJSON,
}

// gormModelColumns are the columns contributed by an embedded gorm.Model.
var gormModelColumns = []core.Column{
	{Name: "id", Type: core.ColumnTypeInteger, SQLType: "uint"},
	{Name: "created_at", Type: core.ColumnTypeDatetime, SQLType: "time.Time", Nullable: true},
	{Name: "updated_at", Type: core.ColumnTypeDatetime, SQLType: "time.Time", Nullable: true},
	{Name: "deleted_at", Type: core.ColumnTypeDatetime, SQLType: "gorm.DeletedAt", Nullable: true},
}

// goStruct is a struct type declaration found while scanning a directory.
type goStruct struct {
	name   string
	file   string
	fields *ast.FieldList
}

// structScan accumulates declarations across all files of a directory.
type structScan struct {
	structs    []*goStruct
	byName     map[string]*goStruct
	tableNames map[string]string
}

// pendingPolymorphic records a polymorphic has-one/has-many that must be
// attached to its target as a polymorphic belongs_to.
type pendingPolymorphic struct {
	target     string
	owner      string
	typeColumn string
}

// LoadStructs parses every non-test Go file under dir and returns a
// definition for each struct that looks like a gorm model: it embeds
// gorm.Model, has a TableName method, or carries gorm or validate tags.
func LoadStructs(dir string) ([]Definition, error) {
	scan := &structScan{
		byName:     make(map[string]*goStruct),
		tableNames: make(map[string]string),
	}

	fset := token.NewFileSet()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "vendor" || d.Name() == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return &ParseError{File: filepath.ToSlash(path), Message: "invalid Go source", Err: err}
		}
		scan.addFile(filepath.ToSlash(path), file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load models from %s: %w", dir, err)
	}

	return scan.definitions()
}

func (s *structScan) addFile(path string, file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				gs := &goStruct{name: ts.Name.Name, file: path, fields: st.Fields}
				s.structs = append(s.structs, gs)
				s.byName[gs.name] = gs
			}
		case *ast.FuncDecl:
			if recv, table, ok := tableNameMethod(d); ok {
				s.tableNames[recv] = table
			}
		}
	}
}

// tableNameMethod recognizes
//
//	func (User) TableName() string { return "people" }
func tableNameMethod(fn *ast.FuncDecl) (string, string, bool) {
	if fn.Name.Name != "TableName" || fn.Recv == nil || len(fn.Recv.List) != 1 || fn.Body == nil {
		return "", "", false
	}
	recv, _, _ := typeName(fn.Recv.List[0].Type)
	if recv == "" || len(fn.Body.List) != 1 {
		return "", "", false
	}
	ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return "", "", false
	}
	lit, ok := ret.Results[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", "", false
	}
	table, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", "", false
	}
	return recv, table, true
}

func (s *structScan) isModel(gs *goStruct) bool {
	if _, ok := s.tableNames[gs.name]; ok {
		return true
	}
	for _, f := range gs.fields.List {
		if len(f.Names) == 0 {
			if name, _, _ := typeName(f.Type); name == "gorm.Model" {
				return true
			}
		}
		if f.Tag != nil {
			tag := structTag(f.Tag)
			if _, ok := tag.Lookup("gorm"); ok {
				return true
			}
			if _, ok := tag.Lookup("validate"); ok {
				return true
			}
		}
	}
	return false
}

func (s *structScan) definitions() ([]Definition, error) {
	models := make(map[string]bool)
	for _, gs := range s.structs {
		if s.isModel(gs) {
			models[gs.name] = true
		}
	}

	var (
		defs    []Definition
		pending []pendingPolymorphic
	)
	for _, gs := range s.structs {
		if !models[gs.name] {
			continue
		}
		b := &modelBuilder{scan: s, models: models, owner: gs}
		b.model = core.Model{
			Name:              gs.name,
			TableName:         tableNameFor(gs.name),
			InheritanceColumn: core.DefaultInheritanceColumn,
		}
		if table, ok := s.tableNames[gs.name]; ok {
			b.model.TableName = table
		}
		if err := b.addFields(gs.fields, map[string]bool{gs.name: true}); err != nil {
			return nil, &ParseError{File: gs.file, Model: gs.name, Message: "invalid field", Err: err}
		}
		for i := range b.model.Columns {
			b.model.Columns[i].Position = i + 1
		}
		if err := b.model.Validate(); err != nil {
			return nil, &ParseError{File: gs.file, Model: gs.name, Message: "invalid columns", Err: err}
		}
		pending = append(pending, b.polymorphic...)
		defs = append(defs, Definition{Model: b.model, File: gs.file, Source: SourceStruct})
	}

	for _, p := range pending {
		for i := range defs {
			if defs[i].Name == p.target {
				attachPolymorphic(&defs[i].Model, p)
			}
		}
	}
	return defs, nil
}

func attachPolymorphic(m *core.Model, p pendingPolymorphic) {
	for _, a := range m.Associations {
		if a.Kind == core.AssociationBelongsTo && a.Polymorphic && a.ForeignTypeColumn == p.typeColumn {
			return
		}
	}
	m.Associations = append(m.Associations, core.Association{
		Kind:              core.AssociationBelongsTo,
		Name:              p.owner,
		Polymorphic:       true,
		ForeignTypeColumn: p.typeColumn,
	})
}

// modelBuilder turns the fields of one struct into a model.
type modelBuilder struct {
	scan        *structScan
	models      map[string]bool
	owner       *goStruct
	model       core.Model
	polymorphic []pendingPolymorphic
}

// addFields walks a field list. Embedded local structs contribute their
// fields; visiting guards against embedding cycles.
func (b *modelBuilder) addFields(fields *ast.FieldList, visiting map[string]bool) error {
	for _, f := range fields.List {
		typ, slice, ptr := typeName(f.Type)
		tag := structTag(f.Tag)
		settings := parseGormTag(tag.Get("gorm"))
		if _, skip := settings["-"]; skip {
			continue
		}

		if len(f.Names) == 0 {
			if typ == "gorm.Model" {
				b.model.Columns = append(b.model.Columns, gormModelColumns...)
				continue
			}
			if embedded, ok := b.scan.byName[typ]; ok && !visiting[typ] {
				visiting[typ] = true
				if err := b.addFields(embedded.fields, visiting); err != nil {
					return err
				}
				delete(visiting, typ)
			}
			continue
		}

		for _, ident := range f.Names {
			if !ident.IsExported() {
				continue
			}
			if b.models[typ] {
				b.addAssociation(ident.Name, typ, slice, settings)
				continue
			}
			col, ok, err := columnFor(ident.Name, typ, slice, ptr, settings)
			if err != nil {
				return fmt.Errorf("%s: %w", ident.Name, err)
			}
			if !ok {
				continue
			}
			b.model.Columns = append(b.model.Columns, col)
			b.model.Validators = append(b.model.Validators, validatorsFor(col.Name, tag.Get("validate"))...)
		}
	}
	return nil
}

func (b *modelBuilder) addAssociation(field, target string, slice bool, settings map[string]string) {
	assoc := core.Association{Name: toSnakeCase(field)}
	switch {
	case slice:
		assoc.Kind = core.AssociationHasMany
		if _, ok := settings["many2many"]; ok {
			assoc.Kind = core.AssociationHasAndBelongsToMany
		}
	case b.hasField(field + "ID"):
		assoc.Kind = core.AssociationBelongsTo
	default:
		assoc.Kind = core.AssociationHasOne
	}
	b.model.Associations = append(b.model.Associations, assoc)

	owner, ok := settings["polymorphic"]
	if !ok || owner == "" || assoc.Kind == core.AssociationBelongsTo {
		return
	}
	p := pendingPolymorphic{
		target:     target,
		owner:      toSnakeCase(owner),
		typeColumn: toSnakeCase(owner) + "_type",
	}
	if typeField := settings["polymorphictype"]; typeField != "" {
		p.typeColumn = toSnakeCase(typeField)
	}
	b.polymorphic = append(b.polymorphic, p)
}

func (b *modelBuilder) hasField(name string) bool {
	for _, f := range b.owner.fields.List {
		for _, ident := range f.Names {
			if ident.Name == name {
				return true
			}
		}
	}
	return false
}

// columnFor builds the column for a scalar field. Fields whose type maps
// to no column and carry no explicit gorm type are skipped.
func columnFor(field, typ string, slice, ptr bool, settings map[string]string) (core.Column, bool, error) {
	goType := typ
	if slice {
		goType = "[]" + typ
	}

	col := core.Column{
		Name:     toSnakeCase(field),
		Nullable: true,
	}
	if name := settings["column"]; name != "" {
		col.Name = name
	}

	if sqlType := settings["type"]; sqlType != "" {
		col.SQLType = sqlType
		col.Type, col.Limit = adapter.NormalizeType(sqlType)
	} else if t, ok := goColumnTypes[goType]; ok {
		col.SQLType = goType
		col.Type = t
	} else {
		return col, false, nil
	}

	if size, ok := settings["size"]; ok && col.Type == core.ColumnTypeString {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return col, false, fmt.Errorf("invalid size %q", size)
		}
		col.Limit = &n
	}

	if _, ok := settings["not null"]; ok {
		col.Nullable = false
	}
	if _, ok := settings["primarykey"]; ok {
		col.Nullable = false
	}
	if !ptr && col.Name == "id" {
		col.Nullable = false
	}
	return col, true, nil
}

// parseGormTag splits a gorm tag into settings keyed by lower-cased name.
// Flags without a value map to "".
func parseGormTag(tag string) map[string]string {
	settings := make(map[string]string)
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, ":")
		settings[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return settings
}

// validatorsFor maps go-playground validate rules to validators:
// max and len bound the length, min sets a minimum, oneof is an inclusion.
func validatorsFor(column, tag string) []core.Validator {
	if tag == "" || tag == "-" {
		return nil
	}

	var (
		out    []core.Validator
		length map[string]any
	)
	for _, rule := range strings.Split(tag, ",") {
		name, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch name {
		case "", "omitempty", "dive":
		case "max", "len", "min":
			n, err := strconv.Atoi(param)
			if err != nil {
				out = append(out, otherValidator(column, rule))
				continue
			}
			if length == nil {
				length = make(map[string]any)
			}
			switch name {
			case "max":
				length[core.OptionMaximum] = n
			case "min":
				length[core.OptionMinimum] = n
			case "len":
				length[core.OptionMinimum] = n
				length[core.OptionMaximum] = n
			}
		case "oneof":
			out = append(out, core.Validator{
				Kind:       core.ValidatorInclusion,
				Attributes: []string{column},
				Options:    map[string]any{"in": strings.Fields(param)},
			})
		default:
			out = append(out, otherValidator(column, rule))
		}
	}
	if length != nil {
		out = append([]core.Validator{{
			Kind:       core.ValidatorLength,
			Attributes: []string{column},
			Options:    length,
		}}, out...)
	}
	return out
}

func otherValidator(column, rule string) core.Validator {
	return core.Validator{
		Kind:       core.ValidatorOther,
		Attributes: []string{column},
		Options:    map[string]any{"rule": rule},
	}
}

func structTag(lit *ast.BasicLit) reflect.StructTag {
	if lit == nil {
		return ""
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw)
}

// typeName renders a field type as "name" or "pkg.Name", reporting whether
// it was a slice and whether it was a pointer.
func typeName(expr ast.Expr) (name string, slice, ptr bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false, false
	case *ast.StarExpr:
		n, s, _ := typeName(t.X)
		return n, s, true
	case *ast.ArrayType:
		n, _, _ := typeName(t.Elt)
		if n == "byte" {
			return "[]byte", false, false
		}
		return n, true, false
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name, false, false
		}
	}
	return "", false, false
}
