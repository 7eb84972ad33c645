package simplecms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityNamer overrides the snake_case entity name derived from the Go type
// name. The returned name should be snake_case and singular; plural and URL
// forms are derived from it.
type EntityNamer interface {
	EntityName() string
}

// Field describes one CMS-visible struct field. For list elements and group
// members the same type is reused with Index relative to the enclosing
// struct.
type Field struct {
	// Name is the Go field name; WireName the JSON and form name; Column
	// the database column name; Label the human heading.
	Name     string
	WireName string
	Column   string
	Label    string

	Kind FieldKind
	// Type is the declared field type, pointer included.
	Type reflect.Type
	// Elem describes the element of a KindList field.
	Elem *Field
	// Fields describes the members of a KindGroup or KindVariant field.
	Fields []Field
	// Options holds the choices of a KindEnum field, or the variant wire
	// names of a KindVariant field.
	Options []string
	// Index locates the field within its enclosing struct (reflect style).
	Index []int

	ID            bool
	Required      bool
	SkipInput     bool
	SkipColumn    bool
	Hidden        bool
	Discriminator bool
	VariantField  bool
}

// Schema is the parsed CMS description of one entity type.
type Schema struct {
	// Name is the snake_case singular name; Plural its pluralization.
	Name   string
	Plural string
	// Path and PluralPath are the kebab-case URL segments.
	Path       string
	PluralPath string
	// Label and PluralLabel are Title Case human headings.
	Label       string
	PluralLabel string

	// Type is the underlying struct type.
	Type reflect.Type

	Fields  []Field
	idIndex int
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	enumeratedType = reflect.TypeOf((*Enumerated)(nil)).Elem()
)

// ParseSchema builds the Schema for an entity type from its struct tags.
// The value must be a struct or pointer to struct with exactly one field
// tagged cms:"id".
func ParseSchema(v any) (*Schema, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &SchemaError{Type: fmt.Sprintf("%T", v), Err: errors.New("entity must be a struct or pointer to struct")}
	}

	name := snakeName(t.Name())
	if n, ok := v.(EntityNamer); ok && n.EntityName() != "" {
		name = n.EntityName()
	}
	plural := pluralName(name)

	s := &Schema{
		Name:        name,
		Plural:      plural,
		Path:        pathName(name),
		PluralPath:  pathName(plural),
		Label:       labelName(name),
		PluralLabel: labelName(plural),
		Type:        t,
		idIndex:     -1,
	}

	fields, err := parseFields(t, t.Name(), nil, map[reflect.Type]bool{t: true})
	if err != nil {
		return nil, err
	}
	s.Fields = fields

	for i := range s.Fields {
		if !s.Fields[i].ID {
			continue
		}
		if s.idIndex >= 0 {
			return nil, &SchemaError{Type: t.Name(), Field: s.Fields[i].Name, Err: ErrMultipleIDs}
		}
		s.idIndex = i
	}
	if s.idIndex < 0 {
		return nil, &SchemaError{Type: t.Name(), Err: ErrNoID}
	}
	return s, nil
}

type tagOptions struct {
	id            bool
	skipInput     bool
	skipColumn    bool
	hidden        bool
	discriminator bool
	variant       bool
	omit          bool
}

func parseTag(tag string) (tagOptions, error) {
	var o tagOptions
	if tag == "" {
		return o, nil
	}
	for _, flag := range strings.Split(tag, ",") {
		switch strings.TrimSpace(flag) {
		case "id":
			o.id = true
		case "skipinput":
			o.skipInput = true
		case "skipcolumn":
			o.skipColumn = true
		case "hidden":
			o.hidden = true
		case "discriminator":
			o.discriminator = true
		case "variant":
			o.variant = true
		case "-":
			o.omit = true
		case "":
		default:
			return o, fmt.Errorf("unknown cms tag flag %q", flag)
		}
	}
	return o, nil
}

// jsonName returns the wire name from the json tag, "" when the tag names
// none, and false when the field is excluded with json:"-".
func jsonName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" && tag == "-" {
		return "", false
	}
	if name == "-" {
		// json:"-," encodes a literal "-" key
		return "-", true
	}
	return name, true
}

func parseFields(t reflect.Type, typeName string, prefix []int, seen map[reflect.Type]bool) ([]Field, error) {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}

		opts, err := parseTag(sf.Tag.Get("cms"))
		if err != nil {
			return nil, &SchemaError{Type: typeName, Field: sf.Name, Err: err}
		}
		wire, visible := jsonName(sf)
		if opts.omit || !visible {
			continue
		}

		ft := sf.Type
		if sf.Anonymous && sf.Tag.Get("cms") == "" && ft.Kind() == reflect.Struct && plainStruct(ft) {
			// promote embedded struct fields, json-style
			inner, err := parseFields(ft, typeName, append(append([]int{}, prefix...), i), seen)
			if err != nil {
				return nil, err
			}
			fields = append(fields, inner...)
			continue
		}

		if wire == "" {
			wire = snakeName(sf.Name)
		}
		f := Field{
			Name:          sf.Name,
			WireName:      wire,
			Column:        snakeName(sf.Name),
			Label:         labelName(snakeName(sf.Name)),
			Type:          sf.Type,
			Index:         append(append([]int{}, prefix...), i),
			ID:            opts.id,
			SkipInput:     opts.skipInput,
			SkipColumn:    opts.skipColumn,
			Hidden:        opts.hidden,
			Discriminator: opts.discriminator,
			VariantField:  opts.variant,
		}
		f.Required = ft.Kind() != reflect.Pointer
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if err := resolveKind(&f, ft, typeName, seen); err != nil {
			return nil, err
		}
		if f.Kind == KindBool || f.Kind == KindList {
			f.Required = false
		}
		if f.ID {
			if len(prefix) > 0 {
				return nil, &SchemaError{Type: typeName, Field: sf.Name, Err: errors.New("cms:\"id\" is only valid on top-level fields")}
			}
			if f.Kind != KindUUID && f.Kind != KindText {
				return nil, &SchemaError{Type: typeName, Field: sf.Name, Err: errors.New("id field must be a uuid.UUID or string")}
			}
			// ids are server-assigned
			f.SkipInput = true
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// plainStruct reports whether t is an ordinary struct rather than one of the
// specially handled types.
func plainStruct(t reflect.Type) bool {
	switch t {
	case timeType, uuidType, fileType, imageType:
		return false
	}
	return !t.Implements(enumeratedType) && !reflect.PointerTo(t).Implements(enumeratedType)
}

func resolveKind(f *Field, ft reflect.Type, typeName string, seen map[reflect.Type]bool) error {
	switch {
	case ft == markdownType:
		f.Kind = KindMarkdown
		return nil
	case ft == timeType:
		f.Kind = KindDateTime
		return nil
	case ft == uuidType:
		f.Kind = KindUUID
		return nil
	case ft == fileType:
		f.Kind = KindFile
		return nil
	case ft == imageType:
		f.Kind = KindImage
		return nil
	}

	if ft.Implements(enumeratedType) || reflect.PointerTo(ft).Implements(enumeratedType) {
		if ft.Kind() != reflect.String {
			return &SchemaError{Type: typeName, Field: f.Name, Err: errors.New("Enumerated types must have string kind")}
		}
		f.Kind = KindEnum
		f.Options = enumValues(ft)
		return nil
	}

	switch ft.Kind() {
	case reflect.String:
		f.Kind = KindText
		return nil
	case reflect.Bool:
		f.Kind = KindBool
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f.Kind = KindNumber
		return nil
	case reflect.Slice:
		if ft.Elem().Kind() == reflect.Uint8 {
			return &SchemaError{Type: typeName, Field: f.Name, Err: fmt.Errorf("%w: []byte", ErrUnsupportedField)}
		}
		elem := Field{
			Name:     f.Name,
			WireName: f.WireName,
			Label:    f.Label,
			Type:     ft.Elem(),
			Required: ft.Elem().Kind() != reflect.Pointer,
		}
		et := ft.Elem()
		for et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if err := resolveKind(&elem, et, typeName, seen); err != nil {
			return err
		}
		if elem.Kind == KindBool || elem.Kind == KindList {
			elem.Required = false
		}
		f.Kind = KindList
		f.Elem = &elem
		return nil
	case reflect.Struct:
		if seen[ft] {
			return &SchemaError{Type: typeName, Field: f.Name, Err: fmt.Errorf("%w: recursive type %s", ErrUnsupportedField, ft)}
		}
		seen[ft] = true
		defer delete(seen, ft)
		inner, err := parseFields(ft, typeName, nil, seen)
		if err != nil {
			return err
		}
		f.Fields = inner
		return resolveStructKind(f, typeName)
	default:
		return &SchemaError{Type: typeName, Field: f.Name, Err: fmt.Errorf("%w: %s", ErrUnsupportedField, ft.Kind())}
	}
}

// resolveStructKind decides between a plain group and a variant group and
// validates the variant shape: one string discriminator plus pointer-to-
// struct variants, nothing else.
func resolveStructKind(f *Field, typeName string) error {
	tagged := false
	for i := range f.Fields {
		if f.Fields[i].Discriminator || f.Fields[i].VariantField {
			tagged = true
			break
		}
	}
	if !tagged {
		f.Kind = KindGroup
		return nil
	}

	var discriminators, variants int
	var options []string
	for i := range f.Fields {
		c := &f.Fields[i]
		switch {
		case c.Discriminator:
			discriminators++
			if c.Kind != KindText && c.Kind != KindEnum {
				return &SchemaError{Type: typeName, Field: c.Name, Err: errors.New("discriminator must be a string field")}
			}
		case c.VariantField:
			variants++
			if c.Type.Kind() != reflect.Pointer || c.Kind != KindGroup {
				return &SchemaError{Type: typeName, Field: c.Name, Err: errors.New("variants must be pointers to structs")}
			}
			options = append(options, c.WireName)
		default:
			return &SchemaError{Type: typeName, Field: c.Name, Err: errors.New("variant groups allow only discriminator and variant fields")}
		}
	}
	if discriminators != 1 {
		return &SchemaError{Type: typeName, Field: f.Name, Err: errors.New("variant groups need exactly one discriminator")}
	}
	if variants == 0 {
		return &SchemaError{Type: typeName, Field: f.Name, Err: errors.New("variant groups need at least one variant")}
	}
	f.Kind = KindVariant
	f.Options = options
	return nil
}

func enumValues(t reflect.Type) []string {
	v := reflect.New(t).Elem()
	if e, ok := v.Interface().(Enumerated); ok {
		return e.EnumValues()
	}
	if e, ok := v.Addr().Interface().(Enumerated); ok {
		return e.EnumValues()
	}
	return nil
}

// New returns a pointer to a fresh zero value of the entity type, as any.
func (s *Schema) New() any {
	return reflect.New(s.Type).Interface()
}

// IDField returns the field tagged cms:"id".
func (s *Schema) IDField() *Field {
	return &s.Fields[s.idIndex]
}

// Columns returns the fields shown on the admin list page.
func (s *Schema) Columns() []*Field {
	var out []*Field
	for i := range s.Fields {
		if !s.Fields[i].SkipColumn {
			out = append(out, &s.Fields[i])
		}
	}
	return out
}

// Inputs returns the fields editable in admin forms.
func (s *Schema) Inputs() []*Field {
	var out []*Field
	for i := range s.Fields {
		if !s.Fields[i].SkipInput {
			out = append(out, &s.Fields[i])
		}
	}
	return out
}

// Field looks up a top-level field by wire name.
func (s *Schema) Field(wireName string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].WireName == wireName {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Table returns the database table name.
func (s *Schema) Table() string {
	return s.Plural
}

// Struct validates that entity is a non-nil pointer to this schema's type
// and returns the addressable struct value.
func (s *Schema) Struct(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != s.Type {
		return reflect.Value{}, fmt.Errorf("%w: got %T, want *%s", ErrWrongType, entity, s.Type)
	}
	return v.Elem(), nil
}

// ID returns the entity's id in its string form.
func (s *Schema) ID(entity any) (string, error) {
	v, err := s.Struct(entity)
	if err != nil {
		return "", err
	}
	idv := v.FieldByIndex(s.IDField().Index)
	if s.IDField().Kind == KindUUID {
		return idv.Interface().(uuid.UUID).String(), nil
	}
	return idv.String(), nil
}

// SetID sets the entity's id from its string form.
func (s *Schema) SetID(entity any, id string) error {
	v, err := s.Struct(entity)
	if err != nil {
		return err
	}
	idv := v.FieldByIndex(s.IDField().Index)
	if s.IDField().Kind == KindUUID {
		u, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		idv.Set(reflect.ValueOf(u))
		return nil
	}
	idv.SetString(id)
	return nil
}

// HasZeroID reports whether the entity's id is unset.
func (s *Schema) HasZeroID(entity any) bool {
	v, err := s.Struct(entity)
	if err != nil {
		return false
	}
	return v.FieldByIndex(s.IDField().Index).IsZero()
}

// NewID generates a fresh id for the entity type.
func (s *Schema) NewID() string {
	return uuid.NewString()
}

// ParseID validates an id string against the id field and returns its
// canonical form.
func (s *Schema) ParseID(id string) (string, error) {
	if s.IDField().Kind == KindUUID {
		u, err := uuid.Parse(id)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		return u.String(), nil
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	return id, nil
}

// ValueOf returns the field's value within the given struct value.
func (f *Field) ValueOf(structVal reflect.Value) reflect.Value {
	return structVal.FieldByIndex(f.Index)
}

// Filterable reports whether list requests may filter on this field.
// Filtering is exact-match and limited to string-typed columns.
func (f *Field) Filterable() bool {
	switch f.Kind {
	case KindText, KindMarkdown, KindEnum, KindUUID:
		return true
	}
	return false
}

// copySkipped copies the values of skipinput fields from src to dst. Used to
// preserve server-managed fields across form-driven updates.
func (s *Schema) copySkipped(dst, src reflect.Value) {
	for i := range s.Fields {
		f := &s.Fields[i]
		if !f.SkipInput {
			continue
		}
		dst.FieldByIndex(f.Index).Set(src.FieldByIndex(f.Index))
	}
}
