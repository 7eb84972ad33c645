package simplecms

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// normalizeEntity validates enum values and settles variant groups after an
// entity has been decoded or handed in by a caller.
func normalizeEntity(s *Schema, entity any) error {
	v, err := s.Struct(entity)
	if err != nil {
		return err
	}
	return normalizeStruct(v, s.Fields)
}

func normalizeStruct(v reflect.Value, fields []Field) error {
	for i := range fields {
		f := &fields[i]
		if err := normalizeValue(v.FieldByIndex(f.Index), f); err != nil {
			return err
		}
	}
	return nil
}

func normalizeValue(fv reflect.Value, f *Field) error {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	switch f.Kind {
	case KindEnum:
		v := fv.String()
		if v == "" {
			return nil
		}
		for _, o := range f.Options {
			if o == v {
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not a valid value for %s", ErrDecode, v, f.Name)
	case KindGroup:
		return normalizeStruct(fv, f.Fields)
	case KindVariant:
		return normalizeVariant(fv, f)
	case KindList:
		for i := 0; i < fv.Len(); i++ {
			if err := normalizeValue(fv.Index(i), f.Elem); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeVariant enforces the union invariant: the discriminator names the
// one live variant, every other variant is nil. A missing discriminator is
// inferred when exactly one variant is populated.
func normalizeVariant(sv reflect.Value, f *Field) error {
	var disc *Field
	variants := make([]*Field, 0, len(f.Fields))
	for i := range f.Fields {
		c := &f.Fields[i]
		if c.Discriminator {
			disc = c
		} else {
			variants = append(variants, c)
		}
	}

	dv := sv.FieldByIndex(disc.Index)
	name := dv.String()
	if name == "" {
		for _, c := range variants {
			if !sv.FieldByIndex(c.Index).IsNil() {
				if name != "" {
					return fmt.Errorf("%w: ambiguous variant for %s", ErrDecode, f.Name)
				}
				name = c.WireName
			}
		}
		if name == "" {
			return fmt.Errorf("%w: missing variant selector for %s", ErrDecode, f.Name)
		}
		dv.SetString(name)
	}

	var active *Field
	for _, c := range variants {
		cv := sv.FieldByIndex(c.Index)
		if c.WireName == name {
			active = c
			if cv.IsNil() {
				cv.Set(reflect.New(c.Type.Elem()))
			}
		} else if !cv.IsNil() {
			cv.Set(reflect.Zero(c.Type))
		}
	}
	if active == nil {
		return fmt.Errorf("%w: unknown variant %q for %s", ErrDecode, name, f.Name)
	}
	return normalizeStruct(sv.FieldByIndex(active.Index).Elem(), active.Fields)
}

// fieldAt resolves a dotted form path (Go field names, numeric list indexes)
// to its schema field. Returns nil for paths that do not address a schema
// field, such as the members of File and Image values.
func fieldAt(fields []Field, segs []string) *Field {
	if len(segs) == 0 {
		return nil
	}
	for i := range fields {
		if fields[i].Name == segs[0] {
			return fieldDescend(&fields[i], segs[1:])
		}
	}
	return nil
}

func fieldDescend(f *Field, rest []string) *Field {
	if len(rest) == 0 {
		return f
	}
	switch f.Kind {
	case KindList:
		// rest[0] is the element index
		return fieldDescend(f.Elem, rest[1:])
	case KindGroup, KindVariant:
		return fieldAt(f.Fields, rest)
	default:
		return nil
	}
}

// normalizeFormValues prepares browser form data for the form decoder:
// enforces the nesting cap, maps checkbox "on" to "true", and drops empty
// values for fields where an empty string is not a value (dates, numbers,
// uuids, and anything optional).
func normalizeFormValues(sc *Schema, values url.Values) (url.Values, error) {
	out := make(url.Values, len(values))
	for key, vals := range values {
		if strings.Count(key, ".") > maxFormNesting {
			return nil, fmt.Errorf("%w: form key %q exceeds nesting depth %d", ErrDecode, key, maxFormNesting)
		}
		f := fieldAt(sc.Fields, strings.Split(key, "."))
		for _, v := range vals {
			if f != nil {
				if f.Kind == KindBool && v == "on" {
					v = "true"
				}
				if v == "" && (!f.Required || f.Kind == KindDateTime || f.Kind == KindNumber || f.Kind == KindUUID) {
					continue
				}
			}
			out.Add(key, v)
		}
	}
	return out, nil
}
