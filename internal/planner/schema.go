package planner

import (
	"fmt"
	"sort"
	"time"
)

// Type is a JSON value type understood by Validate.
type Type string

const (
	TypeObject Type = "object"
	TypeArray  Type = "array"
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeBool   Type = "boolean"
)

// FormatDate requires a string to be an ISO calendar date.
const FormatDate = "date"

// Schema describes the expected shape of a decoded JSON value.
// Objects are strict: keys not listed in Fields are violations.
type Schema struct {
	Type     Type
	Fields   []Field
	Items    *Schema
	MinItems int
	Format   string
}

// Field is one named member of an object schema. An optional field may be
// absent or null.
type Field struct {
	Name     string
	Schema   Schema
	Optional bool
}

func field(name string, s Schema) Field        { return Field{Name: name, Schema: s} }
func optionalField(name string, s Schema) Field { return Field{Name: name, Schema: s, Optional: true} }
func object(fields ...Field) Schema             { return Schema{Type: TypeObject, Fields: fields} }
func arrayOf(items Schema, minItems int) Schema {
	return Schema{Type: TypeArray, Items: &items, MinItems: minItems}
}

var (
	stringSchema = Schema{Type: TypeString}
	numberSchema = Schema{Type: TypeNumber}
	dateSchema   = Schema{Type: TypeString, Format: FormatDate}
)

// Validate checks a value produced by encoding/json against s and returns the
// first *SchemaViolation found, walking fields in declaration order.
func Validate(value any, s Schema) error {
	return validate("$", value, s)
}

func validate(path string, value any, s Schema) error {
	switch s.Type {
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return violation(path, s, value)
		}
		known := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			known[f.Name] = struct{}{}
			child := path + "." + f.Name
			v, present := obj[f.Name]
			if !present || v == nil {
				if f.Optional {
					continue
				}
				if !present {
					return &SchemaViolation{Path: child, Expected: describe(f.Schema), Got: "missing"}
				}
			}
			if err := validate(child, v, f.Schema); err != nil {
				return err
			}
		}
		var extra []string
		for k := range obj {
			if _, ok := known[k]; !ok {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return &SchemaViolation{Path: path + "." + extra[0], Expected: "no such field", Got: typeOf(obj[extra[0]])}
		}
	case TypeArray:
		arr, ok := value.([]any)
		if !ok {
			return violation(path, s, value)
		}
		if len(arr) < s.MinItems {
			return &SchemaViolation{
				Path:     path,
				Expected: fmt.Sprintf("array with at least %d items", s.MinItems),
				Got:      fmt.Sprintf("%d items", len(arr)),
			}
		}
		for i, item := range arr {
			if err := validate(fmt.Sprintf("%s[%d]", path, i), item, *s.Items); err != nil {
				return err
			}
		}
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return violation(path, s, value)
		}
		if s.Format == FormatDate {
			if _, err := time.Parse(DateLayout, str); err != nil {
				return &SchemaViolation{Path: path, Expected: "date (YYYY-MM-DD)", Got: fmt.Sprintf("%q", str)}
			}
		}
	case TypeNumber:
		if _, ok := value.(float64); !ok {
			return violation(path, s, value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return violation(path, s, value)
		}
	default:
		return fmt.Errorf("unknown schema type %q at %s", s.Type, path)
	}
	return nil
}

func violation(path string, s Schema, value any) *SchemaViolation {
	return &SchemaViolation{Path: path, Expected: describe(s), Got: typeOf(value)}
}

func describe(s Schema) string {
	if s.Type == TypeArray && s.Items != nil {
		return "array of " + describe(*s.Items)
	}
	if s.Format != "" {
		return string(s.Type) + " (" + s.Format + ")"
	}
	return string(s.Type)
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
