// Package schema validates payload trees against declared field rules.
//
// Evaluation never stops at the first failing field: every declared
// top-level field contributes at most one message (its first violation) to
// the result. Members not declared in the schema are dropped from the
// payload, not reported.
package schema

import (
	"fmt"
	"strings"

	"lodgia.org/internal/payload"
)

// Type names the payload kind a field must hold.
type Type int

const (
	TypeString Type = iota
	TypeNumber
	TypeBool
	TypeObject
	TypeArray
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "invalid"
	}
}

// Field declares the constraints for one member.
type Field struct {
	Type     Type
	Required bool

	// String constraints. MaxLen of zero means unbounded.
	MinLen int
	MaxLen int
	Enum   []string

	// Number constraints.
	Min *float64
	Max *float64

	// Fields declares the shape of a nested object; Elem the shape of
	// array elements. Both recurse with full strip-unknown semantics.
	Fields map[string]Field
	Elem   *Field
}

// Schema is the declared shape of a request payload.
type Schema struct {
	Fields map[string]Field
}

// Result maps a top-level field name to its first violation. Empty means
// the payload passed.
type Result map[string]string

// OK reports whether validation passed.
func (r Result) OK() bool { return len(r) == 0 }

// Validate checks obj against the schema and returns the payload with
// undeclared members stripped, plus the per-field violations. A non-object
// payload fails wholesale under the "payload" pseudo-field.
func Validate(s Schema, obj payload.Value) (payload.Value, Result) {
	result := Result{}
	if obj.Kind() != payload.KindObject {
		result["payload"] = "payload must be an object"
		return payload.Object(), result
	}

	var kept []payload.Member
	for _, m := range obj.Members() {
		field, declared := s.Fields[m.Key]
		if !declared {
			continue
		}
		cleaned, msg := checkField(m.Key, field, m.Value)
		if msg != "" {
			result[m.Key] = normalizeQuotes(msg)
			continue
		}
		kept = append(kept, payload.Member{Key: m.Key, Value: cleaned})
	}

	for name, field := range s.Fields {
		if _, present := obj.Get(name); present {
			continue
		}
		if field.Required {
			result[name] = normalizeQuotes(fmt.Sprintf("%s is required", name))
		}
	}

	return payload.Object(kept...), result
}

// checkField returns the value with nested unknown members stripped and the
// first violation found, or an empty message when the value conforms.
func checkField(path string, f Field, v payload.Value) (payload.Value, string) {
	// Required-ness of present-but-null mirrors absence; optional nulls
	// pass through.
	if v.Kind() == payload.KindNull {
		if f.Required {
			return v, fmt.Sprintf("%s is required", path)
		}
		return v, ""
	}

	switch f.Type {
	case TypeString:
		if v.Kind() != payload.KindString {
			return v, fmt.Sprintf("%s must be a string", path)
		}
		return v, checkString(path, f, v.Str())
	case TypeNumber:
		if v.Kind() != payload.KindNumber {
			return v, fmt.Sprintf("%s must be a number", path)
		}
		return v, checkNumber(path, f, v)
	case TypeBool:
		if v.Kind() != payload.KindBool {
			return v, fmt.Sprintf("%s must be a boolean", path)
		}
		return v, ""
	case TypeObject:
		if v.Kind() != payload.KindObject {
			return v, fmt.Sprintf("%s must be an object", path)
		}
		return checkObject(path, f, v)
	case TypeArray:
		if v.Kind() != payload.KindArray {
			return v, fmt.Sprintf("%s must be an array", path)
		}
		return checkArray(path, f, v)
	default:
		return v, fmt.Sprintf("%s has an unsupported schema type", path)
	}
}

func checkString(path string, f Field, s string) string {
	if f.Required && s == "" {
		return fmt.Sprintf("%s is required", path)
	}
	if f.MinLen > 0 && len(s) < f.MinLen {
		return fmt.Sprintf("%s must be at least %d characters", path, f.MinLen)
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return fmt.Sprintf("%s must be at most %d characters", path, f.MaxLen)
	}
	if len(f.Enum) > 0 {
		for _, allowed := range f.Enum {
			if s == allowed {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", path, strings.Join(f.Enum, ", "))
	}
	return ""
}

func checkNumber(path string, f Field, v payload.Value) string {
	n, err := v.Num().Float64()
	if err != nil {
		return fmt.Sprintf("%s must be a number", path)
	}
	if f.Min != nil && n < *f.Min {
		return fmt.Sprintf("%s must be greater than or equal to %v", path, *f.Min)
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Sprintf("%s must be less than or equal to %v", path, *f.Max)
	}
	return ""
}

func checkObject(path string, f Field, v payload.Value) (payload.Value, string) {
	if len(f.Fields) == 0 {
		return v, ""
	}
	var kept []payload.Member
	for _, m := range v.Members() {
		nested, declared := f.Fields[m.Key]
		if !declared {
			continue
		}
		cleaned, msg := checkField(path+"."+m.Key, nested, m.Value)
		if msg != "" {
			return v, msg
		}
		kept = append(kept, payload.Member{Key: m.Key, Value: cleaned})
	}
	for name, nested := range f.Fields {
		if _, present := v.Get(name); present {
			continue
		}
		if nested.Required {
			return v, fmt.Sprintf("%s.%s is required", path, name)
		}
	}
	return payload.Object(kept...), ""
}

func checkArray(path string, f Field, v payload.Value) (payload.Value, string) {
	if f.Elem == nil {
		return v, ""
	}
	items := v.Items()
	kept := make([]payload.Value, 0, len(items))
	for i, item := range items {
		cleaned, msg := checkField(fmt.Sprintf("%s[%d]", path, i), *f.Elem, item)
		if msg != "" {
			return v, msg
		}
		kept = append(kept, cleaned)
	}
	return payload.Array(kept...), ""
}

// Generated messages are rendered into JSON bodies downstream; single
// quotes keep them from fighting with the encoder's escaping.
func normalizeQuotes(msg string) string {
	return strings.ReplaceAll(msg, `"`, `'`)
}
