package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the Value variant.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a node of a retrieved document: null, scalar, list or mapping.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	fields map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a string, number or bool.
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// List creates a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Map creates a mapping value.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindMap, fields: fields}
}

// FromAny converts a decoded JSON tree (map[string]any, []any, scalars) into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Value{kind: KindMap, fields: fields}
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Value{kind: KindList, list: items}
	default:
		return Value{kind: KindScalar, scalar: t}
	}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Items returns list elements (nil for non-lists).
func (v Value) Items() []Value { return v.list }

// Field returns a mapping entry.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// String renders scalars as text; other kinds render as JSON.
func (v Value) String() string {
	if v.kind == KindScalar {
		if s, ok := v.scalar.(string); ok {
			return s
		}
		return fmt.Sprint(v.scalar)
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return ""
	}
	return string(b)
}

// Interface converts the value back to plain Go types.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for k, item := range v.fields {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// Resolve walks a dotted path. Lists fan out wherever they are met: before the
// last segment the remaining path is resolved against every element, and a list
// ending the path yields its elements, nested lists flattened. ok is false when
// the path does not exist; an empty list at the end resolves to no values.
func (v Value) Resolve(path string) ([]Value, bool) {
	if path == "" {
		return []Value{v}, true
	}
	return resolve(v, strings.Split(path, "."))
}

func resolve(v Value, segments []string) ([]Value, bool) {
	switch {
	case v.kind == KindList:
		var out []Value
		found := len(segments) == 0
		for _, item := range v.list {
			vals, ok := resolve(item, segments)
			out = append(out, vals...)
			found = found || ok
		}
		return out, found
	case len(segments) == 0:
		return []Value{v}, true
	case v.kind == KindMap:
		child, ok := v.fields[segments[0]]
		if !ok {
			return nil, false
		}
		return resolve(child, segments[1:])
	default:
		return nil, false
	}
}
