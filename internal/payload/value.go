// Package payload models request bodies and query strings as an explicit
// tree of JSON-shaped values. Keeping the variant closed (string, number,
// bool, null, array, object) lets the sanitizer and the schema validator
// switch exhaustively, and keeping object members as an ordered slice
// preserves the shape of the request exactly as it arrived.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Member is one key/value pair of an object, in arrival order.
type Member struct {
	Key   string
	Value Value
}

// Value is one node of a payload tree. The zero value is null.
type Value struct {
	kind    Kind
	str     string
	num     json.Number
	boolean bool
	arr     []Value
	obj     []Member
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string leaf.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric leaf.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// Int wraps an integer leaf.
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// Bool wraps a boolean leaf.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Array wraps an ordered list.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object wraps an ordered key/value mapping.
func Object(members ...Member) Value { return Value{kind: KindObject, obj: members} }

// Kind returns the variant discriminator.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string leaf. Only meaningful for KindString.
func (v Value) Str() string { return v.str }

// Num returns the numeric leaf. Only meaningful for KindNumber.
func (v Value) Num() json.Number { return v.num }

// BoolVal returns the boolean leaf. Only meaningful for KindBool.
func (v Value) BoolVal() bool { return v.boolean }

// Items returns the elements of an array value.
func (v Value) Items() []Value { return v.arr }

// Members returns the ordered members of an object value.
func (v Value) Members() []Member { return v.obj }

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality, including object member order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.boolean == b.boolean
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if a.obj[i].Key != b.obj[i].Key || !Equal(a.obj[i].Value, b.obj[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Decode parses a JSON document into a payload tree, preserving object
// member order. Numbers stay textual (json.Number) so nothing is rounded.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, errors.New("unexpected data after JSON document")
	}
	return v, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		switch t {
		case '{':
			var members []Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return Value{}, err
			}
			return Object(members...), nil
		case '[':
			var items []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return Value{}, err
			}
			return Array(items...), nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// MarshalJSON re-encodes the tree, keeping object member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		data, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindNumber:
		if v.num == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(string(v.num))
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode kind %v", v.kind)
	}
	return nil
}

// Bind decodes the tree into a Go struct via its JSON form. Handlers use it
// to move from the sanitized tree to their typed request structs.
func Bind(v Value, dst any) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
