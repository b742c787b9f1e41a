package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "int", "float", "string", "bool", "time", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindNull, false
}

// Value is one JSON-compatible cell or field value. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
	arr  []Value
	obj  *Record
}

func Null() Value { return Value{} }
func Int(v int64) Value { return Value{kind: KindInt, i: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }
func Array(v []Value) Value { return Value{kind: KindArray, arr: v} }
func Object(v *Record) Value { return Value{kind: KindObject, obj: v} }

// Float returns a decimal Value. NaN collapses to null.
func Float(v float64) Value {
	if math.IsNaN(v) {
		return Null()
	}
	return Value{kind: KindFloat, f: v}
}

// FromAny converts a Go value from an external decoder into a Value.
// Unsupported types are rendered with fmt.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		return numberValue(string(x))
	case time.Time:
		return Time(x)
	case *Record:
		return Object(x)
	case []Value:
		return Array(x)
	default:
		return String(fmt.Sprint(x))
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string { return v.s }
func (v Value) Bool() bool { return v.b }
func (v Value) Time() time.Time { return v.t }
func (v Value) Array() []Value { return v.arr }
func (v Value) Object() *Record { return v.obj }

// IsMissing reports whether v counts as an absent cell: null or a non-finite decimal.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindFloat:
		return math.IsNaN(v.f) || math.IsInf(v.f, 0)
	}
	return false
}

// Text renders v as plain text. Null renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Key returns the join key form of v: trimmed text, with a zero fraction
// such as "123.0" or "-7.00" dropped. Exponent forms are kept as written.
// Missing values yield "".
func (v Value) Key() string {
	if v.IsMissing() {
		return ""
	}
	return trimZeroFraction(strings.TrimSpace(v.Text()))
}

func trimZeroFraction(s string) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 || dot == len(s)-1 {
		return s
	}
	intPart := strings.TrimPrefix(s[:dot], "-")
	if intPart == "" || strings.Trim(intPart, "0123456789") != "" {
		return s
	}
	if strings.Trim(s[dot+1:], "0") != "" {
		return s
	}
	return s[:dot]
}

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	}
	return false
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// MarshalJSON never fails on numeric or temporal values: non-finite decimals
// encode as null and times as RFC 3339 text.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindString:
		return marshalNoEscape(v.s)
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindTime:
		return marshalNoEscape(v.t.Format(time.RFC3339Nano))
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return v.obj.MarshalJSON()
	}
	return nil, fmt.Errorf("marshal value: unknown kind %d", v.kind)
}

// UnmarshalJSON decodes any JSON value. Objects keep their key order and
// integer literals stay integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("decode value: empty input")
	}
	switch trimmed[0] {
	case '{':
		rec := NewRecord()
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*v = Object(rec)
	case '[':
		items := []Value{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = Array(items)
	default:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var scalar any
		if err := dec.Decode(&scalar); err != nil {
			return err
		}
		*v = FromAny(scalar)
	}
	return nil
}

// jsonKind names the JSON type of an encoded value for error messages.
func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	return "number"
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// numberValue keeps integer literals as integers and everything else as decimals.
func numberValue(lit string) Value {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i)
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return String(lit)
	}
	return Float(f)
}
