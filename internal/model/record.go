package model

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an ordered mapping from field name to Value. Patients and
// service records carry open-ended field sets, so they are not structs.
// The zero Record is empty and ready to use.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func newFields(capacity int) *orderedmap.OrderedMap[string, Value] {
	return orderedmap.New[string, Value](
		orderedmap.WithCapacity[string, Value](capacity),
	)
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: newFields(0)}
}

// RecordOf builds a record from alternating key/value pairs.
func RecordOf(pairs ...any) *Record {
	r := &Record{fields: newFields(len(pairs) / 2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("RecordOf: key at %d is %T, not string", i, pairs[i]))
		}
		r.Set(key, FromAny(pairs[i+1]))
	}
	return r
}

func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil || r.fields == nil {
		return nil
	}
	out := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (r *Record) Get(key string) (Value, bool) {
	if r == nil || r.fields == nil {
		return Value{}, false
	}
	return r.fields.Get(key)
}

// Value returns the field value, or null when the field is absent.
func (r *Record) Value(key string) Value {
	v, _ := r.Get(key)
	return v
}

func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set adds or replaces a field. New fields go to the end; replaced fields
// keep their position.
func (r *Record) Set(key string, v Value) {
	if r.fields == nil {
		r.fields = newFields(0)
	}
	r.fields.Set(key, v)
}

func (r *Record) Delete(keys ...string) {
	if r.fields == nil {
		return
	}
	for _, key := range keys {
		r.fields.Delete(key)
	}
}

// Clone is a shallow copy: nested arrays and objects are shared.
func (r *Record) Clone() *Record {
	out := &Record{fields: newFields(r.Len())}
	if r.fields == nil {
		return out
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.fields.Set(pair.Key, pair.Value)
	}
	return out
}

// Equal compares field sets and values, ignoring order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for _, k := range r.Keys() {
		ov, ok := o.Get(k)
		if !ok || !r.Value(k).Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON writes fields in insertion order without HTML escaping.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON reads a JSON object, keeping its key order. Any previous
// content is discarded.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected JSON object, got %s", jsonKind(trimmed))
	}
	fields := newFields(0)
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	r.fields = fields
	return nil
}
