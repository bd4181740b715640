package cfn

import (
	"bytes"
	"encoding/json"
)

// Object is a string-keyed mapping that remembers the order in which its
// keys were first set. It is the building block of a rendered template
// document, where key order is significant to the reader even though
// CloudFormation itself ignores it.
//
// Setting a key that is already present replaces its value but leaves the
// key at its original position.
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{
		values: make(map[string]interface{}),
	}
}

// Set assigns a value to the given key.
func (o *Object) Set(key string, value interface{}) {
	if o.values == nil {
		o.values = make(map[string]interface{})
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for the given key and whether it was present.
func (o *Object) Get(key string) (interface{}, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys of the object in order. The caller may modify the
// returned slice.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	ret := make([]string, len(o.keys))
	copy(ret, o.keys)
	return ret
}

// Len returns the number of keys in the object.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON implements json.Marshaler, producing the keys in order.
//
// HTML-sensitive characters are not escaped, because user data scripts
// commonly contain "&&" and "<" and CloudFormation users expect to see
// them verbatim.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for i, key := range o.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSONValue(&buf, key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := encodeJSONValue(&buf, o.values[key]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSONValue(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode always terminates its output with a newline, which we don't
	// want in the middle of an object.
	buf.Truncate(buf.Len() - 1)
	return nil
}
