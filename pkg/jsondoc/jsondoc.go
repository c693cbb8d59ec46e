// Package jsondoc is a small mutable JSON tree used to edit entity documents
// and build generated JSON files without losing unknown content.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object. Values are the types encoding/json produces:
// map[string]any, []any, string, float64, bool and nil.
type Object map[string]any

// Parse decodes a JSON object.
func Parse(data []byte) (Object, error) {
	var obj Object
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("JSON document is not an object")
	}
	return obj, nil
}

// Marshal encodes the object with two-space indentation.
func (o Object) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Get follows path and returns the value found there.
func (o Object) Get(path ...string) (any, bool) {
	var cur any = o
	for _, key := range path {
		m, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Object returns the object at path, creating missing objects on the way.
// It fails when something that is not an object is in the way.
func (o Object) Object(path ...string) (Object, error) {
	cur := o
	for i, key := range path {
		v, ok := cur[key]
		if !ok || v == nil {
			next := Object{}
			cur[key] = next
			cur = next
			continue
		}
		m, ok := asObject(v)
		if !ok {
			return nil, fmt.Errorf("%v is %T, not an object", path[:i+1], v)
		}
		// Normalise so later writes land in the tree.
		cur[key] = m
		cur = m
	}
	return cur, nil
}

// Set stores value under key in the object at path.
func (o Object) Set(value any, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	parent, err := o.Object(path[:len(path)-1]...)
	if err != nil {
		return err
	}
	parent[path[len(path)-1]] = value
	return nil
}

// AppendIfAbsent appends value to the array at path unless an equal element
// is already there. A missing array is created. It reports whether value
// was added.
func (o Object) AppendIfAbsent(value any, path ...string) (bool, error) {
	if len(path) == 0 {
		return false, fmt.Errorf("empty path")
	}
	parent, err := o.Object(path[:len(path)-1]...)
	if err != nil {
		return false, err
	}
	key := path[len(path)-1]
	var arr []any
	switch v := parent[key].(type) {
	case nil:
	case []any:
		arr = v
	default:
		return false, fmt.Errorf("%v is %T, not an array", path, v)
	}
	for _, existing := range arr {
		if Equal(existing, value) {
			return false, nil
		}
	}
	parent[key] = append(arr, value)
	return true, nil
}

// Equal compares two JSON values structurally.
func Equal(a, b any) bool {
	ja, err := json.Marshal(normalize(a))
	if err != nil {
		return false
	}
	jb, err := json.Marshal(normalize(b))
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func normalize(v any) any {
	if m, ok := asObject(v); ok {
		return map[string]any(m)
	}
	return v
}

func asObject(v any) (Object, bool) {
	switch m := v.(type) {
	case Object:
		return m, true
	case map[string]any:
		return Object(m), true
	}
	return nil, false
}
