// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payload wraps decoded analysis results with absence-safe access.
//
// A Value never panics: looking up a missing key, indexing past the end of a
// list or asking a string for a number yields the zero Value (or the zero
// scalar plus ok=false). Renderers chain lookups freely and decide at the
// leaf whether to show the value or a placeholder.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is an optional JSON value.
type Value struct {
	raw     any
	present bool
}

// Missing is the absent value.
var Missing = Value{}

// Of wraps an already-decoded JSON value (map[string]any, []any, string,
// float64, bool, json.Number or nil).
func Of(v any) Value {
	return Value{raw: v, present: true}
}

// ErrTrailingData is returned by Decode when anything but whitespace
// follows the JSON value.
var ErrTrailingData = errors.New("payload: trailing data after JSON value")

// Decode parses JSON bytes into a Value. Numbers keep full precision. The
// input must hold exactly one JSON value.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Missing, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Missing, ErrTrailingData
	}
	return Of(v), nil
}

// MustDecode is Decode for fixtures; it panics on invalid JSON.
func MustDecode(s string) Value {
	v, err := Decode([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("payload: invalid fixture: %v", err))
	}
	return v
}

// Exists reports whether the value was present, including explicit null.
func (v Value) Exists() bool { return v.present }

// IsNull reports an explicit JSON null.
func (v Value) IsNull() bool { return v.present && v.raw == nil }

// Has reports a present, non-null value.
func (v Value) Has() bool { return v.present && v.raw != nil }

// Raw returns the underlying decoded value.
func (v Value) Raw() any { return v.raw }

// IsMap reports whether v is a JSON object.
func (v Value) IsMap() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

// IsList reports whether v is a JSON array.
func (v Value) IsList() bool {
	_, ok := v.raw.([]any)
	return ok
}

// Get looks up key on an object.
func (v Value) Get(key string) Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Missing
	}
	child, ok := m[key]
	if !ok {
		return Missing
	}
	return Of(child)
}

// Path follows a sequence of object keys.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
		if !cur.present {
			return Missing
		}
	}
	return cur
}

// Index returns element i of a list.
func (v Value) Index(i int) Value {
	l, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(l) {
		return Missing
	}
	return Of(l[i])
}

// Len returns the number of elements of a list or object, else 0.
func (v Value) Len() int {
	switch t := v.raw.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		return 0
	}
}

// List returns the elements of a list in input order.
func (v Value) List() []Value {
	l, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(l))
	for i, e := range l {
		out[i] = Of(e)
	}
	return out
}

// Keys returns object keys in sorted order.
func (v Value) Keys() []string {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OrderedKeys returns the preferred keys that exist, in the given order,
// followed by the remaining keys sorted.
func (v Value) OrderedKeys(preferred ...string) []string {
	all := v.Keys()
	if len(all) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(preferred))
	out := make([]string, 0, len(all))
	for _, p := range preferred {
		if !seen[p] && v.Get(p).present {
			out = append(out, p)
			seen[p] = true
		}
	}
	for _, k := range all {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

// Str returns a JSON string value.
func (v Value) Str() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Text renders any scalar as display text. Objects and lists are rendered
// compactly; missing and null yield "".
func (v Value) Text() string {
	switch t := v.raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "是"
		}
		return "否"
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, Of(e).Text())
		}
		return strings.Join(parts, "、")
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, k := range v.Keys() {
			parts = append(parts, k+": "+Of(t[k]).Text())
		}
		return strings.Join(parts, "；")
	default:
		return fmt.Sprint(t)
	}
}

// TextOr returns Text, or fallback when the result is blank.
func (v Value) TextOr(fallback string) string {
	if s := strings.TrimSpace(v.Text()); s != "" {
		return s
	}
	return fallback
}

// Float returns a numeric value. Numeric strings are accepted since some
// service fields arrive quoted.
func (v Value) Float() (float64, bool) {
	var f float64
	switch t := v.raw.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOr returns Float or fallback.
func (v Value) FloatOr(fallback float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return fallback
}

// Bool returns a JSON boolean.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Strings returns the Text of each list element, skipping blanks.
func (v Value) Strings() []string {
	items := v.List()
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JSON re-encodes the value with indentation.
func (v Value) JSON() ([]byte, error) {
	return json.MarshalIndent(v.raw, "", "  ")
}

// MarshalJSON makes Value embeddable in exported documents.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// MarshalYAML emits plain YAML scalars instead of quoted json.Number strings.
func (v Value) MarshalYAML() (any, error) {
	return plain(v.raw), nil
}

func plain(x any) any {
	switch t := x.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	default:
		return t
	}
}
