// Package abstractions holds the database-agnostic shapes shared by every
// document store implementation.
package abstractions

import (
	"math"
	"strconv"
	"time"
)

// Document is a single stored entity. References to other documents are kept
// as id strings until a population pass replaces them with Documents.
type Document map[string]any

// ID returns the document identifier or "" when absent.
func (d Document) ID() string {
	return d.String(FieldID)
}

// String returns the string value of key or "".
func (d Document) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// Time returns the time value of key. Stores that keep timestamps as text are
// accepted as long as the value parses as RFC 3339.
func (d Document) Time(key string) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	return AsTime(d[key])
}

// Int returns a non-negative integer for key. Absent, non-numeric, negative or
// non-finite values report false.
func (d Document) Int(key string) (int, bool) {
	if d == nil {
		return 0, false
	}
	return AsCount(d[key])
}

// List returns the slice stored under key, or nil.
func (d Document) List(key string) []any {
	if d == nil {
		return nil
	}
	return AsList(d[key])
}

// Clone returns a deep copy of the document. Nested documents and lists are
// copied; scalar values are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return Document(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// AsDocument converts v into a Document when it is one.
func AsDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, t != nil
	case map[string]any:
		return Document(t), t != nil
	}
	return nil, false
}

// AsList normalizes the list encodings produced by the different drivers.
func AsList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, doc := range t {
			out[i] = doc
		}
		return out
	}
	return nil
}

// AsTime converts a stored timestamp into a time.Time.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if t == "" {
			return time.Time{}, false
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// AsCount converts a numeric value into a non-negative int.
func AsCount(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// StringIDs returns the string references held in a reference list. Entries
// that are already populated documents contribute their id.
func StringIDs(v any) []string {
	list := AsList(v)
	ids := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			if t != "" {
				ids = append(ids, t)
			}
		default:
			if doc, ok := AsDocument(t); ok && doc.ID() != "" {
				ids = append(ids, doc.ID())
			}
		}
	}
	return ids
}
