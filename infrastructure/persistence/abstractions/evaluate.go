package abstractions

import (
	"sort"
	"strings"
	"time"
)

// Matches evaluates criteria filters against a document in process. Stores
// without a native filter language for a given criteria use it.
func Matches(doc Document, c QueryCriteria) bool {
	if !matchAll(doc, c.Filters) {
		return false
	}
	if len(c.AnyOf) == 0 {
		return true
	}
	for _, group := range c.AnyOf {
		if matchAll(doc, group) {
			return true
		}
	}
	return false
}

func matchAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matchFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchFilter(doc Document, f Filter) bool {
	value, present := doc[f.Field]

	switch f.Operator {
	case OpEqual:
		return present && Compare(value, f.Value) == 0
	case OpNotEqual:
		return !present || Compare(value, f.Value) != 0
	case OpGreaterThan:
		return present && comparable(value, f.Value) && Compare(value, f.Value) > 0
	case OpGreaterThanOrEqual:
		return present && comparable(value, f.Value) && Compare(value, f.Value) >= 0
	case OpLessThan:
		return present && comparable(value, f.Value) && Compare(value, f.Value) < 0
	case OpLessThanOrEqual:
		return present && comparable(value, f.Value) && Compare(value, f.Value) <= 0
	case OpIn:
		return present && inSet(value, f.Value)
	case OpNotIn:
		return !present || !inSet(value, f.Value)
	case OpContains:
		for _, item := range AsList(value) {
			if Compare(item, f.Value) == 0 {
				return true
			}
		}
		return false
	case OpStartsWith:
		s, ok := value.(string)
		prefix, ok2 := f.Value.(string)
		return ok && ok2 && strings.HasPrefix(s, prefix)
	}
	return false
}

func inSet(value any, set any) bool {
	for _, candidate := range AsList(set) {
		if Compare(value, candidate) == 0 {
			return true
		}
	}
	return false
}

func comparable(a, b any) bool {
	return kindOf(a) == kindOf(b) && kindOf(a) != kindOther
}

type valueKind int

const (
	kindNil valueKind = iota
	kindNumber
	kindTime
	kindString
	kindBool
	kindOther
)

func kindOf(v any) valueKind {
	switch v.(type) {
	case nil:
		return kindNil
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return kindNumber
	case time.Time:
		return kindTime
	case string:
		return kindString
	case bool:
		return kindBool
	}
	return kindOther
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// Compare orders two stored values. Values of different kinds order by kind,
// so nil sorts before numbers, times, strings and booleans.
func Compare(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch ka {
	case kindNil:
		return 0
	case kindNumber:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		return strings.Compare(a.(string), b.(string))
	case kindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}
	return 0
}

// SortDocuments sorts docs in place by the given options.
func SortDocuments(docs []Document, options []SortOption) {
	if len(options) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, opt := range options {
			c := Compare(docs[i][opt.Field], docs[j][opt.Field])
			if c == 0 {
				continue
			}
			if opt.Order == SortDescending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Project keeps only the requested fields (plus the id).
func Project(doc Document, fields []string) Document {
	if len(fields) == 0 {
		return doc
	}
	out := Document{FieldID: doc[FieldID]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Window orders already matched documents and applies the limit and the
// projection of c. Without an explicit sort the oldest document comes first.
func Window(docs []Document, c QueryCriteria) []Document {
	sortOptions := c.Sort
	if len(sortOptions) == 0 {
		sortOptions = Oldest()
	}
	SortDocuments(docs, sortOptions)

	if c.Limit > 0 && len(docs) > c.Limit {
		docs = docs[:c.Limit]
	}
	for i, doc := range docs {
		docs[i] = Project(doc, c.Fields)
	}
	return docs
}
