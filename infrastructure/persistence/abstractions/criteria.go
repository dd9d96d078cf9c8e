package abstractions

// QueryCriteria represents database-agnostic query parameters
type QueryCriteria struct {
	// Filters are combined with AND.
	Filters []Filter

	// AnyOf, when set, additionally requires a document to match at least one
	// of the conjunctions.
	AnyOf [][]Filter

	Sort []SortOption

	// Limit of 0 means no limit.
	Limit int

	// Fields restricts the returned attributes. The id is always returned.
	Fields []string
}

// Filter represents a query filter condition
type Filter struct {
	Field    string
	Operator FilterOperator
	Value    interface{}
}

// FilterOperator defines the type of comparison
type FilterOperator string

const (
	OpEqual              FilterOperator = "eq"
	OpNotEqual           FilterOperator = "ne"
	OpGreaterThan        FilterOperator = "gt"
	OpGreaterThanOrEqual FilterOperator = "gte"
	OpLessThan           FilterOperator = "lt"
	OpLessThanOrEqual    FilterOperator = "lte"
	OpIn                 FilterOperator = "in"
	OpNotIn              FilterOperator = "nin"
	// OpContains matches list attributes holding Value.
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "starts_with"
)

// SortOption defines sorting parameters
type SortOption struct {
	Field string
	Order SortOrder
}

// SortOrder defines the sorting direction
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Reverse returns the opposite direction.
func (o SortOrder) Reverse() SortOrder {
	if o == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Operator: OpEqual, Value: value}
}

// In builds a set-membership filter.
func In(field string, values []string) Filter {
	return Filter{Field: field, Operator: OpIn, Value: values}
}

// IDsIn builds the filter used for batched id lookups.
func IDsIn(ids []string) QueryCriteria {
	return QueryCriteria{Filters: []Filter{In(FieldID, ids)}}
}

// ByID returns the id-only criteria used for existence checks.
func ByID(id string) QueryCriteria {
	return QueryCriteria{Filters: []Filter{Eq(FieldID, id)}, Limit: 1}
}

// Newest sorts by creation time descending with the id as tie-breaker.
func Newest() []SortOption {
	return []SortOption{{Field: FieldCreatedAt, Order: SortDescending}, {Field: FieldID, Order: SortDescending}}
}

// Oldest sorts by creation time ascending with the id as tie-breaker.
func Oldest() []SortOption {
	return []SortOption{{Field: FieldCreatedAt, Order: SortAscending}, {Field: FieldID, Order: SortAscending}}
}

// IsIDBatch reports whether the criteria is a plain "id IN (...)" lookup and
// returns the ids when it is.
func (c QueryCriteria) IsIDBatch() ([]string, bool) {
	if len(c.Filters) != 1 || len(c.AnyOf) != 0 || len(c.Sort) != 0 || c.Limit != 0 {
		return nil, false
	}
	f := c.Filters[0]
	if f.Field != FieldID || f.Operator != OpIn {
		return nil, false
	}
	ids, ok := f.Value.([]string)
	return ids, ok
}
