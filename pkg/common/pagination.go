package common

import (
	"fmt"
	"net/http"
	"strconv"
)

// CursorParams are the relay-style pagination arguments. first/after page
// forward (towards older items), last/before page backward.
type CursorParams struct {
	First  *int    `json:"first,omitempty"`
	After  *string `json:"after,omitempty"`
	Last   *int    `json:"last,omitempty"`
	Before *string `json:"before,omitempty"`
}

// Forward reports whether the params describe a forward page. Forward wins
// when both directions are present; no params at all is a forward first page.
func (p CursorParams) Forward() bool {
	if p.First != nil || p.After != nil {
		return true
	}
	return p.Last == nil && p.Before == nil
}

// ExtractCursorParams extracts pagination parameters from the query string
func ExtractCursorParams(r *http.Request) (CursorParams, error) {
	q := r.URL.Query()
	var params CursorParams

	for name, dst := range map[string]**int{"first": &params.First, "last": &params.Last} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return CursorParams{}, fmt.Errorf("%s must be an integer", name)
		}
		*dst = &n
	}

	if after := q.Get("after"); after != "" {
		params.After = &after
	}
	if before := q.Get("before"); before != "" {
		params.Before = &before
	}
	return params, nil
}

// Connection is the edges + pageInfo + totalCount envelope of a paginated read
type Connection[T any] struct {
	Edges      []Edge[T] `json:"edges"`
	PageInfo   PageInfo  `json:"pageInfo"`
	TotalCount int       `json:"totalCount"`
}

// Edge pairs a node with the cursor that points at it
type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor"`
}

// PageInfo describes the position of a page in the full collection
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}
