package graphql

import (
	_ "embed"
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"

	"forum-api/interfaces/http/rest/handlers"
)

//go:embed schema.graphql
var sdl string

// maxDepth covers topic -> comments -> replies -> likes with room to spare
const maxDepth = 12

// NewSchema parses the forum schema against the root resolver
func NewSchema(forum handlers.Forum, accounts handlers.Accounts, logger *zap.Logger) (*graphqlgo.Schema, error) {
	return graphqlgo.ParseSchema(sdl, NewResolver(forum, accounts, logger),
		graphqlgo.MaxDepth(maxDepth),
		graphqlgo.MaxParallelism(10),
	)
}

// NewHandler serves the schema over HTTP. Callers reach it through the same
// authentication middleware as the REST API.
func NewHandler(forum handlers.Forum, accounts handlers.Accounts, logger *zap.Logger) (http.Handler, error) {
	schema, err := NewSchema(forum, accounts, logger)
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}
