package ports

import (
	"context"

	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// Lookup loads a document by id and names the entity in the not found error,
// e.g. "Comment not found".
func Lookup(ctx context.Context, store Store, collection, id string) (abstractions.Document, error) {
	doc, err := store.FindByID(ctx, collection, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError(abstractions.EntityName(collection))
		}
		return nil, err
	}
	return doc, nil
}
