package handlers

import (
	"context"

	"forum-api/application/queries"
	"forum-api/application/views"
	"forum-api/infrastructure/persistence/abstractions"
)

// GetAllUsersHandler lists users newest first
type GetAllUsersHandler struct {
	*Reader
}

// NewGetAllUsersHandler creates a new handler instance
func NewGetAllUsersHandler(reader *Reader) *GetAllUsersHandler {
	return &GetAllUsersHandler{Reader: reader}
}

// Handle executes the get all users query
func (h *GetAllUsersHandler) Handle(ctx context.Context, _ queries.GetAllUsersQuery) ([]views.UserView, error) {
	docs, err := h.list(ctx, abstractions.CollectionUsers, abstractions.QueryCriteria{Sort: abstractions.Newest()}, nil)
	if err != nil {
		return nil, err
	}
	return h.views.Users(docs), nil
}

// GetUserProfileHandler loads one user
type GetUserProfileHandler struct {
	*Reader
}

// NewGetUserProfileHandler creates a new handler instance
func NewGetUserProfileHandler(reader *Reader) *GetUserProfileHandler {
	return &GetUserProfileHandler{Reader: reader}
}

// Handle executes the get user profile query
func (h *GetUserProfileHandler) Handle(ctx context.Context, q queries.GetUserProfileQuery) (*views.UserView, error) {
	doc, err := h.byID(ctx, abstractions.CollectionUsers, q.UserID, nil)
	if err != nil {
		return nil, err
	}
	user := h.views.User(doc)
	return &user, nil
}
