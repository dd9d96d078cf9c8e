package handlers

import (
	"context"

	"forum-api/application/population"
	"forum-api/application/ports"
	"forum-api/application/queries"
	"forum-api/application/views"
	"forum-api/infrastructure/persistence/abstractions"
)

// GetCommentsByTopicHandler lists the comments of a topic, oldest first
type GetCommentsByTopicHandler struct {
	*Reader
}

// NewGetCommentsByTopicHandler creates a new handler instance
func NewGetCommentsByTopicHandler(reader *Reader) *GetCommentsByTopicHandler {
	return &GetCommentsByTopicHandler{Reader: reader}
}

// Handle executes the get comments by topic query
func (h *GetCommentsByTopicHandler) Handle(ctx context.Context, q queries.GetCommentsByTopicQuery) ([]views.CommentView, error) {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionTopics, q.TopicID); err != nil {
		return nil, err
	}
	docs, err := h.list(ctx, abstractions.CollectionComments, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldTopic, q.TopicID)},
		Sort:    abstractions.Oldest(),
	}, population.CommentPlan())
	if err != nil {
		return nil, err
	}
	return h.views.Comments(docs), nil
}

// GetCommentByIDHandler loads a populated comment
type GetCommentByIDHandler struct {
	*Reader
}

// NewGetCommentByIDHandler creates a new handler instance
func NewGetCommentByIDHandler(reader *Reader) *GetCommentByIDHandler {
	return &GetCommentByIDHandler{Reader: reader}
}

// Handle executes the get comment by id query
func (h *GetCommentByIDHandler) Handle(ctx context.Context, q queries.GetCommentByIDQuery) (*views.CommentView, error) {
	doc, err := h.byID(ctx, abstractions.CollectionComments, q.CommentID, population.CommentPlan())
	if err != nil {
		return nil, err
	}
	comment := h.views.Comment(doc)
	return &comment, nil
}

// GetRepliesByCommentHandler lists the replies to a comment, oldest first
type GetRepliesByCommentHandler struct {
	*Reader
}

// NewGetRepliesByCommentHandler creates a new handler instance
func NewGetRepliesByCommentHandler(reader *Reader) *GetRepliesByCommentHandler {
	return &GetRepliesByCommentHandler{Reader: reader}
}

// Handle executes the get replies by comment query
func (h *GetRepliesByCommentHandler) Handle(ctx context.Context, q queries.GetRepliesByCommentQuery) ([]views.ReplyView, error) {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionComments, q.CommentID); err != nil {
		return nil, err
	}
	docs, err := h.list(ctx, abstractions.CollectionReplies, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldComment, q.CommentID)},
		Sort:    abstractions.Oldest(),
	}, population.ReplyPlan())
	if err != nil {
		return nil, err
	}
	return h.views.Replies(docs), nil
}

// GetReplyByIDHandler loads a populated reply
type GetReplyByIDHandler struct {
	*Reader
}

// NewGetReplyByIDHandler creates a new handler instance
func NewGetReplyByIDHandler(reader *Reader) *GetReplyByIDHandler {
	return &GetReplyByIDHandler{Reader: reader}
}

// Handle executes the get reply by id query
func (h *GetReplyByIDHandler) Handle(ctx context.Context, q queries.GetReplyByIDQuery) (*views.ReplyView, error) {
	doc, err := h.byID(ctx, abstractions.CollectionReplies, q.ReplyID, population.ReplyPlan())
	if err != nil {
		return nil, err
	}
	reply := h.views.Reply(doc)
	return &reply, nil
}
