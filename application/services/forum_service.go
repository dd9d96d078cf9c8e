package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"forum-api/application/commands"
	cmdbus "forum-api/application/commands/bus"
	"forum-api/application/ports"
	"forum-api/application/queries"
	querybus "forum-api/application/queries/bus"
	"forum-api/application/views"
	"forum-api/pkg/common"
)

// ForumService is the entry point used by the transports. Writes go through
// the command bus, and every write answers with the fresh read model from the
// query bus.
type ForumService struct {
	commands *cmdbus.CommandBus
	queries  *querybus.QueryBus
	cache    ports.Cache
	logger   *zap.Logger
}

// NewForumService creates a forum service. cache may be nil; when set it is
// cleared after every write so cached pages never outlive the data they show.
func NewForumService(commandBus *cmdbus.CommandBus, queryBus *querybus.QueryBus, cache ports.Cache, logger *zap.Logger) *ForumService {
	return &ForumService{
		commands: commandBus,
		queries:  queryBus,
		cache:    cache,
		logger:   logger,
	}
}

// ask runs a query and asserts the result type
func ask[T any](ctx context.Context, bus *querybus.QueryBus, q querybus.Query) (T, error) {
	var zero T
	result, err := bus.Ask(ctx, q)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result %T for %T", result, q)
	}
	return typed, nil
}

func (s *ForumService) send(ctx context.Context, cmd cmdbus.Command) error {
	if err := s.commands.Send(ctx, cmd); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Warn("Failed to clear query cache", zap.Error(err))
		}
	}
	return nil
}

func caller(ctx context.Context) string {
	userID, _ := common.GetUserID(ctx)
	return userID
}

// GetAllUsers lists every user, newest first
func (s *ForumService) GetAllUsers(ctx context.Context) ([]views.UserView, error) {
	return ask[[]views.UserView](ctx, s.queries, queries.GetAllUsersQuery{})
}

// GetUserProfile returns a single user
func (s *ForumService) GetUserProfile(ctx context.Context, userID string) (*views.UserView, error) {
	return ask[*views.UserView](ctx, s.queries, queries.GetUserProfileQuery{UserID: userID})
}

// GetAllCourses pages through the courses
func (s *ForumService) GetAllCourses(ctx context.Context, page common.CursorParams) (*queries.CourseConnection, error) {
	return ask[*queries.CourseConnection](ctx, s.queries, queries.GetAllCoursesQuery{Page: page})
}

// GetCourseByID returns a course
func (s *ForumService) GetCourseByID(ctx context.Context, courseID string) (*views.CourseView, error) {
	return ask[*views.CourseView](ctx, s.queries, queries.GetCourseByIDQuery{CourseID: courseID})
}

// GetCourseBySlug returns a course with its topic count and newest topic
func (s *ForumService) GetCourseBySlug(ctx context.Context, slug string) (*views.CourseDetailView, error) {
	return ask[*views.CourseDetailView](ctx, s.queries, queries.GetCourseBySlugQuery{Slug: slug})
}

// GetTopicsByCourse pages through the topics of a course
func (s *ForumService) GetTopicsByCourse(ctx context.Context, courseID string, page common.CursorParams) (*queries.TopicConnection, error) {
	return ask[*queries.TopicConnection](ctx, s.queries, queries.GetTopicsByCourseQuery{CourseID: courseID, Page: page})
}

// GetTopicByID returns a populated topic
func (s *ForumService) GetTopicByID(ctx context.Context, topicID string) (*views.TopicView, error) {
	return ask[*views.TopicView](ctx, s.queries, queries.GetTopicByIDQuery{TopicID: topicID})
}

// GetTopicBySlug returns a populated topic
func (s *ForumService) GetTopicBySlug(ctx context.Context, slug string) (*views.TopicView, error) {
	return ask[*views.TopicView](ctx, s.queries, queries.GetTopicBySlugQuery{Slug: slug})
}

// ListTopics returns every topic, newest first
func (s *ForumService) ListTopics(ctx context.Context) ([]views.TopicView, error) {
	return ask[[]views.TopicView](ctx, s.queries, queries.ListTopicsQuery{})
}

// GetCommentsByTopic returns the comments of a topic, oldest first
func (s *ForumService) GetCommentsByTopic(ctx context.Context, topicID string) ([]views.CommentView, error) {
	return ask[[]views.CommentView](ctx, s.queries, queries.GetCommentsByTopicQuery{TopicID: topicID})
}

// GetCommentByID returns a populated comment
func (s *ForumService) GetCommentByID(ctx context.Context, commentID string) (*views.CommentView, error) {
	return ask[*views.CommentView](ctx, s.queries, queries.GetCommentByIDQuery{CommentID: commentID})
}

// GetRepliesByComment returns the replies to a comment, oldest first
func (s *ForumService) GetRepliesByComment(ctx context.Context, commentID string) ([]views.ReplyView, error) {
	return ask[[]views.ReplyView](ctx, s.queries, queries.GetRepliesByCommentQuery{CommentID: commentID})
}

// GetReplyByID returns a populated reply
func (s *ForumService) GetReplyByID(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return ask[*views.ReplyView](ctx, s.queries, queries.GetReplyByIDQuery{ReplyID: replyID})
}

// CreateTopic posts a topic to a course as the caller
func (s *ForumService) CreateTopic(ctx context.Context, courseID, title, description string) (*views.TopicView, error) {
	cmd := commands.CreateTopicCommand{
		TopicID:     uuid.New().String(),
		CourseID:    courseID,
		UserID:      caller(ctx),
		Title:       title,
		Description: description,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetTopicByID(ctx, cmd.TopicID)
}

// UpdateTopic changes the title and/or description of the caller's topic
func (s *ForumService) UpdateTopic(ctx context.Context, topicID string, title, description *string) (*views.TopicView, error) {
	cmd := commands.UpdateTopicCommand{
		TopicID:     topicID,
		UserID:      caller(ctx),
		Title:       title,
		Description: description,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetTopicByID(ctx, topicID)
}

// IncrementTopicViews records a view. It does not need a caller.
func (s *ForumService) IncrementTopicViews(ctx context.Context, topicID string) (*views.TopicView, error) {
	if err := s.send(ctx, commands.IncrementTopicViewsCommand{TopicID: topicID}); err != nil {
		return nil, err
	}
	return s.GetTopicByID(ctx, topicID)
}

// CreateComment comments on a topic as the caller
func (s *ForumService) CreateComment(ctx context.Context, topicID, text string) (*views.CommentView, error) {
	cmd := commands.CreateCommentCommand{
		CommentID: uuid.New().String(),
		TopicID:   topicID,
		UserID:    caller(ctx),
		Text:      text,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetCommentByID(ctx, cmd.CommentID)
}

// CreateReply replies to a comment as the caller
func (s *ForumService) CreateReply(ctx context.Context, commentID, text string) (*views.ReplyView, error) {
	cmd := commands.CreateReplyCommand{
		ReplyID:   uuid.New().String(),
		CommentID: commentID,
		UserID:    caller(ctx),
		Text:      text,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetReplyByID(ctx, cmd.ReplyID)
}

// LikeComment adds the caller to the likers of a comment
func (s *ForumService) LikeComment(ctx context.Context, commentID string) (*views.CommentView, error) {
	return s.setCommentLike(ctx, commentID, true)
}

// UnlikeComment removes the caller from the likers of a comment
func (s *ForumService) UnlikeComment(ctx context.Context, commentID string) (*views.CommentView, error) {
	return s.setCommentLike(ctx, commentID, false)
}

// LikeReply adds the caller to the likers of a reply
func (s *ForumService) LikeReply(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return s.setReplyLike(ctx, replyID, true)
}

// UnlikeReply removes the caller from the likers of a reply
func (s *ForumService) UnlikeReply(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return s.setReplyLike(ctx, replyID, false)
}

func (s *ForumService) setCommentLike(ctx context.Context, commentID string, liked bool) (*views.CommentView, error) {
	cmd := commands.SetLikeCommand{
		Target:   commands.LikeTargetComment,
		TargetID: commentID,
		UserID:   caller(ctx),
		Liked:    liked,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetCommentByID(ctx, commentID)
}

func (s *ForumService) setReplyLike(ctx context.Context, replyID string, liked bool) (*views.ReplyView, error) {
	cmd := commands.SetLikeCommand{
		Target:   commands.LikeTargetReply,
		TargetID: replyID,
		UserID:   caller(ctx),
		Liked:    liked,
	}
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.GetReplyByID(ctx, replyID)
}
