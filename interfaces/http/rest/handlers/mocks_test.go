package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"forum-api/application/queries"
	"forum-api/application/services"
	"forum-api/application/views"
	"forum-api/pkg/common"
)

type mockForum struct {
	mock.Mock
}

func userOr(args mock.Arguments) (*views.UserView, error) {
	v, _ := args.Get(0).(*views.UserView)
	return v, args.Error(1)
}

func topicOr(args mock.Arguments) (*views.TopicView, error) {
	v, _ := args.Get(0).(*views.TopicView)
	return v, args.Error(1)
}

func commentOr(args mock.Arguments) (*views.CommentView, error) {
	v, _ := args.Get(0).(*views.CommentView)
	return v, args.Error(1)
}

func replyOr(args mock.Arguments) (*views.ReplyView, error) {
	v, _ := args.Get(0).(*views.ReplyView)
	return v, args.Error(1)
}

func (m *mockForum) GetAllUsers(ctx context.Context) ([]views.UserView, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]views.UserView)
	return v, args.Error(1)
}

func (m *mockForum) GetUserProfile(ctx context.Context, userID string) (*views.UserView, error) {
	return userOr(m.Called(ctx, userID))
}

func (m *mockForum) GetAllCourses(ctx context.Context, page common.CursorParams) (*queries.CourseConnection, error) {
	args := m.Called(ctx, page)
	v, _ := args.Get(0).(*queries.CourseConnection)
	return v, args.Error(1)
}

func (m *mockForum) GetCourseByID(ctx context.Context, courseID string) (*views.CourseView, error) {
	args := m.Called(ctx, courseID)
	v, _ := args.Get(0).(*views.CourseView)
	return v, args.Error(1)
}

func (m *mockForum) GetCourseBySlug(ctx context.Context, slug string) (*views.CourseDetailView, error) {
	args := m.Called(ctx, slug)
	v, _ := args.Get(0).(*views.CourseDetailView)
	return v, args.Error(1)
}

func (m *mockForum) GetTopicsByCourse(ctx context.Context, courseID string, page common.CursorParams) (*queries.TopicConnection, error) {
	args := m.Called(ctx, courseID, page)
	v, _ := args.Get(0).(*queries.TopicConnection)
	return v, args.Error(1)
}

func (m *mockForum) ListTopics(ctx context.Context) ([]views.TopicView, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]views.TopicView)
	return v, args.Error(1)
}

func (m *mockForum) GetTopicByID(ctx context.Context, topicID string) (*views.TopicView, error) {
	return topicOr(m.Called(ctx, topicID))
}

func (m *mockForum) GetTopicBySlug(ctx context.Context, slug string) (*views.TopicView, error) {
	return topicOr(m.Called(ctx, slug))
}

func (m *mockForum) CreateTopic(ctx context.Context, courseID, title, description string) (*views.TopicView, error) {
	return topicOr(m.Called(ctx, courseID, title, description))
}

func (m *mockForum) UpdateTopic(ctx context.Context, topicID string, title, description *string) (*views.TopicView, error) {
	return topicOr(m.Called(ctx, topicID, title, description))
}

func (m *mockForum) IncrementTopicViews(ctx context.Context, topicID string) (*views.TopicView, error) {
	return topicOr(m.Called(ctx, topicID))
}

func (m *mockForum) GetCommentsByTopic(ctx context.Context, topicID string) ([]views.CommentView, error) {
	args := m.Called(ctx, topicID)
	v, _ := args.Get(0).([]views.CommentView)
	return v, args.Error(1)
}

func (m *mockForum) GetCommentByID(ctx context.Context, commentID string) (*views.CommentView, error) {
	return commentOr(m.Called(ctx, commentID))
}

func (m *mockForum) CreateComment(ctx context.Context, topicID, text string) (*views.CommentView, error) {
	return commentOr(m.Called(ctx, topicID, text))
}

func (m *mockForum) LikeComment(ctx context.Context, commentID string) (*views.CommentView, error) {
	return commentOr(m.Called(ctx, commentID))
}

func (m *mockForum) UnlikeComment(ctx context.Context, commentID string) (*views.CommentView, error) {
	return commentOr(m.Called(ctx, commentID))
}

func (m *mockForum) GetRepliesByComment(ctx context.Context, commentID string) ([]views.ReplyView, error) {
	args := m.Called(ctx, commentID)
	v, _ := args.Get(0).([]views.ReplyView)
	return v, args.Error(1)
}

func (m *mockForum) GetReplyByID(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return replyOr(m.Called(ctx, replyID))
}

func (m *mockForum) CreateReply(ctx context.Context, commentID, text string) (*views.ReplyView, error) {
	return replyOr(m.Called(ctx, commentID, text))
}

func (m *mockForum) LikeReply(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return replyOr(m.Called(ctx, replyID))
}

func (m *mockForum) UnlikeReply(ctx context.Context, replyID string) (*views.ReplyView, error) {
	return replyOr(m.Called(ctx, replyID))
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Register(ctx context.Context, in services.RegisterInput) (*services.AuthPayload, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*services.AuthPayload)
	return v, args.Error(1)
}

func (m *mockAccounts) Login(ctx context.Context, email, password string) (*services.AuthPayload, error) {
	args := m.Called(ctx, email, password)
	v, _ := args.Get(0).(*services.AuthPayload)
	return v, args.Error(1)
}

func (m *mockAccounts) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAccounts) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	args := m.Called(ctx, token, newPassword)
	return args.String(0), args.Error(1)
}
