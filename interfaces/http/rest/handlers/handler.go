package handlers

import (
	"context"
	"errors"
	"net/http"

	"forum-api/application/queries"
	"forum-api/application/services"
	"forum-api/application/views"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
	"forum-api/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Forum is the part of services.ForumService the REST API exposes
type Forum interface {
	GetAllUsers(ctx context.Context) ([]views.UserView, error)
	GetUserProfile(ctx context.Context, userID string) (*views.UserView, error)

	GetAllCourses(ctx context.Context, page common.CursorParams) (*queries.CourseConnection, error)
	GetCourseByID(ctx context.Context, courseID string) (*views.CourseView, error)
	GetCourseBySlug(ctx context.Context, slug string) (*views.CourseDetailView, error)
	GetTopicsByCourse(ctx context.Context, courseID string, page common.CursorParams) (*queries.TopicConnection, error)

	ListTopics(ctx context.Context) ([]views.TopicView, error)
	GetTopicByID(ctx context.Context, topicID string) (*views.TopicView, error)
	GetTopicBySlug(ctx context.Context, slug string) (*views.TopicView, error)
	CreateTopic(ctx context.Context, courseID, title, description string) (*views.TopicView, error)
	UpdateTopic(ctx context.Context, topicID string, title, description *string) (*views.TopicView, error)
	IncrementTopicViews(ctx context.Context, topicID string) (*views.TopicView, error)

	GetCommentsByTopic(ctx context.Context, topicID string) ([]views.CommentView, error)
	GetCommentByID(ctx context.Context, commentID string) (*views.CommentView, error)
	CreateComment(ctx context.Context, topicID, text string) (*views.CommentView, error)
	LikeComment(ctx context.Context, commentID string) (*views.CommentView, error)
	UnlikeComment(ctx context.Context, commentID string) (*views.CommentView, error)

	GetRepliesByComment(ctx context.Context, commentID string) ([]views.ReplyView, error)
	GetReplyByID(ctx context.Context, replyID string) (*views.ReplyView, error)
	CreateReply(ctx context.Context, commentID, text string) (*views.ReplyView, error)
	LikeReply(ctx context.Context, replyID string) (*views.ReplyView, error)
	UnlikeReply(ctx context.Context, replyID string) (*views.ReplyView, error)
}

// Accounts is the part of services.AuthService the REST API exposes
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthPayload, error)
	Login(ctx context.Context, email, password string) (*services.AuthPayload, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

var (
	_ Forum    = (*services.ForumService)(nil)
	_ Accounts = (*services.AuthService)(nil)
)

// decode reads a JSON body into v and validates its struct tags
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("Request body is too large")
		}
		return pkgerrors.NewValidationError("Invalid request body").WithCause(err)
	}
	return utils.ValidateStruct(v)
}

// respond writes result, or the error through the error handler
func respond(w http.ResponseWriter, r *http.Request, errs *pkgerrors.ErrorHandler, status int, result interface{}, err error) {
	if err != nil {
		errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}
