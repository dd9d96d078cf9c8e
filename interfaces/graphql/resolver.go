// Package graphql serves the forum over GraphQL. Every field resolves through
// the same forum and account services as the REST API.
package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/application/views"
	"forum-api/interfaces/http/rest/handlers"
	"forum-api/pkg/common"
	"forum-api/pkg/utils"
)

// Resolver is the root resolver for queries and mutations
type Resolver struct {
	forum    handlers.Forum
	accounts handlers.Accounts
	logger   *zap.Logger
}

// NewResolver creates the root resolver
func NewResolver(forum handlers.Forum, accounts handlers.Accounts, logger *zap.Logger) *Resolver {
	return &Resolver{forum: forum, accounts: accounts, logger: logger}
}

type idArgs struct {
	ID graphqlgo.ID
}

type slugArgs struct {
	Slug string
}

type pageArgs struct {
	First  *int32
	After  *string
	Last   *int32
	Before *string
}

func (a pageArgs) params() common.CursorParams {
	p := common.CursorParams{After: a.After, Before: a.Before}
	if a.First != nil {
		n := int(*a.First)
		p.First = &n
	}
	if a.Last != nil {
		n := int(*a.Last)
		p.Last = &n
	}
	return p
}

// Queries

func (r *Resolver) GetAllUsers(ctx context.Context) ([]*userResolver, error) {
	users, err := r.forum.GetAllUsers(ctx)
	if err != nil {
		return nil, r.fail(err)
	}
	return usersOf(users), nil
}

func (r *Resolver) GetUserProfile(ctx context.Context, args idArgs) (*userResolver, error) {
	user, err := r.forum.GetUserProfile(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail(err)
	}
	return &userResolver{v: *user}, nil
}

func (r *Resolver) GetAllCourses(ctx context.Context, args pageArgs) (*courseConnectionResolver, error) {
	conn, err := r.forum.GetAllCourses(ctx, args.params())
	if err != nil {
		return nil, r.fail(err)
	}
	return &courseConnectionResolver{c: conn}, nil
}

func (r *Resolver) GetCourseByID(ctx context.Context, args idArgs) (*courseResolver, error) {
	course, err := r.forum.GetCourseByID(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail(err)
	}
	return &courseResolver{v: *course}, nil
}

func (r *Resolver) GetCourseBySlug(ctx context.Context, args slugArgs) (*courseDetailResolver, error) {
	course, err := r.forum.GetCourseBySlug(ctx, args.Slug)
	if err != nil {
		return nil, r.fail(err)
	}
	return &courseDetailResolver{courseResolver: courseResolver{v: course.CourseView}, d: course}, nil
}

func (r *Resolver) GetTopicsByCourse(ctx context.Context, args struct {
	CourseID graphqlgo.ID
	First    *int32
	After    *string
	Last     *int32
	Before   *string
}) (*topicConnectionResolver, error) {
	page := pageArgs{First: args.First, After: args.After, Last: args.Last, Before: args.Before}
	conn, err := r.forum.GetTopicsByCourse(ctx, string(args.CourseID), page.params())
	if err != nil {
		return nil, r.fail(err)
	}
	return &topicConnectionResolver{c: conn}, nil
}

func (r *Resolver) Topics(ctx context.Context) ([]*topicResolver, error) {
	topics, err := r.forum.ListTopics(ctx)
	if err != nil {
		return nil, r.fail(err)
	}
	out := make([]*topicResolver, len(topics))
	for i := range topics {
		out[i] = &topicResolver{v: topics[i]}
	}
	return out, nil
}

func (r *Resolver) GetTopicByID(ctx context.Context, args idArgs) (*topicResolver, error) {
	return r.topic(r.forum.GetTopicByID(ctx, string(args.ID)))
}

func (r *Resolver) GetTopicBySlug(ctx context.Context, args slugArgs) (*topicResolver, error) {
	return r.topic(r.forum.GetTopicBySlug(ctx, args.Slug))
}

func (r *Resolver) GetCommentsByTopic(ctx context.Context, args struct{ TopicID graphqlgo.ID }) ([]*commentResolver, error) {
	comments, err := r.forum.GetCommentsByTopic(ctx, string(args.TopicID))
	if err != nil {
		return nil, r.fail(err)
	}
	return commentsOf(comments), nil
}

func (r *Resolver) GetCommentByID(ctx context.Context, args idArgs) (*commentResolver, error) {
	return r.comment(r.forum.GetCommentByID(ctx, string(args.ID)))
}

func (r *Resolver) GetRepliesByComment(ctx context.Context, args struct{ CommentID graphqlgo.ID }) ([]*replyResolver, error) {
	replies, err := r.forum.GetRepliesByComment(ctx, string(args.CommentID))
	if err != nil {
		return nil, r.fail(err)
	}
	return repliesOf(replies), nil
}

func (r *Resolver) GetReplyByID(ctx context.Context, args idArgs) (*replyResolver, error) {
	return r.reply(r.forum.GetReplyByID(ctx, string(args.ID)))
}

// Mutations

type registerInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*authPayloadResolver, error) {
	in := services.RegisterInput(args.Input)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, r.fail(err)
	}
	payload, err := r.accounts.Register(ctx, in)
	if err != nil {
		return nil, r.fail(err)
	}
	return &authPayloadResolver{p: payload}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authPayloadResolver, error) {
	payload, err := r.accounts.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, r.fail(err)
	}
	return &authPayloadResolver{p: payload}, nil
}

func (r *Resolver) RequestPasswordReset(ctx context.Context, args struct{ Email string }) (*string, error) {
	msg, err := r.accounts.RequestPasswordReset(ctx, args.Email)
	if err != nil {
		return nil, r.fail(err)
	}
	return &msg, nil
}

func (r *Resolver) ResetPassword(ctx context.Context, args struct {
	Token       string
	NewPassword string
}) (*string, error) {
	msg, err := r.accounts.ResetPassword(ctx, args.Token, args.NewPassword)
	if err != nil {
		return nil, r.fail(err)
	}
	return &msg, nil
}

func (r *Resolver) CreateTopic(ctx context.Context, args struct {
	CourseID    graphqlgo.ID
	Title       string
	Description string
}) (*topicResolver, error) {
	return r.topic(r.forum.CreateTopic(ctx, string(args.CourseID), args.Title, args.Description))
}

func (r *Resolver) UpdateTopic(ctx context.Context, args struct {
	ID          graphqlgo.ID
	Title       *string
	Description *string
}) (*topicResolver, error) {
	return r.topic(r.forum.UpdateTopic(ctx, string(args.ID), args.Title, args.Description))
}

func (r *Resolver) IncrementTopicViews(ctx context.Context, args struct{ TopicID graphqlgo.ID }) (*topicResolver, error) {
	return r.topic(r.forum.IncrementTopicViews(ctx, string(args.TopicID)))
}

func (r *Resolver) CreateComment(ctx context.Context, args struct {
	TopicID graphqlgo.ID
	Text    string
}) (*commentResolver, error) {
	return r.comment(r.forum.CreateComment(ctx, string(args.TopicID), args.Text))
}

func (r *Resolver) LikeComment(ctx context.Context, args struct{ CommentID graphqlgo.ID }) (*commentResolver, error) {
	return r.comment(r.forum.LikeComment(ctx, string(args.CommentID)))
}

func (r *Resolver) UnlikeComment(ctx context.Context, args struct{ CommentID graphqlgo.ID }) (*commentResolver, error) {
	return r.comment(r.forum.UnlikeComment(ctx, string(args.CommentID)))
}

func (r *Resolver) CreateReply(ctx context.Context, args struct {
	CommentID graphqlgo.ID
	Text      string
}) (*replyResolver, error) {
	return r.reply(r.forum.CreateReply(ctx, string(args.CommentID), args.Text))
}

func (r *Resolver) LikeReply(ctx context.Context, args struct{ ReplyID graphqlgo.ID }) (*replyResolver, error) {
	return r.reply(r.forum.LikeReply(ctx, string(args.ReplyID)))
}

func (r *Resolver) UnlikeReply(ctx context.Context, args struct{ ReplyID graphqlgo.ID }) (*replyResolver, error) {
	return r.reply(r.forum.UnlikeReply(ctx, string(args.ReplyID)))
}

func (r *Resolver) topic(v *views.TopicView, err error) (*topicResolver, error) {
	if err != nil {
		return nil, r.fail(err)
	}
	return &topicResolver{v: *v}, nil
}

func (r *Resolver) comment(v *views.CommentView, err error) (*commentResolver, error) {
	if err != nil {
		return nil, r.fail(err)
	}
	return &commentResolver{v: *v}, nil
}

func (r *Resolver) reply(v *views.ReplyView, err error) (*replyResolver, error) {
	if err != nil {
		return nil, r.fail(err)
	}
	return &replyResolver{v: *v}, nil
}
