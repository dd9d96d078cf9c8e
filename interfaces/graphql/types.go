package graphql

import (
	graphqlgo "github.com/graph-gophers/graphql-go"

	"forum-api/application/queries"
	"forum-api/application/services"
	"forum-api/application/views"
	"forum-api/pkg/common"
)

type userResolver struct{ v views.UserView }

func (u *userResolver) ID() graphqlgo.ID { return graphqlgo.ID(u.v.ID) }
func (u *userResolver) FirstName() string { return u.v.FirstName }
func (u *userResolver) LastName() string { return u.v.LastName }
func (u *userResolver) Username() string { return u.v.Username }
func (u *userResolver) Email() string { return u.v.Email }
func (u *userResolver) CreatedAt() *string { return u.v.CreatedAt }

func usersOf(in []views.UserView) []*userResolver {
	out := make([]*userResolver, len(in))
	for i := range in {
		out[i] = &userResolver{v: in[i]}
	}
	return out
}

type authPayloadResolver struct{ p *services.AuthPayload }

func (a *authPayloadResolver) Token() string { return a.p.Token }
func (a *authPayloadResolver) ExpiresAt() string { return views.FormatTime(a.p.ExpiresAt) }
func (a *authPayloadResolver) User() *userResolver { return &userResolver{v: a.p.User} }

type courseResolver struct{ v views.CourseView }

func (c *courseResolver) ID() graphqlgo.ID { return graphqlgo.ID(c.v.ID) }
func (c *courseResolver) Title() string { return c.v.Title }
func (c *courseResolver) Slug() string { return c.v.Slug }
func (c *courseResolver) Description() string { return c.v.Description }
func (c *courseResolver) CreatedAt() string { return c.v.CreatedAt }
func (c *courseResolver) UpdatedAt() string { return c.v.UpdatedAt }

func (c *courseResolver) Topics() []graphqlgo.ID {
	out := make([]graphqlgo.ID, len(c.v.Topics))
	for i, id := range c.v.Topics {
		out[i] = graphqlgo.ID(id)
	}
	return out
}

// courseDetailResolver adds the slug lookup extras to a course
type courseDetailResolver struct {
	courseResolver
	d *views.CourseDetailView
}

func (c *courseDetailResolver) TopicCount() int32 { return int32(c.d.TopicCount) }

func (c *courseDetailResolver) LatestTopic() *topicResolver {
	if c.d.LatestTopic == nil {
		return nil
	}
	return &topicResolver{v: *c.d.LatestTopic}
}

type topicResolver struct{ v views.TopicView }

func (t *topicResolver) ID() graphqlgo.ID { return graphqlgo.ID(t.v.ID) }
func (t *topicResolver) Title() string { return t.v.Title }
func (t *topicResolver) Slug() string { return t.v.Slug }
func (t *topicResolver) Description() string { return t.v.Description }
func (t *topicResolver) Course() graphqlgo.ID { return graphqlgo.ID(t.v.Course) }
func (t *topicResolver) CreatedBy() *userResolver {
	return &userResolver{v: t.v.CreatedBy}
}
func (t *topicResolver) Comments() []*commentResolver { return commentsOf(t.v.Comments) }
func (t *topicResolver) CommentCount() int32 { return int32(t.v.CommentCount) }
func (t *topicResolver) LikesCount() int32 { return int32(t.v.LikesCount) }
func (t *topicResolver) ReplyCount() int32 { return int32(t.v.ReplyCount) }
func (t *topicResolver) Views() int32 { return int32(t.v.Views) }
func (t *topicResolver) CreatedAt() string { return t.v.CreatedAt }
func (t *topicResolver) UpdatedAt() string { return t.v.UpdatedAt }

type commentResolver struct{ v views.CommentView }

func (c *commentResolver) ID() graphqlgo.ID { return graphqlgo.ID(c.v.ID) }
func (c *commentResolver) Text() string { return c.v.Text }
func (c *commentResolver) Topic() graphqlgo.ID { return graphqlgo.ID(c.v.Topic) }
func (c *commentResolver) CreatedBy() *userResolver { return &userResolver{v: c.v.CreatedBy} }
func (c *commentResolver) Likes() []*userResolver { return usersOf(c.v.Likes) }
func (c *commentResolver) Replies() []*replyResolver { return repliesOf(c.v.Replies) }
func (c *commentResolver) LikesCount() int32 { return int32(c.v.LikesCount) }
func (c *commentResolver) ReplyCount() int32 { return int32(c.v.ReplyCount) }
func (c *commentResolver) CreatedAt() string { return c.v.CreatedAt }
func (c *commentResolver) UpdatedAt() string { return c.v.UpdatedAt }

func commentsOf(in []views.CommentView) []*commentResolver {
	out := make([]*commentResolver, len(in))
	for i := range in {
		out[i] = &commentResolver{v: in[i]}
	}
	return out
}

type replyResolver struct{ v views.ReplyView }

func (r *replyResolver) ID() graphqlgo.ID { return graphqlgo.ID(r.v.ID) }
func (r *replyResolver) Text() string { return r.v.Text }
func (r *replyResolver) Comment() graphqlgo.ID { return graphqlgo.ID(r.v.Comment) }
func (r *replyResolver) CreatedBy() *userResolver { return &userResolver{v: r.v.CreatedBy} }
func (r *replyResolver) Likes() []*userResolver { return usersOf(r.v.Likes) }
func (r *replyResolver) LikesCount() int32 { return int32(r.v.LikesCount) }
func (r *replyResolver) CreatedAt() string { return r.v.CreatedAt }
func (r *replyResolver) UpdatedAt() string { return r.v.UpdatedAt }

func repliesOf(in []views.ReplyView) []*replyResolver {
	out := make([]*replyResolver, len(in))
	for i := range in {
		out[i] = &replyResolver{v: in[i]}
	}
	return out
}

type pageInfoResolver struct{ p common.PageInfo }

func (p *pageInfoResolver) HasNextPage() bool { return p.p.HasNextPage }
func (p *pageInfoResolver) HasPreviousPage() bool { return p.p.HasPreviousPage }
func (p *pageInfoResolver) StartCursor() *string { return p.p.StartCursor }
func (p *pageInfoResolver) EndCursor() *string { return p.p.EndCursor }

type courseEdgeResolver struct{ e common.Edge[views.CourseView] }

func (e *courseEdgeResolver) Node() *courseResolver { return &courseResolver{v: e.e.Node} }
func (e *courseEdgeResolver) Cursor() string { return e.e.Cursor }

type courseConnectionResolver struct{ c *queries.CourseConnection }

func (c *courseConnectionResolver) Edges() []*courseEdgeResolver {
	out := make([]*courseEdgeResolver, len(c.c.Edges))
	for i := range c.c.Edges {
		out[i] = &courseEdgeResolver{e: c.c.Edges[i]}
	}
	return out
}
func (c *courseConnectionResolver) PageInfo() *pageInfoResolver { return &pageInfoResolver{p: c.c.PageInfo} }
func (c *courseConnectionResolver) TotalCount() int32 { return int32(c.c.TotalCount) }

type topicEdgeResolver struct{ e common.Edge[views.TopicView] }

func (e *topicEdgeResolver) Node() *topicResolver { return &topicResolver{v: e.e.Node} }
func (e *topicEdgeResolver) Cursor() string { return e.e.Cursor }

type topicConnectionResolver struct{ c *queries.TopicConnection }

func (c *topicConnectionResolver) Edges() []*topicEdgeResolver {
	out := make([]*topicEdgeResolver, len(c.c.Edges))
	for i := range c.c.Edges {
		out[i] = &topicEdgeResolver{e: c.c.Edges[i]}
	}
	return out
}
func (c *topicConnectionResolver) PageInfo() *pageInfoResolver { return &pageInfoResolver{p: c.c.PageInfo} }
func (c *topicConnectionResolver) TotalCount() int32 { return int32(c.c.TotalCount) }
