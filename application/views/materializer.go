package views

import (
	"fmt"
	"time"

	"forum-api/application/aggregation"
	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
)

// Materializer converts populated documents into views. It never fails on a
// missing reference: authors and likers fall back to the placeholder user,
// missing comments and replies are dropped.
type Materializer struct {
	now ports.Clock
}

// NewMaterializer creates a materializer. A nil clock uses time.Now.
func NewMaterializer(now ports.Clock) *Materializer {
	if now == nil {
		now = time.Now
	}
	return &Materializer{now: now}
}

// Materialize dispatches on kind and returns the matching view value.
func (m *Materializer) Materialize(kind Kind, doc abstractions.Document) (interface{}, error) {
	switch kind {
	case KindUser:
		return m.User(doc), nil
	case KindCourse:
		return m.Course(doc), nil
	case KindTopic:
		return m.Topic(doc), nil
	case KindComment:
		return m.Comment(doc), nil
	case KindReply:
		return m.Reply(doc), nil
	}
	return nil, fmt.Errorf("unknown view kind %q", kind)
}

// User renders a user document. Passwords and reset tokens are never copied.
func (m *Materializer) User(doc abstractions.Document) UserView {
	if doc == nil || doc.ID() == "" {
		return PlaceholderUser()
	}
	return UserView{
		ID:        doc.ID(),
		FirstName: doc.String(abstractions.FieldFirstName),
		LastName:  doc.String(abstractions.FieldLastName),
		Username:  doc.String(abstractions.FieldUsername),
		Email:     doc.String(abstractions.FieldEmail),
		CreatedAt: m.nullableTime(doc, abstractions.FieldCreatedAt),
	}
}

// Users renders a list of users
func (m *Materializer) Users(docs []abstractions.Document) []UserView {
	out := make([]UserView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, m.User(doc))
	}
	return out
}

// Course renders a course
func (m *Materializer) Course(doc abstractions.Document) CourseView {
	return CourseView{
		ID:          doc.ID(),
		Title:       doc.String(abstractions.FieldTitle),
		Slug:        doc.String(abstractions.FieldSlug),
		Description: doc.String(abstractions.FieldDescription),
		Topics:      abstractions.StringIDs(doc[abstractions.FieldTopics]),
		CreatedAt:   m.time(doc, abstractions.FieldCreatedAt),
		UpdatedAt:   m.time(doc, abstractions.FieldUpdatedAt),
	}
}

// Topic renders a populated topic with its derived counts
func (m *Materializer) Topic(doc abstractions.Document) TopicView {
	counts := aggregation.Topic(doc)
	comments := m.comments(doc.List(abstractions.FieldComments))

	return TopicView{
		ID:           doc.ID(),
		Title:        doc.String(abstractions.FieldTitle),
		Slug:         doc.String(abstractions.FieldSlug),
		Description:  doc.String(abstractions.FieldDescription),
		Course:       refID(doc[abstractions.FieldCourse]),
		CreatedBy:    m.author(doc[abstractions.FieldCreatedBy]),
		Comments:     comments,
		CommentCount: counts.CommentCount,
		LikesCount:   counts.LikesCount,
		ReplyCount:   counts.ReplyCount,
		Views:        counts.Views,
		CreatedAt:    m.time(doc, abstractions.FieldCreatedAt),
		UpdatedAt:    m.time(doc, abstractions.FieldUpdatedAt),
	}
}

// Topics renders a list of topics
func (m *Materializer) Topics(docs []abstractions.Document) []TopicView {
	out := make([]TopicView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, m.Topic(doc))
	}
	return out
}

// Comment renders a populated comment
func (m *Materializer) Comment(doc abstractions.Document) CommentView {
	counts := aggregation.Comment(doc)
	return CommentView{
		ID:         doc.ID(),
		Text:       doc.String(abstractions.FieldText),
		Topic:      refID(doc[abstractions.FieldTopic]),
		CreatedBy:  m.author(doc[abstractions.FieldCreatedBy]),
		Likes:      m.likes(doc.List(abstractions.FieldLikes)),
		Replies:    m.replies(doc.List(abstractions.FieldReplies)),
		LikesCount: counts.LikesCount,
		ReplyCount: counts.ReplyCount,
		CreatedAt:  m.time(doc, abstractions.FieldCreatedAt),
		UpdatedAt:  m.time(doc, abstractions.FieldUpdatedAt),
	}
}

// Comments renders a list of comments
func (m *Materializer) Comments(docs []abstractions.Document) []CommentView {
	out := make([]CommentView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, m.Comment(doc))
	}
	return out
}

// Reply renders a populated reply
func (m *Materializer) Reply(doc abstractions.Document) ReplyView {
	counts := aggregation.Reply(doc)
	return ReplyView{
		ID:         doc.ID(),
		Text:       doc.String(abstractions.FieldText),
		Comment:    refID(doc[abstractions.FieldComment]),
		CreatedBy:  m.author(doc[abstractions.FieldCreatedBy]),
		Likes:      m.likes(doc.List(abstractions.FieldLikes)),
		LikesCount: counts.LikesCount,
		CreatedAt:  m.time(doc, abstractions.FieldCreatedAt),
		UpdatedAt:  m.time(doc, abstractions.FieldUpdatedAt),
	}
}

// Replies renders a list of replies
func (m *Materializer) Replies(docs []abstractions.Document) []ReplyView {
	out := make([]ReplyView, 0, len(docs))
	for _, doc := range docs {
		out = append(out, m.Reply(doc))
	}
	return out
}

func (m *Materializer) comments(list []any) []CommentView {
	out := make([]CommentView, 0, len(list))
	for _, item := range list {
		if doc, ok := abstractions.AsDocument(item); ok {
			out = append(out, m.Comment(doc))
		}
	}
	return out
}

func (m *Materializer) replies(list []any) []ReplyView {
	out := make([]ReplyView, 0, len(list))
	for _, item := range list {
		if doc, ok := abstractions.AsDocument(item); ok {
			out = append(out, m.Reply(doc))
		}
	}
	return out
}

// likes keeps one entry per stored like; a liker that no longer exists is
// shown as the placeholder user.
func (m *Materializer) likes(list []any) []UserView {
	out := make([]UserView, 0, len(list))
	for _, item := range list {
		out = append(out, m.author(item))
	}
	return out
}

func (m *Materializer) author(v any) UserView {
	doc, ok := abstractions.AsDocument(v)
	if !ok {
		return PlaceholderUser()
	}
	return m.User(doc)
}

func (m *Materializer) time(doc abstractions.Document, field string) string {
	if t, ok := doc.Time(field); ok {
		return FormatTime(t)
	}
	return FormatTime(m.now())
}

func (m *Materializer) nullableTime(doc abstractions.Document, field string) *string {
	t, ok := doc.Time(field)
	if !ok {
		return nil
	}
	s := FormatTime(t)
	return &s
}

// FormatTime renders a timestamp as RFC 3339 in UTC with millisecond precision
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// refID renders a reference that may or may not have been populated
func refID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		if doc, ok := abstractions.AsDocument(t); ok {
			return doc.ID()
		}
	}
	return ""
}
