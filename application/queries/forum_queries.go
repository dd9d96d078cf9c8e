package queries

import (
	"fmt"
	"strings"

	"forum-api/application/views"
	"forum-api/domain/core/valueobjects"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

// CourseConnection is a page of courses
type CourseConnection = common.Connection[views.CourseView]

// TopicConnection is a page of topics
type TopicConnection = common.Connection[views.TopicView]

// GetAllUsersQuery lists every user, newest first
type GetAllUsersQuery struct{}

// Validate validates the GetAllUsersQuery
func (q GetAllUsersQuery) Validate() error { return nil }

// GetUserProfileQuery loads a single user
type GetUserProfileQuery struct {
	UserID string `json:"userId"`
}

// Validate validates the GetUserProfileQuery
func (q GetUserProfileQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("user", q.UserID)
	return err
}

// GetAllCoursesQuery pages through every course, newest first
type GetAllCoursesQuery struct {
	Page common.CursorParams `json:"page"`
}

// Validate validates the GetAllCoursesQuery
func (q GetAllCoursesQuery) Validate() error {
	return validatePage(q.Page)
}

// CacheKey identifies the requested page
func (q GetAllCoursesQuery) CacheKey() string {
	return pageKey(q.Page)
}

// GetCourseByIDQuery loads a course by id
type GetCourseByIDQuery struct {
	CourseID string `json:"courseId"`
}

// Validate validates the GetCourseByIDQuery
func (q GetCourseByIDQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("course", q.CourseID)
	return err
}

// GetCourseBySlugQuery loads a course by slug together with its topic count
// and newest topic
type GetCourseBySlugQuery struct {
	Slug string `json:"slug"`
}

// Validate validates the GetCourseBySlugQuery
func (q GetCourseBySlugQuery) Validate() error {
	return requireSlug(q.Slug)
}

// GetTopicsByCourseQuery pages through the topics of a course
type GetTopicsByCourseQuery struct {
	CourseID string              `json:"courseId"`
	Page     common.CursorParams `json:"page"`
}

// Validate validates the GetTopicsByCourseQuery
func (q GetTopicsByCourseQuery) Validate() error {
	if _, err := valueobjects.ParseEntityID("course", q.CourseID); err != nil {
		return err
	}
	return validatePage(q.Page)
}

// GetTopicByIDQuery loads a fully populated topic
type GetTopicByIDQuery struct {
	TopicID string `json:"topicId"`
}

// Validate validates the GetTopicByIDQuery
func (q GetTopicByIDQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("topic", q.TopicID)
	return err
}

// GetTopicBySlugQuery loads a fully populated topic by slug
type GetTopicBySlugQuery struct {
	Slug string `json:"slug"`
}

// Validate validates the GetTopicBySlugQuery
func (q GetTopicBySlugQuery) Validate() error {
	return requireSlug(q.Slug)
}

// ListTopicsQuery lists every topic, newest first
type ListTopicsQuery struct{}

// Validate validates the ListTopicsQuery
func (q ListTopicsQuery) Validate() error { return nil }

// GetCommentsByTopicQuery lists the comments of a topic, oldest first
type GetCommentsByTopicQuery struct {
	TopicID string `json:"topicId"`
}

// Validate validates the GetCommentsByTopicQuery
func (q GetCommentsByTopicQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("topic", q.TopicID)
	return err
}

// GetCommentByIDQuery loads a populated comment
type GetCommentByIDQuery struct {
	CommentID string `json:"commentId"`
}

// Validate validates the GetCommentByIDQuery
func (q GetCommentByIDQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("comment", q.CommentID)
	return err
}

// GetRepliesByCommentQuery lists the replies to a comment, oldest first
type GetRepliesByCommentQuery struct {
	CommentID string `json:"commentId"`
}

// Validate validates the GetRepliesByCommentQuery
func (q GetRepliesByCommentQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("comment", q.CommentID)
	return err
}

// GetReplyByIDQuery loads a populated reply
type GetReplyByIDQuery struct {
	ReplyID string `json:"replyId"`
}

// Validate validates the GetReplyByIDQuery
func (q GetReplyByIDQuery) Validate() error {
	_, err := valueobjects.ParseEntityID("reply", q.ReplyID)
	return err
}

func requireSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.NewValidationError("slug is required")
	}
	return nil
}

func validatePage(p common.CursorParams) error {
	if p.First != nil && *p.First < 0 {
		return pkgerrors.NewValidationError("first must not be negative")
	}
	if p.Last != nil && *p.Last < 0 {
		return pkgerrors.NewValidationError("last must not be negative")
	}
	return nil
}

func pageKey(p common.CursorParams) string {
	deref := func(v *int) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprint(*v)
	}
	str := func(v *string) string {
		if v == nil {
			return "-"
		}
		return *v
	}
	return fmt.Sprintf("first=%s,after=%s,last=%s,before=%s", deref(p.First), str(p.After), deref(p.Last), str(p.Before))
}
