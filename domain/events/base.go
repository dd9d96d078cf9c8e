package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Event types
const (
	TypeUserRegistered = "user.registered"
	TypeTopicCreated   = "topic.created"
	TypeTopicUpdated   = "topic.updated"
	TypeCommentCreated = "comment.created"
	TypeReplyCreated   = "reply.created"
	TypeCommentLiked   = "comment.liked"
	TypeCommentUnliked = "comment.unliked"
	TypeReplyLiked     = "reply.liked"
	TypeReplyUnliked   = "reply.unliked"
)

// UserRegistered is raised when a new account is created
type UserRegistered struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// NewUserRegistered creates a UserRegistered event
func NewUserRegistered(userID, username string, timestamp time.Time) UserRegistered {
	return UserRegistered{
		BaseEvent: newBase(userID, TypeUserRegistered, timestamp),
		UserID:    userID,
		Username:  username,
	}
}

// TopicCreated is raised when a topic is posted to a course
type TopicCreated struct {
	BaseEvent
	TopicID  string `json:"topic_id"`
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	Slug     string `json:"slug"`
}

// NewTopicCreated creates a TopicCreated event
func NewTopicCreated(topicID, courseID, userID, slug string, timestamp time.Time) TopicCreated {
	return TopicCreated{
		BaseEvent: newBase(topicID, TypeTopicCreated, timestamp),
		TopicID:   topicID,
		CourseID:  courseID,
		UserID:    userID,
		Slug:      slug,
	}
}

// TopicUpdated is raised when a topic's title or description changes
type TopicUpdated struct {
	BaseEvent
	TopicID string `json:"topic_id"`
	UserID  string `json:"user_id"`
	OldSlug string `json:"old_slug"`
	NewSlug string `json:"new_slug"`
}

// NewTopicUpdated creates a TopicUpdated event
func NewTopicUpdated(topicID, userID, oldSlug, newSlug string, timestamp time.Time) TopicUpdated {
	return TopicUpdated{
		BaseEvent: newBase(topicID, TypeTopicUpdated, timestamp),
		TopicID:   topicID,
		UserID:    userID,
		OldSlug:   oldSlug,
		NewSlug:   newSlug,
	}
}

// CommentCreated is raised when a comment is added to a topic
type CommentCreated struct {
	BaseEvent
	CommentID string `json:"comment_id"`
	TopicID   string `json:"topic_id"`
	UserID    string `json:"user_id"`
}

// NewCommentCreated creates a CommentCreated event
func NewCommentCreated(commentID, topicID, userID string, timestamp time.Time) CommentCreated {
	return CommentCreated{
		BaseEvent: newBase(commentID, TypeCommentCreated, timestamp),
		CommentID: commentID,
		TopicID:   topicID,
		UserID:    userID,
	}
}

// ReplyCreated is raised when a reply is added to a comment
type ReplyCreated struct {
	BaseEvent
	ReplyID   string `json:"reply_id"`
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

// NewReplyCreated creates a ReplyCreated event
func NewReplyCreated(replyID, commentID, userID string, timestamp time.Time) ReplyCreated {
	return ReplyCreated{
		BaseEvent: newBase(replyID, TypeReplyCreated, timestamp),
		ReplyID:   replyID,
		CommentID: commentID,
		UserID:    userID,
	}
}

// LikeToggled is raised when a user likes or unlikes a comment or reply
type LikeToggled struct {
	BaseEvent
	TargetID string `json:"target_id"`
	UserID   string `json:"user_id"`
}

// NewLikeToggled creates a like event. eventType is one of the comment/reply
// liked/unliked types.
func NewLikeToggled(eventType, targetID, userID string, timestamp time.Time) LikeToggled {
	return LikeToggled{
		BaseEvent: newBase(targetID, eventType, timestamp),
		TargetID:  targetID,
		UserID:    userID,
	}
}
