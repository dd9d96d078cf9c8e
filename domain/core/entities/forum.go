package entities

import (
	"fmt"
	"strings"
	"time"

	"forum-api/domain/config"
	"forum-api/domain/core/valueobjects"
	"forum-api/domain/events"
	pkgerrors "forum-api/pkg/errors"
)

// aggregate records the events raised while an entity is being created or changed
type aggregate struct {
	events []events.DomainEvent
}

// GetUncommittedEvents returns the events raised since the last commit
func (a *aggregate) GetUncommittedEvents() []events.DomainEvent {
	return a.events
}

// MarkEventsAsCommitted clears the event list after publishing
func (a *aggregate) MarkEventsAsCommitted() {
	a.events = nil
}

func requireID(id valueobjects.EntityID) error {
	if id.IsZero() {
		return pkgerrors.NewValidationError("id is required")
	}
	return nil
}

func (a *aggregate) addEvent(event events.DomainEvent) {
	a.events = append(a.events, event)
}

// User is a forum account
type User struct {
	aggregate
	ID           valueobjects.EntityID
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser validates the profile fields of a new account. The password must
// already be hashed.
func NewUser(id valueobjects.EntityID, firstName, lastName, username, email, passwordHash string, cfg *config.DomainConfig, now time.Time) (*User, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case strings.TrimSpace(firstName) == "":
		return nil, pkgerrors.NewValidationError("firstName is required")
	case strings.TrimSpace(lastName) == "":
		return nil, pkgerrors.NewValidationError("lastName is required")
	case len(username) < cfg.MinUsernameLength || len(username) > cfg.MaxUsernameLength:
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("username must be between %d and %d characters",
			cfg.MinUsernameLength, cfg.MaxUsernameLength))
	case !strings.Contains(email, "@"):
		return nil, pkgerrors.NewValidationError("email is invalid")
	case passwordHash == "":
		return nil, pkgerrors.NewValidationError("password is required")
	}

	u := &User{
		ID:           id,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	u.addEvent(events.NewUserRegistered(u.ID.String(), u.Username, now))
	return u, nil
}

// Course groups topics under a subject
type Course struct {
	ID          valueobjects.EntityID
	Title       valueobjects.Title
	Slug        string
	Description string
	CreatedAt   time.Time
}

// NewCourse creates a course and derives its slug
func NewCourse(id valueobjects.EntityID, title valueobjects.Title, description string, derive valueobjects.SlugFunc, now time.Time) (*Course, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	slug := title.Slug(derive)
	if slug == "" {
		return nil, pkgerrors.NewValidationError("title must contain at least one letter or digit")
	}
	return &Course{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}, nil
}

// Topic is a discussion thread inside a course
type Topic struct {
	aggregate
	ID          valueobjects.EntityID
	Title       valueobjects.Title
	Slug        string
	Description valueobjects.Text
	CourseID    string
	CreatedBy   string
	CreatedAt   time.Time
}

// NewTopic creates a topic and derives its slug
func NewTopic(id valueobjects.EntityID, courseID, userID string, title valueobjects.Title, description valueobjects.Text, derive valueobjects.SlugFunc, now time.Time) (*Topic, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if courseID == "" {
		return nil, pkgerrors.NewValidationError("courseId is required")
	}
	if userID == "" {
		return nil, pkgerrors.NewUnauthorizedError("")
	}

	slug := title.Slug(derive)
	if slug == "" {
		return nil, pkgerrors.NewValidationError("title must contain at least one letter or digit")
	}

	t := &Topic{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Description: description,
		CourseID:    courseID,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	t.addEvent(events.NewTopicCreated(t.ID.String(), courseID, userID, slug, now))
	return t, nil
}

// TopicEdit is a change to an existing topic. Only the author may apply it.
type TopicEdit struct {
	aggregate
	TopicID     string
	Title       *valueobjects.Title
	Slug        string
	Description *valueobjects.Text
}

// NewTopicEdit checks ownership and regenerates the slug when the title changes
func NewTopicEdit(topicID, authorID, callerID, currentSlug string, title *valueobjects.Title, description *valueobjects.Text, derive valueobjects.SlugFunc, now time.Time) (*TopicEdit, error) {
	if callerID == "" {
		return nil, pkgerrors.NewUnauthorizedError("")
	}
	if authorID != callerID {
		return nil, pkgerrors.NewForbiddenError("Only the author can edit this topic")
	}
	if title == nil && description == nil {
		return nil, pkgerrors.NewValidationError("nothing to update")
	}

	edit := &TopicEdit{TopicID: topicID, Title: title, Description: description, Slug: currentSlug}
	if title != nil {
		edit.Slug = title.Slug(derive)
		if edit.Slug == "" {
			return nil, pkgerrors.NewValidationError("title must contain at least one letter or digit")
		}
	}
	edit.addEvent(events.NewTopicUpdated(topicID, callerID, currentSlug, edit.Slug, now))
	return edit, nil
}

// SlugChanged reports whether applying the edit changes the slug
func (e *TopicEdit) SlugChanged(currentSlug string) bool {
	return e.Slug != currentSlug
}

// Comment is a top-level post on a topic
type Comment struct {
	aggregate
	ID        valueobjects.EntityID
	Text      valueobjects.Text
	TopicID   string
	CreatedBy string
	CreatedAt time.Time
}

// NewComment creates a comment on a topic
func NewComment(id valueobjects.EntityID, topicID, userID string, text valueobjects.Text, now time.Time) (*Comment, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, pkgerrors.NewUnauthorizedError("")
	}
	c := &Comment{
		ID:        id,
		Text:      text,
		TopicID:   topicID,
		CreatedBy: userID,
		CreatedAt: now,
	}
	c.addEvent(events.NewCommentCreated(c.ID.String(), topicID, userID, now))
	return c, nil
}

// Reply answers a comment
type Reply struct {
	aggregate
	ID        valueobjects.EntityID
	Text      valueobjects.Text
	CommentID string
	CreatedBy string
	CreatedAt time.Time
}

// NewReply creates a reply to a comment
func NewReply(id valueobjects.EntityID, commentID, userID string, text valueobjects.Text, now time.Time) (*Reply, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, pkgerrors.NewUnauthorizedError("")
	}
	r := &Reply{
		ID:        id,
		Text:      text,
		CommentID: commentID,
		CreatedBy: userID,
		CreatedAt: now,
	}
	r.addEvent(events.NewReplyCreated(r.ID.String(), commentID, userID, now))
	return r, nil
}
