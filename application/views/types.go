// Package views turns populated documents into the external read models.
package views

// PlaceholderUserID identifies the stand-in author shown for deleted users
const PlaceholderUserID = "00000000-0000-0000-0000-000000000000"

// UserView is the public profile of a user
type UserView struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	CreatedAt *string `json:"createdAt"`
}

// PlaceholderUser is rendered wherever an author or liker no longer exists
func PlaceholderUser() UserView {
	return UserView{
		ID:        PlaceholderUserID,
		FirstName: "Deleted",
		LastName:  "User",
		Username:  "deleted-user",
		Email:     "",
	}
}

// IsPlaceholder reports whether u stands in for a missing user
func (u UserView) IsPlaceholder() bool {
	return u.ID == PlaceholderUserID
}

// CourseView is a course with its topic ids
type CourseView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// CourseDetailView is returned by slug lookups
type CourseDetailView struct {
	CourseView
	TopicCount  int        `json:"topicCount"`
	LatestTopic *TopicView `json:"latestTopic"`
}

// TopicView is a topic with its comment tree and derived counts
type TopicView struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description"`
	Course       string        `json:"course"`
	CreatedBy    UserView      `json:"createdBy"`
	Comments     []CommentView `json:"comments"`
	CommentCount int           `json:"commentCount"`
	LikesCount   int           `json:"likesCount"`
	ReplyCount   int           `json:"replyCount"`
	Views        int           `json:"views"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

// CommentView is a comment with its likers and replies
type CommentView struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Topic      string      `json:"topic"`
	CreatedBy  UserView    `json:"createdBy"`
	Likes      []UserView  `json:"likes"`
	Replies    []ReplyView `json:"replies"`
	LikesCount int         `json:"likesCount"`
	ReplyCount int         `json:"replyCount"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

// ReplyView is a reply with its likers
type ReplyView struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Comment    string     `json:"comment"`
	CreatedBy  UserView   `json:"createdBy"`
	Likes      []UserView `json:"likes"`
	LikesCount int        `json:"likesCount"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// Kind tags the entity a document represents
type Kind string

const (
	KindUser    Kind = "user"
	KindCourse  Kind = "course"
	KindTopic   Kind = "topic"
	KindComment Kind = "comment"
	KindReply   Kind = "reply"
)
