package commands

import (
	"forum-api/domain/core/valueobjects"
	pkgerrors "forum-api/pkg/errors"
	"forum-api/pkg/utils"
)

// CreateCommentCommand adds a comment to a topic
type CreateCommentCommand struct {
	CommentID string `json:"commentId" validate:"required"`
	TopicID   string `json:"topicId"`
	UserID    string `json:"userId"`
	Text      string `json:"text" validate:"required"`
}

// Validate validates the CreateCommentCommand
func (c CreateCommentCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if _, err := valueobjects.ParseEntityID("topic", c.TopicID); err != nil {
		return err
	}
	return utils.ValidateStruct(c)
}

// CreateReplyCommand adds a reply to a comment
type CreateReplyCommand struct {
	ReplyID   string `json:"replyId" validate:"required"`
	CommentID string `json:"commentId"`
	UserID    string `json:"userId"`
	Text      string `json:"text" validate:"required"`
}

// Validate validates the CreateReplyCommand
func (c CreateReplyCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if _, err := valueobjects.ParseEntityID("comment", c.CommentID); err != nil {
		return err
	}
	return utils.ValidateStruct(c)
}

// LikeTarget names what a like applies to
type LikeTarget string

const (
	LikeTargetComment LikeTarget = "comment"
	LikeTargetReply   LikeTarget = "reply"
)

// SetLikeCommand adds (Liked) or removes the caller's like on a comment or reply
type SetLikeCommand struct {
	Target   LikeTarget `json:"target" validate:"required,oneof=comment reply"`
	TargetID string     `json:"targetId"`
	UserID   string     `json:"userId"`
	Liked    bool       `json:"liked"`
}

// Validate validates the SetLikeCommand
func (c SetLikeCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	_, err := valueobjects.ParseEntityID(string(c.Target), c.TargetID)
	return err
}
