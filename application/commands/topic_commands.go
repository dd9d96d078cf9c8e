package commands

import (
	"forum-api/domain/core/valueobjects"
	pkgerrors "forum-api/pkg/errors"
	"forum-api/pkg/utils"
)

// CreateTopicCommand posts a new topic to a course
type CreateTopicCommand struct {
	TopicID     string `json:"topicId" validate:"required"`
	CourseID    string `json:"courseId"`
	UserID      string `json:"userId"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// Validate validates the CreateTopicCommand
func (c CreateTopicCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if _, err := valueobjects.ParseEntityID("course", c.CourseID); err != nil {
		return err
	}
	return utils.ValidateStruct(c)
}

// UpdateTopicCommand edits the title and/or description of a topic
type UpdateTopicCommand struct {
	TopicID     string  `json:"topicId"`
	UserID      string  `json:"userId"`
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
}

// Validate validates the UpdateTopicCommand
func (c UpdateTopicCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if _, err := valueobjects.ParseEntityID("topic", c.TopicID); err != nil {
		return err
	}
	if c.Title == nil && c.Description == nil {
		return pkgerrors.NewValidationError("title or description is required")
	}
	return utils.ValidateStruct(c)
}

// IncrementTopicViewsCommand records one view of a topic. It needs no caller.
type IncrementTopicViewsCommand struct {
	TopicID string `json:"topicId"`
}

// Validate validates the IncrementTopicViewsCommand
func (c IncrementTopicViewsCommand) Validate() error {
	_, err := valueobjects.ParseEntityID("topic", c.TopicID)
	return err
}
