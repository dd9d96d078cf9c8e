package abstractions

import (
	"forum-api/domain/core/entities"
)

// FromUser maps a new user to its stored document
func FromUser(u *entities.User) Document {
	return Document{
		FieldID:                   u.ID.String(),
		FieldFirstName:            u.FirstName,
		FieldLastName:             u.LastName,
		FieldUsername:             u.Username,
		FieldEmail:                u.Email,
		FieldPassword:             u.PasswordHash,
		FieldResetPasswordToken:   nil,
		FieldResetPasswordExpires: nil,
		FieldCreatedAt:            u.CreatedAt.UTC(),
		FieldUpdatedAt:            u.CreatedAt.UTC(),
	}
}

// FromCourse maps a new course to its stored document
func FromCourse(c *entities.Course) Document {
	return Document{
		FieldID:          c.ID.String(),
		FieldTitle:       c.Title.String(),
		FieldSlug:        c.Slug,
		FieldDescription: c.Description,
		FieldTopics:      []any{},
		FieldCreatedAt:   c.CreatedAt.UTC(),
		FieldUpdatedAt:   c.CreatedAt.UTC(),
	}
}

// FromTopic maps a new topic to its stored document
func FromTopic(t *entities.Topic) Document {
	return Document{
		FieldID:          t.ID.String(),
		FieldTitle:       t.Title.String(),
		FieldSlug:        t.Slug,
		FieldDescription: t.Description.String(),
		FieldCourse:      t.CourseID,
		FieldCreatedBy:   t.CreatedBy,
		FieldComments:    []any{},
		FieldViews:       0,
		FieldCreatedAt:   t.CreatedAt.UTC(),
		FieldUpdatedAt:   t.CreatedAt.UTC(),
	}
}

// FromComment maps a new comment to its stored document
func FromComment(c *entities.Comment) Document {
	return Document{
		FieldID:        c.ID.String(),
		FieldText:      c.Text.String(),
		FieldTopic:     c.TopicID,
		FieldCreatedBy: c.CreatedBy,
		FieldLikes:     []any{},
		FieldReplies:   []any{},
		FieldCreatedAt: c.CreatedAt.UTC(),
		FieldUpdatedAt: c.CreatedAt.UTC(),
	}
}

// FromReply maps a new reply to its stored document
func FromReply(r *entities.Reply) Document {
	return Document{
		FieldID:        r.ID.String(),
		FieldText:      r.Text.String(),
		FieldComment:   r.CommentID,
		FieldCreatedBy: r.CreatedBy,
		FieldLikes:     []any{},
		FieldCreatedAt: r.CreatedAt.UTC(),
		FieldUpdatedAt: r.CreatedAt.UTC(),
	}
}
