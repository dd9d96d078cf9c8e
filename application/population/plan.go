// Package population resolves foreign-key references inside documents into
// the documents they point at, following a declarative plan.
package population

import (
	"forum-api/infrastructure/persistence/abstractions"
)

// Path describes one reference field to resolve.
type Path struct {
	// Field holds the reference (a single id, or a list of ids when Many).
	Field string
	// Collection the referenced documents live in.
	Collection string
	Many       bool
	// Select restricts the attributes loaded for the target. Empty loads all.
	Select []string
	// Nested paths are resolved on the loaded targets.
	Nested Plan
}

// Plan is a set of paths resolved at the same depth.
type Plan []Path

// Author fields loaded for createdBy and likes. Passwords and reset tokens are
// never loaded.
var userFields = []string{
	abstractions.FieldFirstName,
	abstractions.FieldLastName,
	abstractions.FieldUsername,
	abstractions.FieldEmail,
	abstractions.FieldCreatedAt,
}

func authorPath() Path {
	return Path{Field: abstractions.FieldCreatedBy, Collection: abstractions.CollectionUsers, Select: userFields}
}

func likesPath() Path {
	return Path{Field: abstractions.FieldLikes, Collection: abstractions.CollectionUsers, Many: true, Select: userFields}
}

// ReplyPlan resolves a reply's author and likers.
func ReplyPlan() Plan {
	return Plan{authorPath(), likesPath()}
}

// CommentPlan resolves a comment's author, likers and replies (with their own
// authors and likers).
func CommentPlan() Plan {
	return Plan{
		authorPath(),
		likesPath(),
		{Field: abstractions.FieldReplies, Collection: abstractions.CollectionReplies, Many: true, Nested: ReplyPlan()},
	}
}

// TopicPlan resolves a topic's author and its full comment tree.
func TopicPlan() Plan {
	return Plan{
		authorPath(),
		{Field: abstractions.FieldComments, Collection: abstractions.CollectionComments, Many: true, Nested: CommentPlan()},
	}
}
