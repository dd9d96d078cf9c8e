package abstractions

// Collections
const (
	CollectionUsers    = "users"
	CollectionCourses  = "courses"
	CollectionTopics   = "topics"
	CollectionComments = "comments"
	CollectionReplies  = "replies"
)

// Field names shared across collections.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldCreatedBy = "createdBy"
	FieldLikes     = "likes"

	FieldFirstName            = "firstName"
	FieldLastName             = "lastName"
	FieldUsername             = "username"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldResetPasswordToken   = "resetPasswordToken"
	FieldResetPasswordExpires = "resetPasswordExpires"

	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldTopics      = "topics"

	FieldCourse   = "course"
	FieldComments = "comments"
	FieldViews    = "views"

	FieldText    = "text"
	FieldTopic   = "topic"
	FieldReplies = "replies"
	FieldComment = "comment"
)

// UniqueFields lists the attributes whose values must not repeat within a
// collection. Every store implementation enforces them.
var UniqueFields = map[string][]string{
	CollectionUsers:   {FieldUsername, FieldEmail},
	CollectionCourses: {FieldTitle, FieldSlug},
	CollectionTopics:  {FieldSlug},
}

// TimestampFields are decoded back into time.Time by stores that persist
// timestamps as text.
var TimestampFields = []string{FieldCreatedAt, FieldUpdatedAt, FieldResetPasswordExpires}

// AllCollections lists every collection the service uses.
func AllCollections() []string {
	return []string{CollectionUsers, CollectionCourses, CollectionTopics, CollectionComments, CollectionReplies}
}

// IsUnique reports whether field is unique within collection.
func IsUnique(collection, field string) bool {
	for _, f := range UniqueFields[collection] {
		if f == field {
			return true
		}
	}
	return false
}

// EntityName returns the user-facing name of a collection's entity, used in
// messages such as "Topic not found".
func EntityName(collection string) string {
	switch collection {
	case CollectionUsers:
		return "User"
	case CollectionCourses:
		return "Course"
	case CollectionTopics:
		return "Topic"
	case CollectionComments:
		return "Comment"
	case CollectionReplies:
		return "Reply"
	}
	return collection
}
