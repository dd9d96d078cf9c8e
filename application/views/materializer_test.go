package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/infrastructure/persistence/abstractions"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

func newTestMaterializer() *Materializer {
	return NewMaterializer(func() time.Time { return fixedNow })
}

func TestMaterializer_Topic_DanglingReferences(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	topic := abstractions.Document{
		"id":        "t1",
		"title":     "Closures",
		"slug":      "closures",
		"course":    "course-1",
		"createdBy": nil,
		"views":     "corrupt",
		"createdAt": created,
		"comments": []any{
			abstractions.Document{
				"id":        "c1",
				"text":      "hello",
				"topic":     "t1",
				"createdBy": abstractions.Document{"id": "u1", "username": "alice", "password": "hash"},
				"likes":     []any{nil, abstractions.Document{"id": "u2", "username": "bob"}},
			},
			nil,
		},
	}

	view := newTestMaterializer().Topic(topic)

	assert.Equal(t, "t1", view.ID)
	assert.Equal(t, "course-1", view.Course)
	assert.True(t, view.CreatedBy.IsPlaceholder())
	assert.Equal(t, "deleted-user", view.CreatedBy.Username)
	assert.Equal(t, 0, view.Views)
	assert.Equal(t, "2024-01-02T03:04:05.000Z", view.CreatedAt)
	assert.Equal(t, "2024-06-01T07:30:00.000Z", view.UpdatedAt, "missing timestamp falls back to now in UTC")

	require.Len(t, view.Comments, 1)
	comment := view.Comments[0]
	assert.Equal(t, "alice", comment.CreatedBy.Username)
	require.Len(t, comment.Likes, 2)
	assert.True(t, comment.Likes[0].IsPlaceholder())
	assert.Equal(t, "bob", comment.Likes[1].Username)
	assert.NotNil(t, comment.Replies)
	assert.Empty(t, comment.Replies)

	assert.Equal(t, 1, view.CommentCount)
	assert.Equal(t, 2, view.LikesCount)
}

func TestMaterializer_ArraysAreNeverNull(t *testing.T) {
	m := newTestMaterializer()

	raw, err := json.Marshal(m.Comment(abstractions.Document{"id": "c1"}))
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"likes":[]`)
	assert.Contains(t, string(raw), `"replies":[]`)

	course, err := json.Marshal(m.Course(abstractions.Document{"id": "course"}))
	require.NoError(t, err)
	assert.Contains(t, string(course), `"topics":[]`)
}

func TestMaterializer_User_NullableCreatedAtAndNoSecrets(t *testing.T) {
	m := newTestMaterializer()

	view := m.User(abstractions.Document{
		"id":                 "u1",
		"username":           "alice",
		"password":           "hash",
		"resetPasswordToken": "token",
	})

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":null`)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "token")
}

func TestMaterializer_Materialize_Dispatch(t *testing.T) {
	m := newTestMaterializer()
	doc := abstractions.Document{"id": "r1", "comment": "c1", "text": "hi"}

	v, err := m.Materialize(KindReply, doc)
	require.NoError(t, err)
	reply, ok := v.(ReplyView)
	require.True(t, ok)
	assert.Equal(t, "c1", reply.Comment)
	assert.True(t, reply.CreatedBy.IsPlaceholder())

	_, err = m.Materialize(Kind("poll"), doc)
	assert.Error(t, err)
}
