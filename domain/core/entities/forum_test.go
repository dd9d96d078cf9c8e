package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/domain/core/valueobjects"
	"forum-api/domain/events"
	pkgerrors "forum-api/pkg/errors"
)

var now = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func mustTitle(t *testing.T, s string) valueobjects.Title {
	t.Helper()
	title, err := valueobjects.NewTitle(s)
	require.NoError(t, err)
	return title
}

func mustText(t *testing.T, s string) valueobjects.Text {
	t.Helper()
	text, err := valueobjects.NewText("description", s, 1000)
	require.NoError(t, err)
	return text
}

func TestNewTopic_DerivesSlugAndRaisesEvent(t *testing.T) {
	id := valueobjects.NewEntityID()

	topic, err := NewTopic(id, "course-1", "user-1", mustTitle(t, "  Async / Await in JS  "),
		mustText(t, "how does it work?"), valueobjects.DeriveSlug, now)

	require.NoError(t, err)
	assert.Equal(t, "Async / Await in JS", topic.Title.String())
	assert.Equal(t, "async-await-in-js", topic.Slug)

	evts := topic.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeTopicCreated, evts[0].GetEventType())
	assert.Equal(t, id.String(), evts[0].GetAggregateID())

	topic.MarkEventsAsCommitted()
	assert.Empty(t, topic.GetUncommittedEvents())
}

func TestNewTopic_RequiresCaller(t *testing.T) {
	_, err := NewTopic(valueobjects.NewEntityID(), "course-1", "", mustTitle(t, "x"),
		mustText(t, "y"), valueobjects.DeriveSlug, now)

	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestNewTopic_TitleWithoutSlugCharacters(t *testing.T) {
	_, err := NewTopic(valueobjects.NewEntityID(), "course-1", "user-1", mustTitle(t, "???"),
		mustText(t, "y"), valueobjects.DeriveSlug, now)

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewTopicEdit(t *testing.T) {
	newTitle := mustTitle(t, "Generics in Go")

	t.Run("author changes title", func(t *testing.T) {
		edit, err := NewTopicEdit("t1", "alice", "alice", "old-slug", &newTitle, nil, valueobjects.DeriveSlug, now)

		require.NoError(t, err)
		assert.Equal(t, "generics-in-go", edit.Slug)
		assert.True(t, edit.SlugChanged("old-slug"))
	})

	t.Run("description only keeps slug", func(t *testing.T) {
		desc := mustText(t, "updated")
		edit, err := NewTopicEdit("t1", "alice", "alice", "old-slug", nil, &desc, valueobjects.DeriveSlug, now)

		require.NoError(t, err)
		assert.False(t, edit.SlugChanged("old-slug"))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := NewTopicEdit("t1", "alice", "bob", "old-slug", &newTitle, nil, valueobjects.DeriveSlug, now)

		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		_, err := NewTopicEdit("t1", "alice", "", "old-slug", &newTitle, nil, valueobjects.DeriveSlug, now)

		assert.True(t, pkgerrors.IsUnauthorized(err))
	})
}

func TestNewUser_Validation(t *testing.T) {
	u, err := NewUser(valueobjects.NewEntityID(), "Ada", "Lovelace", "ada", " ADA@Example.com ", "hash", nil, now)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = NewUser(valueobjects.NewEntityID(), "Ada", "Lovelace", "a", "ada@example.com", "hash", nil, now)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewUser(valueobjects.NewEntityID(), "Ada", "Lovelace", strings.Repeat("a", 40), "ada@example.com", "hash", nil, now)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewUser(valueobjects.EntityID{}, "Ada", "Lovelace", "ada", "ada@example.com", "hash", nil, now)
	assert.True(t, pkgerrors.IsValidation(err))
}
