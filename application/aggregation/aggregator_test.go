package aggregation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"forum-api/infrastructure/persistence/abstractions"
)

func user(id string) abstractions.Document {
	return abstractions.Document{"id": id}
}

func TestTopic_CountsFromPopulatedTree(t *testing.T) {
	reply := abstractions.Document{"id": "r1", "likes": []any{user("u1"), user("u2"), user("u3")}}
	topic := abstractions.Document{
		"id":    "t1",
		"views": 7,
		"likes": []any{"ignored", "ignored"},
		// stale stored counters must not leak into the result
		"commentCount": 99,
		"comments": []any{
			abstractions.Document{"id": "c1", "likes": []any{user("u1"), nil}, "replies": []any{reply, nil}},
			abstractions.Document{"id": "c2", "likes": []any{user("u2")}, "replies": []any{}},
			nil,
		},
	}

	counts := Topic(topic)

	assert.Equal(t, Counts{CommentCount: 2, LikesCount: 3, ReplyCount: 1, Views: 7}, counts)
}

func TestTopic_EmptyTopic(t *testing.T) {
	assert.Equal(t, Counts{}, Topic(abstractions.Document{"id": "t1"}))
}

func TestViews_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"absent", nil, 0},
		{"int", 4, 4},
		{"float", float64(3), 3},
		{"int64", int64(12), 12},
		{"negative", -5, 0},
		{"string number", "8", 8},
		{"garbage", "lots", 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := abstractions.Document{"id": "t"}
			if tt.value != nil {
				doc["views"] = tt.value
			}
			assert.Equal(t, tt.want, Views(doc))
		})
	}
}

func TestComment_Counts(t *testing.T) {
	comment := abstractions.Document{
		"likes":   []any{user("a"), user("b")},
		"replies": []any{abstractions.Document{"id": "r"}, nil},
	}

	assert.Equal(t, Counts{LikesCount: 2, ReplyCount: 1}, Comment(comment))
	assert.Equal(t, Counts{LikesCount: 1}, Reply(abstractions.Document{"likes": []any{"u"}}))
}
