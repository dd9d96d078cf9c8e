// Package aggregation derives the counters shown on topics, comments and
// replies from their populated reference collections. Stored counters are
// never trusted.
package aggregation

import (
	"forum-api/infrastructure/persistence/abstractions"
)

// Counts are the derived figures for one entity
type Counts struct {
	CommentCount int
	LikesCount   int
	ReplyCount   int
	Views        int
}

// Topic computes the counts for a populated topic.
//
//	commentCount = live comments
//	likesCount   = sum of likes over those comments (reply likes excluded)
//	replyCount   = sum of live replies over those comments
func Topic(topic abstractions.Document) Counts {
	counts := Counts{Views: Views(topic)}
	for _, comment := range liveDocuments(topic.List(abstractions.FieldComments)) {
		counts.CommentCount++
		counts.LikesCount += len(comment.List(abstractions.FieldLikes))
		counts.ReplyCount += len(liveDocuments(comment.List(abstractions.FieldReplies)))
	}
	return counts
}

// Comment computes the counts for a populated comment
func Comment(comment abstractions.Document) Counts {
	return Counts{
		LikesCount: len(comment.List(abstractions.FieldLikes)),
		ReplyCount: len(liveDocuments(comment.List(abstractions.FieldReplies))),
	}
}

// Reply computes the counts for a reply
func Reply(reply abstractions.Document) Counts {
	return Counts{LikesCount: len(reply.List(abstractions.FieldLikes))}
}

// Views returns the normalized view counter: absent, negative or non-numeric
// values count as 0.
func Views(topic abstractions.Document) int {
	n, _ := topic.Int(abstractions.FieldViews)
	return n
}

// liveDocuments keeps the populated entries of a reference list. Unresolved
// references (nil) and ids that were never populated are dropped.
func liveDocuments(list []any) []abstractions.Document {
	out := make([]abstractions.Document, 0, len(list))
	for _, item := range list {
		if doc, ok := abstractions.AsDocument(item); ok {
			out = append(out, doc)
		}
	}
	return out
}
