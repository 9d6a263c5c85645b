package services

import (
	"sort"
	"time"

	"coolpress/internal/models"
)

const (
	DefaultTrendingThreshold = 5
	DefaultTrendingLimit     = 20
)

// Trending selects and orders posts by recent comment activity. Posts must
// arrive with their Comments preloaded. A post qualifies when it has at
// least threshold comments; qualifying posts are ordered by the time of
// their latest comment, newest first, with the comment count breaking ties.
// The result is truncated to limit.
//
// Comment counts here intentionally include NON_PUBLISHED comments even
// though every other read path filters them out. That asymmetry is
// inherited behavior; see trending_test.go.
func Trending(posts []models.Post, threshold, limit int) []models.Post {
	trending := make([]models.Post, 0, len(posts))
	latest := make(map[uint]time.Time, len(posts))

	for _, p := range posts {
		if len(p.Comments) < threshold {
			continue
		}
		p.CommentCount = len(p.Comments)
		latest[p.ID] = latestCommentAt(p.Comments)
		trending = append(trending, p)
	}

	sort.SliceStable(trending, func(i, j int) bool {
		li, lj := latest[trending[i].ID], latest[trending[j].ID]
		if !li.Equal(lj) {
			return li.After(lj)
		}
		return trending[i].CommentCount > trending[j].CommentCount
	})

	if limit >= 0 && len(trending) > limit {
		trending = trending[:limit]
	}
	return trending
}

// latestCommentAt returns the newest comment creation time, or the zero
// time for an empty set.
func latestCommentAt(comments []models.Comment) time.Time {
	var latest time.Time
	for _, c := range comments {
		if c.CreatedAt.After(latest) {
			latest = c.CreatedAt
		}
	}
	return latest
}
