// Package stats ranks a post's comments for the "top comments" box on the
// detail page. Everything here is pure: no queries, no mutation of input.
package stats

import (
	"sort"

	"coolpress/internal/models"
)

// CommentScore pairs a comment with the score it ranked under.
type CommentScore struct {
	Comment models.Comment
	Score   float64
}

// Analyzer holds a ranked view over a comment collection.
type Analyzer struct {
	ranked []CommentScore
}

// Analyze scores and orders a comment collection. Only PUBLISHED comments
// participate. The score is the vote count; ties rank the most recent
// comment first. The input slice is left untouched.
func Analyze(comments []models.Comment) *Analyzer {
	ranked := make([]CommentScore, 0, len(comments))
	for _, c := range comments {
		if c.Status != models.CommentStatusPublished {
			continue
		}
		ranked = append(ranked, CommentScore{Comment: c, Score: score(c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Comment.CreatedAt.After(ranked[j].Comment.CreatedAt)
	})

	return &Analyzer{ranked: ranked}
}

// score maps a comment to its ranking value. Kept monotonic in votes so the
// ordering contract survives future tweaks to the formula.
func score(c models.Comment) float64 {
	return float64(c.Votes)
}

// Top returns at most k ranked comments, best first. Small or empty inputs
// degrade to shorter or empty results, never an error.
func (a *Analyzer) Top(k int) []CommentScore {
	if k <= 0 || len(a.ranked) == 0 {
		return []CommentScore{}
	}
	if k > len(a.ranked) {
		k = len(a.ranked)
	}
	out := make([]CommentScore, k)
	copy(out, a.ranked[:k])
	return out
}
