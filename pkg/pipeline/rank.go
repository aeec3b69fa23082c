package pipeline

import (
	"slices"

	"github.com/aretw0/kinder/pkg/domain"
)

// RankMedia returns the n most popular media items, most popular first.
// Ties keep their directory order. The input is not modified.
func RankMedia(media []domain.MediaRef, n int) []domain.MediaRef {
	ranked := slices.Clone(media)
	slices.SortStableFunc(ranked, func(a, b domain.MediaRef) int {
		return b.Popularity() - a.Popularity()
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Select filters a search page down to the candidates that may be delivered:
// public profiles never shown before, each at most once, truncated to limit.
func Select(page []domain.Candidate, sess *domain.Session, limit int) []domain.Candidate {
	seen := make(map[int64]struct{}, len(page))
	out := make([]domain.Candidate, 0, limit)
	for _, c := range page {
		if len(out) == limit {
			break
		}
		if c.IsPrivate || sess.HasShown(c.ID) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
