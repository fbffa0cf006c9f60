package store

import (
	"context"
	"sort"

	"github.com/reychango/reychango-server/internal/domain"
)

// DefaultPopularTags is the number of tags PopularTags returns when no limit is given.
const DefaultPopularTags = 6

// PopularTags counts how often each tag appears across all posts and returns the
// most frequent ones, highest count first. Ties keep the order in which the tags
// were first seen, which depends on document order and is not guaranteed.
func (s *Store) PopularTags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	if limit <= 0 {
		limit = DefaultPopularTags
	}

	snaps, err := s.db.Collection(CollectionPosts).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to aggregate tags")
	}

	counts := make(map[string]int)
	var order []string
	for _, snap := range snaps {
		tags, _ := snap.Data()["tags"].([]any)
		for _, t := range tags {
			name, ok := t.(string)
			if !ok || name == "" {
				continue
			}
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	ranked := make([]domain.TagCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, domain.TagCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
