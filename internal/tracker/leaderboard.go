// ABOUTME: Leaderboard computation over the cached per-user collections
// ABOUTME: Ranks users by completion percentage, then by items collected

package tracker

import (
	"sort"

	"github.com/google/uuid"

	"github.com/fate101/collection-tracker/internal/items"
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	User              uuid.UUID
	ItemsCollected    int
	CompletionPercent float64
}

// Leaderboard returns every known user ranked by completion percentage
// (highest first), ties broken by items collected.
func (s *Service) Leaderboard() []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]LeaderboardEntry, 0, len(s.collections))
	for user, set := range s.collections {
		entries = append(entries, LeaderboardEntry{
			User:              user,
			ItemsCollected:    set.Len(),
			CompletionPercent: float64(set.Len()) * 100.0 / float64(items.Count()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompletionPercent != entries[j].CompletionPercent {
			return entries[i].CompletionPercent > entries[j].CompletionPercent
		}
		if entries[i].ItemsCollected != entries[j].ItemsCollected {
			return entries[i].ItemsCollected > entries[j].ItemsCollected
		}
		// Stable output for equal scores
		return entries[i].User.String() < entries[j].User.String()
	})

	return entries
}
