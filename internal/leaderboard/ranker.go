package leaderboard

import "sort"

// Rank orders records into leaderboard entries. Primary order is latest
// score descending; ties are broken deterministically by earlier
// UpdatedAt (first to post the score ranks higher), then by player ID.
// Ranks follow competition style: equal scores share the rank of the
// first member of their group, and the next distinct score takes the
// rank of its position, so scores 90, 90, 70 rank 1, 1, 3.
func Rank(records []Record) []Entry {
	ordered := make([]Record, len(records))
	copy(ordered, records)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.LatestScore != b.LatestScore {
			return a.LatestScore > b.LatestScore
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})

	entries := make([]Entry, len(ordered))
	for i, rec := range ordered {
		rank := i + 1
		if i > 0 && rec.LatestScore == ordered[i-1].LatestScore {
			rank = entries[i-1].Rank
		}
		entries[i] = Entry{
			Rank:        rank,
			PlayerID:    rec.PlayerID,
			DisplayName: rec.DisplayName,
			LatestScore: rec.LatestScore,
			Total:       rec.Total,
		}
	}
	return entries
}

// RankOf resolves one player's rank within an already-ranked slice.
// When the slice is a bounded top-K cut and the player fell below the
// cutoff, the rank is genuinely unknown from this data: callers must
// report that explicitly rather than substitute a wrong number.
func RankOf(entries []Entry, playerID string) (int, bool) {
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e.Rank, true
		}
	}
	return 0, false
}
