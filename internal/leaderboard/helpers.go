package leaderboard

import ws "github.com/faithframes/quiz-service/pkg/http/ws"

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = ws.LeaderboardEntry{
			Rank:        e.Rank,
			PlayerID:    e.PlayerID,
			DisplayName: e.DisplayName,
			LatestScore: e.LatestScore,
			Total:       e.Total,
		}
	}
	return result
}
