package services

import (
	"fmt"
	"sort"

	"points-ledger-system/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// LeaderboardService derives rankings from the ledger: live for all_time,
// from the materialized snapshots for monthly/weekly.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// rankEntries is the canonical ordering used by every leaderboard surface:
// points descending, username ascending under the default Unicode collation
// (language.Und), user id as the last resort so equal names still order
// deterministically. Ranks are assigned 1..N with no gaps.
func rankEntries(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	c := collate.New(language.Und)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if cmp := c.CompareString(entries[i].Username, entries[j].Username); cmp != 0 {
			return cmp < 0
		}
		return entries[i].ID < entries[j].ID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// GetLeaderboard returns at most limit entries for the period. all_time is
// computed live over users with a positive balance; monthly/weekly read the
// last materialized snapshot and come back empty until one exists.
func (s *LeaderboardService) GetLeaderboard(period models.Period, limit int) ([]models.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown period %q", ErrValidation, period)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if period == models.PeriodAllTime {
		var users []models.User
		err := s.DB.Where("total_points > 0").
			Order("total_points DESC, username ASC").
			Find(&users).Error
		if err != nil {
			return nil, err
		}
		entries := make([]models.LeaderboardEntry, len(users))
		for i, u := range users {
			entries[i] = models.LeaderboardEntry{User: u, Points: u.TotalPoints}
		}
		entries = rankEntries(entries)
		if len(entries) > limit {
			entries = entries[:limit]
		}
		return entries, nil
	}

	var entries []models.LeaderboardEntry
	err := s.DB.Raw(`
		SELECT u.*, ls.rank AS rank, ls.points AS points
		FROM leaderboard_stats ls
		JOIN users u ON u.id = ls.user_id
		WHERE ls.period = ?
		ORDER BY ls.rank ASC
		LIMIT ?
	`, period, limit).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserRank returns the user's live all-time rank as
// count(users with strictly more points) + 1, or 0 for an unknown user.
//
// Kept deliberately different from GetLeaderboard: no positive-balance filter
// and no username tie-break, so a zero-point user still gets a rank here and
// tied users all report the same (best) position. Pinned by
// TestGetUserRankDivergesFromLeaderboard.
func (s *LeaderboardService) GetUserRank(userID string) (int, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	var rank int
	err = s.DB.Raw(`
		SELECT COUNT(*) + 1
		FROM users
		WHERE total_points > (SELECT total_points FROM users WHERE id = ?)
	`, userID).Scan(&rank).Error
	if err != nil {
		return 0, err
	}
	return rank, nil
}
