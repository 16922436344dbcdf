package models

import (
	"time"
)

// Period names a leaderboard window.
type Period string

const (
	PeriodAllTime Period = "all_time"
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodAllTime, PeriodMonthly, PeriodWeekly:
		return true
	}
	return false
}

// Periods lists every period a stats refresh materializes.
var Periods = []Period{PeriodAllTime, PeriodMonthly, PeriodWeekly}

// LeaderboardStat is the materialized snapshot of one user's standing within
// one period. Exactly one row per (user, period); every refresh overwrites it.
type LeaderboardStat struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_stats_user_period" json:"user_id"`
	Period    Period    `gorm:"not null;uniqueIndex:idx_stats_user_period" json:"period"`
	Points    int64     `gorm:"not null;default:0" json:"points"`
	Rank      int       `gorm:"not null;default:0" json:"rank"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// LeaderboardEntry is the read model served to clients: a user plus the rank
// (and, for windowed periods, the snapshot points) computed for them.
type LeaderboardEntry struct {
	User
	Rank int `json:"rank"`

	// Points the rank was computed over. Equals TotalPoints for all_time;
	// for windowed periods it is the window sum from the snapshot.
	Points int64 `json:"points"`
}
