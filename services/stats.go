package services

import (
	"fmt"
	"log"
	"time"

	"points-ledger-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsService materializes leaderboard snapshots into leaderboard_stats so
// windowed rank queries stay off the live aggregation path. Snapshots are
// eventually consistent: readers may lag the ledger by one refresh cycle.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// windowStart returns the UTC start of the period's current window, or the
// zero time for all_time. Months are calendar months; weeks start Monday.
func windowStart(period models.Period, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case models.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case models.PeriodWeekly:
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -(wd - 1))
	default:
		return time.Time{}
	}
}

// computeRanking ranks the whole population for one period using the
// canonical ordering. all_time ranks stored balances; windowed periods rank
// the sum of transaction amounts inside the current window (zero for users
// with no activity). No positive-balance filter here: a snapshot row exists
// for every user.
func (s *StatsService) computeRanking(period models.Period, now time.Time) ([]models.LeaderboardEntry, error) {
	var users []models.User
	if err := s.DB.Order("total_points DESC, username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = models.LeaderboardEntry{User: u, Points: u.TotalPoints}
	}

	if period != models.PeriodAllTime {
		type windowSum struct {
			UserID string
			Points int64
		}
		var sums []windowSum
		err := s.DB.Raw(`
			SELECT user_id, COALESCE(SUM(amount), 0) AS points
			FROM point_transactions
			WHERE created_at >= ?
			GROUP BY user_id
		`, windowStart(period, now)).Scan(&sums).Error
		if err != nil {
			return nil, err
		}
		byUser := make(map[string]int64, len(sums))
		for _, ws := range sums {
			byUser[ws.UserID] = ws.Points
		}
		for i := range entries {
			entries[i].Points = byUser[entries[i].ID]
		}
	}

	return rankEntries(entries), nil
}

// Refresh recomputes and upserts the snapshot rows for one user across all
// periods. Keyed on (user_id, period), last write wins. A user deleted since
// the trigger fired is silently skipped.
func (s *StatsService) Refresh(userID string) error {
	now := time.Now()
	for _, period := range models.Periods {
		entries, err := s.computeRanking(period, now)
		if err != nil {
			return fmt.Errorf("refresh %s/%s: %w", userID, period, err)
		}
		for _, e := range entries {
			if e.ID != userID {
				continue
			}
			if err := s.upsert(e.ID, period, e.Points, e.Rank); err != nil {
				return fmt.Errorf("refresh %s/%s: %w", userID, period, err)
			}
			break
		}
	}
	return nil
}

// RefreshAll rebuilds every user's snapshot for every period in one bulk
// upsert per period. Also ages transactions out of the monthly/weekly
// windows, so it runs on a schedule as well as being available for backfill.
func (s *StatsService) RefreshAll() error {
	now := time.Now()
	for _, period := range models.Periods {
		entries, err := s.computeRanking(period, now)
		if err != nil {
			return fmt.Errorf("refresh all %s: %w", period, err)
		}
		if len(entries) == 0 {
			continue
		}
		stats := make([]models.LeaderboardStat, len(entries))
		for i, e := range entries {
			stats[i] = models.LeaderboardStat{
				ID:     uuid.NewString(),
				UserID: e.ID,
				Period: period,
				Points: e.Points,
				Rank:   e.Rank,
			}
		}
		err = s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{"points", "rank", "updated_at"}),
		}).Create(&stats).Error
		if err != nil {
			return fmt.Errorf("refresh all %s: %w", period, err)
		}
	}
	return nil
}

func (s *StatsService) upsert(userID string, period models.Period, points int64, rank int) error {
	stat := models.LeaderboardStat{
		ID:     uuid.NewString(),
		UserID: userID,
		Period: period,
		Points: points,
		Rank:   rank,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "rank", "updated_at"}),
	}).Create(&stat).Error
}

// StartRefreshScheduler sweeps all snapshots on an interval so windowed
// leaderboards stay current even when no adjustments arrive.
func (s *StatsService) StartRefreshScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.RefreshAll(); err != nil {
				log.Printf("[Scheduler] Stats sweep failed: %v", err)
				return
			}
			log.Println("✅ Stats sweep complete")
		}),
	)
}
