// workers/stats_refresh_worker.go
package workers

import (
	"context"
	"log"

	"points-ledger-system/services"
)

// StatsRefreshWorker decouples leaderboard snapshot refreshes from the
// adjustment path. The ledger enqueues a user id after each committed
// adjustment; this worker drains the queue and recomputes that user's
// snapshots. Because the refresh re-reads the database after the commit, a
// snapshot always reflects a balance at least as new as the adjustment that
// triggered it.
type StatsRefreshWorker struct {
	stats *services.StatsService
	queue chan string
}

func NewStatsRefreshWorker(stats *services.StatsService) *StatsRefreshWorker {
	return &StatsRefreshWorker{
		stats: stats,
		queue: make(chan string, 256),
	}
}

// Enqueue requests a refresh for one user. Non-blocking: when the queue is
// full the request is dropped, which is fine because the periodic sweep
// catches up and the next adjustment re-enqueues anyway.
func (w *StatsRefreshWorker) Enqueue(userID string) {
	select {
	case w.queue <- userID:
	default:
		log.Printf("⚠️ [STATS] refresh queue full, dropping refresh for %s", userID)
	}
}

func (w *StatsRefreshWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Stats Refresh Worker (ledger → leaderboard_stats)…")
	go w.run(ctx)
}

func (w *StatsRefreshWorker) run(ctx context.Context) {
	for {
		select {
		case userID := <-w.queue:
			if err := w.stats.Refresh(userID); err != nil {
				log.Printf("❌ [STATS] refresh failed for %s: %v", userID, err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Stats Refresh Worker stopped")
			return
		}
	}
}
