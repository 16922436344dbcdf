// workers/member_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"points-ledger-system/models"
	"points-ledger-system/services"
)

// MemberSyncWorker mirrors the community's member list from the Whop API into
// the local users table so members show up on leaderboards before their first
// adjustment or webhook. Upserts never touch balances.
type MemberSyncWorker struct {
	members   *services.MemberService
	client    *services.WhopClient
	companyID string
	interval  time.Duration
}

func NewMemberSyncWorker(members *services.MemberService, client *services.WhopClient, companyID string) *MemberSyncWorker {
	return &MemberSyncWorker{
		members:   members,
		client:    client,
		companyID: companyID,
		interval:  5 * time.Minute,
	}
}

func (w *MemberSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Member Sync Worker (Whop API → users)…")
	go w.run(ctx)
}

func (w *MemberSyncWorker) run(ctx context.Context) {
	// Initial backfill, then poll.
	if err := w.syncOnce(ctx); err != nil {
		log.Printf("⚠️ Initial member sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncOnce(ctx); err != nil {
				log.Printf("❌ Member sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Member Sync Worker stopped")
			return
		}
	}
}

func (w *MemberSyncWorker) syncOnce(ctx context.Context) error {
	members, err := w.client.FetchMembers(ctx, w.companyID)
	if err != nil {
		return err
	}

	synced := 0
	for _, m := range members {
		if m.ID == "" {
			continue
		}
		_, err := w.members.UpsertUser(m.ID, models.UserProfile{
			Username:  m.Username,
			Email:     m.Email,
			AvatarURL: m.ProfilePicURL,
		})
		if err != nil {
			log.Printf("⚠️ [SYNC] upsert failed for member %s: %v", m.ID, err)
			continue
		}
		synced++
	}

	log.Printf("[SYNC] ✅ Synced %d/%d members for company %s", synced, len(members), w.companyID)
	return nil
}
