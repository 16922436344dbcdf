package services

import (
	"fmt"
	"log"

	"points-ledger-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsNotifier receives the id of a user whose balance just changed so the
// leaderboard snapshots can be refreshed off the request path.
type StatsNotifier interface {
	Enqueue(userID string)
}

// LedgerService is the single entry point for balance changes. Every
// adjustment appends an immutable PointTransaction and updates the user's
// total_points in one database transaction; no other code path writes
// total_points.
type LedgerService struct {
	DB       *gorm.DB
	Notifier StatsNotifier // optional; nil disables refresh triggers
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// AddPoints credits amount (> 0) to the user.
func (s *LedgerService) AddPoints(userID string, amount int64, categoryID *string, reason, actorID string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return s.ApplyAdjustment(userID, amount, categoryID, reason, actorID)
}

// SubtractPoints debits amount (> 0) from the user. The balance floors at
// zero; the transaction still records the full -amount.
func (s *LedgerService) SubtractPoints(userID string, amount int64, categoryID *string, reason, actorID string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return s.ApplyAdjustment(userID, -amount, categoryID, reason, actorID)
}

// ApplyAdjustment records one signed adjustment. Append and balance update
// commit together or not at all, so a failed call leaves nothing behind and
// is safe to retry.
//
// The clamp runs server-side in a single UPDATE
// (CASE WHEN total_points + delta < 0 THEN 0 ELSE total_points + delta END),
// so concurrent adjustments to the same user serialize on the row lock and
// each step clamps against the balance it actually sees. Two -50/+80 steps on
// an empty balance therefore end at 80, not 30.
func (s *LedgerService) ApplyAdjustment(userID string, amount int64, categoryID *string, reason, actorID string) (*models.PointTransaction, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must not be zero", ErrValidation)
	}

	txn := models.PointTransaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     amount,
		CategoryID: categoryID,
		Reason:     reason,
		CreatedBy:  actorID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").Where("id = ?", userID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user %s", ErrNotFound, userID)
			}
			return err
		}

		if categoryID != nil {
			var count int64
			if err := tx.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: unknown category %s", ErrValidation, *categoryID)
			}
		}

		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("total_points", gorm.Expr(
				"CASE WHEN total_points + ? < 0 THEN 0 ELSE total_points + ? END",
				amount, amount,
			))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Enqueue(userID)
	}

	log.Printf("🧾 [LEDGER] user=%s amount=%+d category=%v actor=%s", userID, amount, categoryID, actorID)
	return &txn, nil
}

// GetHistory returns the user's most recent transactions, newest first, each
// joined with its category's current name and color. Both come back null when
// the category has since been deleted. Unknown users simply get an empty
// history.
func (s *LedgerService) GetHistory(userID string, limit int) ([]models.PointHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.PointHistoryEntry
	err := s.DB.Raw(`
		SELECT pt.*, c.name AS category_name, c.color AS category_color
		FROM point_transactions pt
		LEFT JOIN categories c ON c.id = pt.category_id
		WHERE pt.user_id = ?
		ORDER BY pt.created_at DESC, pt.id DESC
		LIMIT ?
	`, userID, limit).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
