package models

import (
	"time"
)

// PointTransaction is the immutable audit record for one balance adjustment.
// Amount is the full requested delta, positive or negative, never zero. The
// balance clamp happens on users.total_points, not here: a -150 withdrawal
// against a balance of 100 is still recorded as -150, so the sum of amounts
// can legitimately exceed the stored balance.
//
// CategoryID is a plain reference on purpose (no FK constraint): deleting a
// category must leave its transactions intact with a dangling id that readers
// render as "category removed".
type PointTransaction struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	CategoryID *string   `gorm:"index" json:"category_id,omitempty"`
	Reason     string    `gorm:"type:text" json:"reason,omitempty"`
	CreatedBy  string    `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PointHistoryEntry is a PointTransaction joined with its category's current
// name and color for display. Both are nil when the category was deleted.
type PointHistoryEntry struct {
	PointTransaction
	CategoryName  *string `json:"category_name"`
	CategoryColor *string `json:"category_color"`
}
