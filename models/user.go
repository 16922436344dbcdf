package models

import (
	"time"
)

// User is the local record for a community member. Identity comes from the
// platform: WhopUserID is set once (by webhook, member sync or first session)
// and never changes. TotalPoints is owned exclusively by the ledger service;
// nothing else may write it.
type User struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	WhopUserID string `gorm:"uniqueIndex;not null" json:"whop_user_id"`
	Username   string `gorm:"index;not null" json:"username"`
	Email      string `json:"email,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`

	// Running balance, clamped at zero. See services.LedgerService.
	TotalPoints int64 `gorm:"not null;default:0" json:"total_points"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserProfile carries the mutable profile fields accepted on upsert.
// TotalPoints is deliberately absent.
type UserProfile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}
