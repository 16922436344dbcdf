package models

import (
	"time"
)

// Category labels point transactions. Default categories (CommunityID null,
// IsDefault true) are seeded at startup, visible to every community and not
// deletable. Community-created categories are scoped to one community.
type Category struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"index" json:"slug"`
	Color       string    `gorm:"not null" json:"color"`
	CommunityID *string   `gorm:"index" json:"community_id,omitempty"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
