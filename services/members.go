package services

import (
	"fmt"

	"points-ledger-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberService owns user records and their identity constraints. Balances
// live on the same rows but are mutated only by LedgerService.
type MemberService struct {
	DB *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{DB: db}
}

// UpsertUser inserts a user keyed on whop_user_id or, when the identity
// already exists, updates the mutable profile fields. total_points is never
// touched on the update path. Idempotent under repeated identical calls.
func (s *MemberService) UpsertUser(whopUserID string, profile models.UserProfile) (*models.User, error) {
	if whopUserID == "" {
		return nil, fmt.Errorf("%w: whop user id is required", ErrValidation)
	}
	if profile.Username == "" {
		profile.Username = "User"
	}

	user := models.User{
		ID:         uuid.NewString(),
		WhopUserID: whopUserID,
		Username:   profile.Username,
		Email:      profile.Email,
		AvatarURL:  profile.AvatarURL,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "whop_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "avatar_url", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", whopUserID, err)
	}

	// Re-read: on conflict the generated ID above was discarded, and the
	// row carries the authoritative total_points.
	return s.GetUserByWhopID(whopUserID)
}

// GetUserByWhopID resolves a user by platform identity.
func (s *MemberService) GetUserByWhopID(whopUserID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("whop_user_id = ?", whopUserID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, whopUserID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID resolves a user by local id.
func (s *MemberService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every member, highest balance first, username as the
// tie-break so the order is stable.
func (s *MemberService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("total_points DESC, username ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
