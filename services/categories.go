package services

import (
	"fmt"
	"regexp"
	"strings"

	"points-ledger-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryService owns category records. Only community-scoped categories can
// be created or deleted through it; the shared defaults are seeded once and
// stay put.
type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

// CreateCategory adds a community-scoped (never default) category.
func (s *CategoryService) CreateCategory(name, color, communityID string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !hexColorRe.MatchString(color) {
		return nil, fmt.Errorf("%w: color must be a #rrggbb hex value", ErrValidation)
	}
	if communityID == "" {
		return nil, fmt.Errorf("%w: community id is required", ErrValidation)
	}

	cat := models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Color:       color,
		CommunityID: &communityID,
		IsDefault:   false,
	}
	if err := s.DB.Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return &cat, nil
}

// DeleteCategory removes a community category. Defaults are not deletable.
// Transactions referencing the category are left untouched; history reads
// resolve them to a null category from then on.
func (s *CategoryService) DeleteCategory(id string) error {
	var cat models.Category
	err := s.DB.Where("id = ?", id).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return fmt.Errorf("%w: default categories cannot be deleted", ErrValidation)
	}
	return s.DB.Delete(&models.Category{}, "id = ?", id).Error
}

// GetCategory resolves a category by id.
func (s *CategoryService) GetCategory(id string) (*models.Category, error) {
	var cat models.Category
	err := s.DB.Where("id = ?", id).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns the community's own categories plus the shared
// defaults, defaults first.
func (s *CategoryService) ListCategories(communityID string) ([]models.Category, error) {
	var cats []models.Category
	err := s.DB.Where("community_id = ? OR is_default = ?", communityID, true).
		Order("is_default DESC, created_at DESC").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// defaultCategories seeded on first boot. Names/colors mirror the admin UI's
// starter set.
var defaultCategories = []struct {
	Name  string
	Color string
}{
	{"Engagement", "#3b82f6"},
	{"Contribution", "#22c55e"},
	{"Event", "#a855f7"},
	{"Bonus", "#f59e0b"},
}

// SeedDefaults inserts the shared default categories when none exist yet.
// Safe to call on every boot.
func (s *CategoryService) SeedDefaults() error {
	var count int64
	if err := s.DB.Model(&models.Category{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, d := range defaultCategories {
		cat := models.Category{
			ID:        uuid.NewString(),
			Name:      d.Name,
			Slug:      slug.Make(d.Name),
			Color:     d.Color,
			IsDefault: true,
		}
		if err := s.DB.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed default category %q: %w", d.Name, err)
		}
	}
	return nil
}
