package services

import (
	"errors"
	"testing"

	"points-ledger-system/models"
)

func TestCreateCategory(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	cat, err := categories.CreateCategory("Event Night", "#a855f7", "biz_1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cat.IsDefault {
		t.Fatal("community categories must never be default")
	}
	if cat.Slug != "event-night" {
		t.Fatalf("slug: got %q, want %q", cat.Slug, "event-night")
	}
	if cat.CommunityID == nil || *cat.CommunityID != "biz_1" {
		t.Fatalf("community id: got %v, want biz_1", cat.CommunityID)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	tests := []struct {
		name      string
		catName   string
		color     string
		community string
	}{
		{"empty name", "", "#ffffff", "biz_1"},
		{"whitespace name", "   ", "#ffffff", "biz_1"},
		{"bad color", "Bonus", "red", "biz_1"},
		{"short hex", "Bonus", "#fff", "biz_1"},
		{"no community", "Bonus", "#ffffff", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := categories.CreateCategory(tt.catName, tt.color, tt.community)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestDeleteDefaultCategoryNotPermitted(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	if err := categories.SeedDefaults(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var def models.Category
	if err := db.Where("is_default = ?", true).First(&def).Error; err != nil {
		t.Fatalf("load default: %v", err)
	}

	if err := categories.DeleteCategory(def.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("delete default: got %v, want ErrValidation", err)
	}

	// Store unchanged.
	if _, err := categories.GetCategory(def.ID); err != nil {
		t.Fatalf("default category vanished: %v", err)
	}
}

func TestDeleteCategoryUnknown(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	if err := categories.DeleteCategory("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	if err := categories.SeedDefaults(); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := categories.SeedDefaults(); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Category{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(defaultCategories)) {
		t.Fatalf("default categories: got %d, want %d", count, len(defaultCategories))
	}
}

func TestListCategoriesScoping(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryService(db)

	if err := categories.SeedDefaults(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := categories.CreateCategory("Ours", "#111111", "biz_1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := categories.CreateCategory("Theirs", "#222222", "biz_2"); err != nil {
		t.Fatalf("create: %v", err)
	}

	cats, err := categories.ListCategories("biz_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != len(defaultCategories)+1 {
		t.Fatalf("visible categories: got %d, want %d", len(cats), len(defaultCategories)+1)
	}
	for _, c := range cats {
		if c.Name == "Theirs" {
			t.Fatal("another community's category leaked into the listing")
		}
	}
	// Defaults listed first.
	if !cats[0].IsDefault {
		t.Fatalf("expected defaults first, got %+v", cats[0])
	}
}
