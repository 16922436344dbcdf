package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"points-ledger-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the production schema.
// _txlock=immediate makes concurrent write transactions queue on the write
// lock instead of deadlocking on a shared-to-reserved upgrade, which mirrors
// how postgres serializes the row update.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate",
		filepath.Join(t.TempDir(), "ledger.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.PointTransaction{},
		&models.LeaderboardStat{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, whopID, username string) *models.User {
	t.Helper()
	user, err := NewMemberService(db).UpsertUser(whopID, models.UserProfile{Username: username})
	if err != nil {
		t.Fatalf("create user %s: %v", whopID, err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	cat, err := NewCategoryService(db).CreateCategory(name, "#3b82f6", "biz_test")
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return cat
}

func userBalance(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("load user %s: %v", userID, err)
	}
	return user.TotalPoints
}
