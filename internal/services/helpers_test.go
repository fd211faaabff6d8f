package services

import (
	"fmt"
	"testing"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/database"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a per-test in-memory database to avoid cross-test
// interference.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, points int, staff bool) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Password: "x",
		Points:   points,
		IsStaff:  staff,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newItem(t *testing.T, db *gorm.DB, uploader models.User, pointValue *int) models.Item {
	t.Helper()
	item := models.Item{
		ID:               uuid.New(),
		UploaderID:       uploader.ID,
		Title:            "Denim jacket",
		Description:      "Lightly worn",
		PointValue:       pointValue,
		Available:        true,
		ModerationStatus: models.ModerationApproved,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id uuid.UUID) models.Item {
	t.Helper()
	var item models.Item
	require.NoError(t, db.First(&item, "id = ?", id).Error)
	return item
}

func reloadUser(t *testing.T, db *gorm.DB, id uuid.UUID) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", id).Error)
	return user
}

func reloadSwap(t *testing.T, db *gorm.DB, id uuid.UUID) models.Swap {
	t.Helper()
	var swap models.Swap
	require.NoError(t, db.First(&swap, "id = ?", id).Error)
	return swap
}

func intPtr(n int) *int { return &n }
