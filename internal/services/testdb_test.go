package services

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Folder{},
		&models.File{},
		&models.Document{},
		&models.Alert{},
		&models.ChatMessage{},
		&models.RefreshToken{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

// seedProject creates a project via the service so the owner membership and
// room code come from the real creation path.
func seedProject(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Project {
	t.Helper()

	project, err := NewProjectService(db).Create(&CreateProjectRequest{Name: name}, ownerID)
	if err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return project
}

func seedMembership(t *testing.T, db *gorm.DB, projectID, userID uint, role, status string) *models.Membership {
	t.Helper()

	m := models.Membership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Status:    status,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return &m
}

func assertStatus(t *testing.T, err error, wantStatus int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("status = %d, expected %d (%v)", appErr.HTTPStatus, wantStatus, err)
	}
}
