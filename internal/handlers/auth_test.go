package handlers

import (
	"testing"

	"coolpress/internal/db"
	"coolpress/internal/models"
)

// A failed CoolUser insert must roll the User insert back, otherwise the
// orphaned row blocks the username on the next signup attempt.
func TestCreateCoolUserRollsBackOnFailure(t *testing.T) {
	setupTestDB(t)

	if err := db.DB.Migrator().DropTable(&models.CoolUser{}); err != nil {
		t.Fatalf("Failed to drop cool_users: %v", err)
	}

	h := NewAuthHandler()
	if _, err := h.createCoolUser("orphan", "", "secret123"); err == nil {
		t.Fatal("Expected an error when the profile insert fails")
	}

	var userCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	if userCount != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", userCount)
	}
}

func TestCreateCoolUserDuplicateUsername(t *testing.T) {
	setupTestDB(t)

	h := NewAuthHandler()
	if _, err := h.createCoolUser("taken", "", "secret123"); err != nil {
		t.Fatalf("First signup failed: %v", err)
	}
	if _, err := h.createCoolUser("taken", "", "secret456"); err == nil {
		t.Fatal("Expected an error for a duplicate username")
	}

	var userCount, coolUserCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	db.DB.Model(&models.CoolUser{}).Count(&coolUserCount)
	if userCount != 1 || coolUserCount != 1 {
		t.Errorf("Expected exactly one account pair, got %d users / %d cool users", userCount, coolUserCount)
	}
}
