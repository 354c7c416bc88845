package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/marcodive/divesite/internal/apperror"
	"github.com/marcodive/divesite/internal/model"
)

func TestUpsertGoogle_CreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &model.User{
		GoogleID:  "g-123",
		Email:     "ana@example.com",
		Name:      "Ana",
		AvatarURL: "http://x/a.png",
	}
	if err := db.UpsertGoogle(ctx, user); err != nil {
		t.Fatalf("UpsertGoogle() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("UpsertGoogle() did not assign an internal ID")
	}
	firstID := user.ID

	// Second login with a changed avatar: same internal ID, new profile.
	again := &model.User{
		GoogleID:  "g-123",
		Email:     "ana@example.com",
		Name:      "Ana G.",
		AvatarURL: "http://x/b.png",
	}
	if err := db.UpsertGoogle(ctx, again); err != nil {
		t.Fatalf("UpsertGoogle() second call error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("internal ID changed across logins: %q vs %q", again.ID, firstID)
	}

	stored, err := db.GetByID(ctx, firstID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Name != "Ana G." {
		t.Errorf("Name = %q, want refreshed %q", stored.Name, "Ana G.")
	}
	if stored.AvatarURL != "http://x/b.png" {
		t.Errorf("AvatarURL = %q, want refreshed value", stored.AvatarURL)
	}
}

func TestCreateWithPassword_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{Email: "dive@example.com", Name: "D", PasswordHash: "hash"}
	if err := db.CreateWithPassword(ctx, u); err != nil {
		t.Fatalf("CreateWithPassword() error = %v", err)
	}

	dup := &model.User{Email: "dive@example.com", Name: "D2", PasswordHash: "hash2"}
	err := db.CreateWithPassword(ctx, dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate email: error = %v, want ErrConflict", err)
	}
}

func TestGetByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{Email: "dive@example.com", Name: "D", PasswordHash: "hash"}
	if err := db.CreateWithPassword(ctx, u); err != nil {
		t.Fatalf("CreateWithPassword() error = %v", err)
	}

	got, err := db.GetByEmail(ctx, "dive@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash not round-tripped")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
