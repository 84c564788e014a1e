package db_test

import (
	"context"
	"errors"
	"testing"

	"biolinks/internal/db"
	"biolinks/internal/models"
	"biolinks/internal/testutil"
)

func TestUpsertUser(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{Sub: "sub-1", Email: "one@example.com", Name: "One", Slug: "one"}
	if err := database.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if user.ThemeColor != models.DefaultThemeColor {
		t.Errorf("UpsertUser() theme = %q, want %q", user.ThemeColor, models.DefaultThemeColor)
	}

	// A second login refreshes the email but keeps the profile.
	again := &models.User{Sub: "sub-1", Email: "new@example.com", Name: "Ignored", Slug: "ignored"}
	if err := database.UpsertUser(ctx, again); err != nil {
		t.Fatalf("UpsertUser() second call error = %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("UpsertUser() id = %s, want %s", again.ID, user.ID)
	}
	if again.Email != "new@example.com" {
		t.Errorf("UpsertUser() email = %q, want new@example.com", again.Email)
	}
	if again.Slug != "one" || again.Name != "One" {
		t.Errorf("UpsertUser() overwrote profile: slug=%q name=%q", again.Slug, again.Name)
	}
}

func TestUpsertUser_SlugTaken(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	testutil.CreateTestUser(t, database, "taken")

	err := database.UpsertUser(ctx, &models.User{Sub: "someone-else", Email: "x@example.com", Slug: "taken"})
	if !errors.Is(err, db.ErrSlugTaken) {
		t.Errorf("UpsertUser() error = %v, want ErrSlugTaken", err)
	}
}

func TestGetUserBySlug(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "findme")

	got, err := database.GetUserBySlug(ctx, "findme")
	if err != nil {
		t.Fatalf("GetUserBySlug() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetUserBySlug() id = %s, want %s", got.ID, user.ID)
	}

	if _, err := database.GetUserBySlug(ctx, "nobody"); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("GetUserBySlug() error = %v, want ErrUserNotFound", err)
	}
}

func TestSlugExists(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	testutil.CreateTestUser(t, database, "exists")

	tests := []struct {
		slug string
		want bool
	}{
		{"exists", true},
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			got, err := database.SlugExists(ctx, tt.slug)
			if err != nil {
				t.Fatalf("SlugExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SlugExists(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "profile")
	other := testutil.CreateTestUser(t, database, "other")

	bio := "hello"
	color := "#112233"
	updated, err := database.UpdateProfile(ctx, user.ID, models.ProfilePatch{Bio: &bio, ThemeColor: &color})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Bio != "hello" || updated.ThemeColor != "#112233" {
		t.Errorf("UpdateProfile() = bio %q color %q", updated.Bio, updated.ThemeColor)
	}

	slug := other.Slug
	if _, err := database.UpdateProfile(ctx, user.ID, models.ProfilePatch{Slug: &slug}); !errors.Is(err, db.ErrSlugTaken) {
		t.Errorf("UpdateProfile() slug error = %v, want ErrSlugTaken", err)
	}
}

func TestDeleteUser_CascadesLinks(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "leaving")
	link := testutil.CreateTestLink(t, database, user.ID, "a", 0)
	if err := database.RecordClick(ctx, link.ID); err != nil {
		t.Fatalf("RecordClick() error = %v", err)
	}

	if err := database.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	count, err := database.CountLinks(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountLinks() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountLinks() after delete = %d, want 0", count)
	}
}

func TestLinksVersion(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "versioned")

	var locked, bumped int64
	err := database.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if locked, err = database.LockOwner(ctx, user.ID); err != nil {
			return err
		}
		bumped, err = database.BumpLinksVersion(ctx, user.ID)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx() error = %v", err)
	}
	if locked != 0 || bumped != 1 {
		t.Errorf("versions = (%d, %d), want (0, 1)", locked, bumped)
	}

	got, err := database.GetLinksVersion(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLinksVersion() error = %v", err)
	}
	if got != 1 {
		t.Errorf("GetLinksVersion() = %d, want 1", got)
	}
}
