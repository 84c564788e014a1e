package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"biolinks/internal/db"
	"biolinks/internal/models"
	"biolinks/internal/ordering"
	"biolinks/internal/testutil"
)

func TestCreateLink(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "creator")

	link := &models.Link{
		UserID: user.ID,
		Title:  "Blog",
		URL:    "https://example.com",
		Active: true,
		Order:  0,
	}
	if err := database.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	if link.ID == uuid.Nil {
		t.Error("CreateLink() did not set ID")
	}
	if link.Type != models.PlatformRegular {
		t.Errorf("CreateLink() type = %q, want %q", link.Type, models.PlatformRegular)
	}
}

func TestCreateLink_DuplicateOrderFailsAtCommit(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "dupes")
	testutil.CreateTestLink(t, database, user.ID, "first", 0)

	err := database.CreateLink(ctx, &models.Link{UserID: user.ID, Title: "second", URL: "https://example.com", Order: 0})
	if !errors.Is(err, db.ErrOrderConflict) {
		t.Errorf("CreateLink() error = %v, want ErrOrderConflict", err)
	}
}

func TestGetLinksByOwner_SortedAndScoped(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := testutil.CreateTestUser(t, database, "alice")
	bob := testutil.CreateTestUser(t, database, "bob")

	c := testutil.CreateTestLink(t, database, alice.ID, "c", 2)
	a := testutil.CreateTestLink(t, database, alice.ID, "a", 0)
	b := testutil.CreateTestLink(t, database, alice.ID, "b", 1)
	testutil.CreateTestLink(t, database, bob.ID, "other", 0)

	links, err := database.GetLinksByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetLinksByOwner() error = %v", err)
	}

	want := []uuid.UUID{a.ID, b.ID, c.ID}
	if len(links) != len(want) {
		t.Fatalf("GetLinksByOwner() returned %d links, want %d", len(links), len(want))
	}
	for i, id := range want {
		if links[i].ID != id {
			t.Errorf("links[%d] = %s, want %s", i, links[i].ID, id)
		}
	}
}

func TestGetLinkByID_OtherOwner(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := testutil.CreateTestUser(t, database, "alice")
	bob := testutil.CreateTestUser(t, database, "bob")
	link := testutil.CreateTestLink(t, database, alice.ID, "mine", 0)

	if _, err := database.GetLinkByID(ctx, bob.ID, link.ID); !errors.Is(err, db.ErrLinkNotFound) {
		t.Errorf("GetLinkByID() error = %v, want ErrLinkNotFound", err)
	}
}

func TestUpdateLink(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "updater")
	link := testutil.CreateTestLink(t, database, user.ID, "before", 0)

	title := "after"
	active := false
	updated, err := database.UpdateLink(ctx, user.ID, link.ID, models.LinkPatch{Title: &title, Active: &active})
	if err != nil {
		t.Fatalf("UpdateLink() error = %v", err)
	}

	if updated.Title != "after" {
		t.Errorf("UpdateLink() title = %q, want %q", updated.Title, "after")
	}
	if updated.Active {
		t.Error("UpdateLink() active = true, want false")
	}
	if updated.URL != link.URL {
		t.Errorf("UpdateLink() url = %q, want unchanged %q", updated.URL, link.URL)
	}
}

func TestDeleteLink(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := testutil.CreateTestUser(t, database, "alice")
	bob := testutil.CreateTestUser(t, database, "bob")
	link := testutil.CreateTestLink(t, database, alice.ID, "gone", 0)

	if err := database.DeleteLink(ctx, bob.ID, link.ID); !errors.Is(err, db.ErrLinkNotFound) {
		t.Errorf("DeleteLink() by other owner error = %v, want ErrLinkNotFound", err)
	}
	if err := database.DeleteLink(ctx, alice.ID, link.ID); err != nil {
		t.Fatalf("DeleteLink() error = %v", err)
	}
	if err := database.DeleteLink(ctx, alice.ID, link.ID); !errors.Is(err, db.ErrLinkNotFound) {
		t.Errorf("DeleteLink() twice error = %v, want ErrLinkNotFound", err)
	}
}

func TestBatchUpdateOrder_SwapInsideTransaction(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "swapper")
	a := testutil.CreateTestLink(t, database, user.ID, "a", 0)
	b := testutil.CreateTestLink(t, database, user.ID, "b", 1)

	var applied int64
	err := database.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		applied, err = database.BatchUpdateOrder(ctx, user.ID, []ordering.Assignment{
			{ID: a.ID, Order: 1},
			{ID: b.ID, Order: 0},
		})
		return err
	})
	if err != nil {
		t.Fatalf("BatchUpdateOrder() error = %v", err)
	}
	if applied != 2 {
		t.Errorf("BatchUpdateOrder() applied = %d, want 2", applied)
	}

	links, err := database.GetLinksByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLinksByOwner() error = %v", err)
	}
	if links[0].ID != b.ID || links[1].ID != a.ID {
		t.Errorf("order after swap = [%s %s], want [%s %s]", links[0].Title, links[1].Title, "b", "a")
	}
}

func TestBatchUpdateOrder_ForeignIDSkipped(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := testutil.CreateTestUser(t, database, "alice")
	bob := testutil.CreateTestUser(t, database, "bob")
	theirs := testutil.CreateTestLink(t, database, bob.ID, "theirs", 0)
	testutil.CreateTestLink(t, database, bob.ID, "theirs-too", 1)

	applied, err := database.BatchUpdateOrder(ctx, alice.ID, []ordering.Assignment{{ID: theirs.ID, Order: 5}})
	if err != nil {
		t.Fatalf("BatchUpdateOrder() error = %v", err)
	}
	if applied != 0 {
		t.Errorf("BatchUpdateOrder() applied = %d, want 0", applied)
	}

	got, err := database.GetLinkByID(ctx, bob.ID, theirs.ID)
	if err != nil {
		t.Fatalf("GetLinkByID() error = %v", err)
	}
	if got.Order != 0 {
		t.Errorf("foreign link order = %d, want 0", got.Order)
	}
}

func TestRunInTx_RollbackLeavesOrderUntouched(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "rollback")
	a := testutil.CreateTestLink(t, database, user.ID, "a", 0)
	testutil.CreateTestLink(t, database, user.ID, "b", 1)

	boom := errors.New("boom")
	err := database.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := database.BatchUpdateOrder(ctx, user.ID, []ordering.Assignment{{ID: a.ID, Order: 7}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx() error = %v, want boom", err)
	}

	got, err := database.GetLinkByID(ctx, user.ID, a.ID)
	if err != nil {
		t.Fatalf("GetLinkByID() error = %v", err)
	}
	if got.Order != 0 {
		t.Errorf("order after rollback = %d, want 0", got.Order)
	}
}

func TestRunInTx_DuplicateOrderRejectedAtCommit(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.CreateTestUser(t, database, "commit")
	a := testutil.CreateTestLink(t, database, user.ID, "a", 0)
	testutil.CreateTestLink(t, database, user.ID, "b", 1)

	err := database.RunInTx(ctx, func(ctx context.Context) error {
		_, err := database.BatchUpdateOrder(ctx, user.ID, []ordering.Assignment{{ID: a.ID, Order: 1}})
		return err
	})
	if !errors.Is(err, db.ErrOrderConflict) {
		t.Errorf("RunInTx() error = %v, want ErrOrderConflict", err)
	}
}
