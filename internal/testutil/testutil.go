// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"biolinks/internal/db"
	"biolinks/internal/models"
)

// SkipIfNoTestDB skips integration tests unless a database is configured.
func SkipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" && os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

// TestDB creates a migrated test database connection and returns a cleanup
// function. It uses TEST_DATABASE_URL when set, otherwise it starts a
// throwaway Postgres container.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()
	SkipIfNoTestDB(t)

	ctx := context.Background()

	connString := os.Getenv("TEST_DATABASE_URL")
	stopContainer := func() {}
	if connString == "" {
		connString, stopContainer = startPostgres(t, ctx)
	}

	database, err := db.New(ctx, connString, db.PoolOptions{MaxConns: 8})
	if err != nil {
		stopContainer()
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		stopContainer()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
		stopContainer()
	}

	return database, cleanup
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("biolinks_test"),
		tcpostgres.WithUsername("biolinks"),
		tcpostgres.WithPassword("biolinks"),
		tcpostgres.WithSQLDriver("pgx"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	return connString, func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM clicks")
	pool.Exec(ctx, "DELETE FROM links")
	pool.Exec(ctx, "DELETE FROM users")
}

// CreateTestUser creates an owner with the given slug and returns it.
func CreateTestUser(t *testing.T, database *db.DB, slug string) *models.User {
	t.Helper()

	user := &models.User{
		Sub:   "sub-" + slug,
		Email: slug + "@example.com",
		Name:  fmt.Sprintf("Test User %s", slug),
		Slug:  slug,
	}
	if err := database.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestLink inserts a link at the given order and returns it.
func CreateTestLink(t *testing.T, database *db.DB, ownerID uuid.UUID, title string, order int) *models.Link {
	t.Helper()

	link := &models.Link{
		UserID: ownerID,
		Title:  title,
		URL:    "https://example.com/" + title,
		Active: true,
		Order:  order,
	}
	if err := database.CreateLink(context.Background(), link); err != nil {
		t.Fatalf("failed to create test link: %v", err)
	}

	return link
}
