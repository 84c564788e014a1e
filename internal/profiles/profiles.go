// Package profiles manages owner accounts: first-login provisioning with a
// unique public slug, and profile edits.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"biolinks/internal/db"
	"biolinks/internal/models"
	"biolinks/internal/validation"
)

var (
	// ErrSlugTaken means another owner already uses the slug.
	ErrSlugTaken = db.ErrSlugTaken

	// ErrSlugReserved means the slug collides with an application route.
	ErrSlugReserved = errors.New("slug is reserved")

	// ErrNotFound means the owner does not exist.
	ErrNotFound = db.ErrUserNotFound
)

// maxSlugAttempts bounds the suffixes tried when provisioning a slug.
const maxSlugAttempts = 20

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error)
}

// Identity is what the identity provider tells us about a user at login.
type Identity struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// Service implements profile operations.
type Service struct {
	store    Store
	reserved []string
	log      *slog.Logger
}

// NewService creates a Service. reserved extends the built-in reserved slugs.
func NewService(store Store, reserved []string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, reserved: reserved, log: log}
}

// Provision returns the user for id, creating them on first login with a
// free slug derived from their email or name.
func (s *Service) Provision(ctx context.Context, id Identity) (*models.User, error) {
	existing, err := s.store.GetUserBySub(ctx, id.Sub)
	switch {
	case err == nil:
		// Refresh the email only; profile fields belong to the owner.
		existing.Email = id.Email
		if err := s.store.UpsertUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("refresh user: %w", err)
		}
		return existing, nil
	case !errors.Is(err, db.ErrUserNotFound):
		return nil, fmt.Errorf("get user: %w", err)
	}

	base := validation.SlugFromName(slugSource(id))

	for attempt := range maxSlugAttempts {
		slug := candidate(base, attempt)
		if !s.slugAllowed(slug) {
			continue
		}

		taken, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if taken {
			continue
		}

		user := &models.User{
			Sub:    id.Sub,
			Email:  id.Email,
			Name:   id.Name,
			Slug:   slug,
			Avatar: id.Picture,
		}
		err = s.store.UpsertUser(ctx, user)
		if errors.Is(err, db.ErrSlugTaken) {
			// Claimed between the check and the insert.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

		s.log.InfoContext(ctx, "user provisioned",
			slog.String("user_id", user.ID.String()),
			slog.String("slug", user.Slug),
		)
		return user, nil
	}

	return nil, fmt.Errorf("%w: no free slug near %q", ErrSlugTaken, base)
}

// Update applies a profile patch for the owner.
func (s *Service) Update(ctx context.Context, ownerID uuid.UUID, patch models.ProfilePatch) (*models.User, error) {
	if patch.Slug != nil {
		slug := validation.NormalizeSlug(*patch.Slug)
		if !s.slugAllowed(slug) {
			return nil, ErrSlugReserved
		}
		patch.Slug = &slug
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}

	user, err := s.store.UpdateProfile(ctx, ownerID, patch)
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "profile updated", slog.String("user_id", ownerID.String()))
	return user, nil
}

// SlugAvailable reports whether slug could be claimed right now.
func (s *Service) SlugAvailable(ctx context.Context, slug string) (bool, error) {
	slug = validation.NormalizeSlug(slug)
	if !s.slugAllowed(slug) {
		return false, nil
	}
	taken, err := s.store.SlugExists(ctx, slug)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *Service) slugAllowed(slug string) bool {
	ok, _ := validation.ValidateSlug(slug, s.reserved)
	return ok
}

func slugSource(id Identity) string {
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		return local
	}
	if id.Name != "" {
		return id.Name
	}
	return id.Sub
}

// candidate returns base for the first attempt and base-N afterwards,
// trimming base so the result stays within the slug length limit.
func candidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	suffix := "-" + strconv.Itoa(attempt+1)
	if len(base)+len(suffix) > validation.MaxSlugLength {
		base = strings.TrimRight(base[:validation.MaxSlugLength-len(suffix)], "-")
	}
	return base + suffix
}
