package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"biolinks/internal/models"
)

const userColumns = `id, sub, email, name, slug, bio, avatar, theme_color, links_version, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Sub,
		&user.Email,
		&user.Name,
		&user.Slug,
		&user.Bio,
		&user.Avatar,
		&user.ThemeColor,
		&user.LinksVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// UpsertUser creates a user on first login or refreshes the email of an
// existing one. Profile fields the owner has edited are left alone.
// A new user needs a Slug; ErrSlugTaken is returned when it is in use.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ThemeColor == "" {
		user.ThemeColor = models.DefaultThemeColor
	}

	query := `
		INSERT INTO users (sub, email, name, slug, avatar, theme_color)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sub) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING ` + userColumns

	created, err := scanUser(d.q(ctx).QueryRow(ctx, query,
		user.Sub,
		user.Email,
		user.Name,
		user.Slug,
		user.Avatar,
		user.ThemeColor,
	))
	if err != nil {
		return err
	}

	*user = *created
	return nil
}

// GetUserBySub retrieves a user by their OIDC subject identifier.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	return scanUser(d.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE sub = $1`, sub))
}

// GetUserBySlug retrieves the owner of a public page.
func (d *DB) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	return scanUser(d.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE slug = $1`, slug))
}

// SlugExists reports whether a slug is already claimed.
func (d *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := d.q(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE slug = $1)`, slug).Scan(&exists)
	return exists, mapError(err)
}

// UpdateProfile applies the non-nil fields of patch.
func (d *DB) UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error) {
	update := psql.Update("users").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns)

	if patch.Name != nil {
		update = update.Set("name", *patch.Name)
	}
	if patch.Bio != nil {
		update = update.Set("bio", *patch.Bio)
	}
	if patch.Avatar != nil {
		update = update.Set("avatar", *patch.Avatar)
	}
	if patch.ThemeColor != nil {
		update = update.Set("theme_color", *patch.ThemeColor)
	}
	if patch.Slug != nil {
		update = update.Set("slug", *patch.Slug)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, err
	}

	return scanUser(d.q(ctx).QueryRow(ctx, query, args...))
}

// DeleteUser removes a user; their links and clicks are deleted by cascade.
func (d *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := d.q(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LockOwner takes a row lock on the owner for the rest of the surrounding
// transaction and returns their current links version. Every mutation of an
// owner's links takes this lock first, so they apply one at a time.
func (d *DB) LockOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var version int64
	err := d.q(ctx).QueryRow(ctx,
		`SELECT links_version FROM users WHERE id = $1 FOR UPDATE`, ownerID,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return version, mapError(err)
}

// GetLinksVersion returns the owner's links version without locking.
func (d *DB) GetLinksVersion(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var version int64
	err := d.q(ctx).QueryRow(ctx, `SELECT links_version FROM users WHERE id = $1`, ownerID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return version, mapError(err)
}

// BumpLinksVersion increments and returns the owner's links version.
func (d *DB) BumpLinksVersion(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var version int64
	err := d.q(ctx).QueryRow(ctx,
		`UPDATE users SET links_version = links_version + 1 WHERE id = $1 RETURNING links_version`, ownerID,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return version, mapError(err)
}
