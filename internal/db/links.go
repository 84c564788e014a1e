package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"biolinks/internal/models"
	"biolinks/internal/ordering"
)

const linkColumns = `id, user_id, title, url, active, "order", type, icon, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Title,
		&link.URL,
		&link.Active,
		&link.Order,
		&link.Type,
		&link.Icon,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &link, nil
}

// GetLinksByOwner returns all of an owner's links in display order.
// Equal orders are broken by the id's text form.
func (d *DB) GetLinksByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links WHERE user_id = $1
		ORDER BY "order" ASC, id::text ASC
	`

	rows, err := d.q(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}

	return links, mapError(rows.Err())
}

// GetLinkByID retrieves a link by ID, scoped to its owner.
func (d *DB) GetLinkByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1 AND user_id = $2`
	return scanLink(d.q(ctx).QueryRow(ctx, query, id, ownerID))
}

// CountLinks returns how many links an owner has.
func (d *DB) CountLinks(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := d.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE user_id = $1`, ownerID).Scan(&count)
	return count, mapError(err)
}

// CreateLink inserts a link. The caller decides its order.
func (d *DB) CreateLink(ctx context.Context, link *models.Link) error {
	if link.Type == "" {
		link.Type = models.PlatformRegular
	}

	query := `
		INSERT INTO links (user_id, title, url, active, "order", type, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := d.q(ctx).QueryRow(ctx, query,
		link.UserID,
		link.Title,
		link.URL,
		link.Active,
		link.Order,
		link.Type,
		link.Icon,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)

	return mapError(err)
}

// UpdateLink applies the non-nil fields of patch to an owner's link.
// Order is never written here; it only changes through BatchUpdateOrder.
func (d *DB) UpdateLink(ctx context.Context, ownerID, id uuid.UUID, patch models.LinkPatch) (*models.Link, error) {
	update := psql.Update("links").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING " + linkColumns)

	if patch.Title != nil {
		update = update.Set("title", *patch.Title)
	}
	if patch.URL != nil {
		update = update.Set("url", *patch.URL)
	}
	if patch.Active != nil {
		update = update.Set("active", *patch.Active)
	}
	if patch.Type != nil {
		update = update.Set("type", *patch.Type)
	}
	if patch.Icon != nil {
		update = update.Set("icon", *patch.Icon)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, err
	}

	return scanLink(d.q(ctx).QueryRow(ctx, query, args...))
}

// DeleteLink deletes an owner's link. Its clicks go with it.
func (d *DB) DeleteLink(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := d.q(ctx).Exec(ctx, `DELETE FROM links WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// BatchUpdateOrder writes each assignment guarded by owner. Assignments naming
// a link the owner does not have match no row and are skipped; the returned
// count says how many rows were written. Run it inside RunInTx so the batch
// commits or rolls back as one unit.
func (d *DB) BatchUpdateOrder(ctx context.Context, ownerID uuid.UUID, assignments []ordering.Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(
			`UPDATE links SET "order" = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
			a.Order, a.ID, ownerID,
		)
	}

	results := d.q(ctx).SendBatch(ctx, batch)

	var applied int64
	var execErr error
	for range assignments {
		tag, err := results.Exec()
		if err != nil {
			execErr = err
			break
		}
		applied += tag.RowsAffected()
	}

	closeErr := results.Close()
	if execErr != nil {
		return applied, mapError(execErr)
	}
	return applied, mapError(closeErr)
}
