package db

import (
	"context"

	"github.com/google/uuid"

	"biolinks/internal/models"
)

// RecordClick appends a click for an active link. Unknown or inactive links
// return ErrLinkNotFound and store nothing.
func (d *DB) RecordClick(ctx context.Context, linkID uuid.UUID) error {
	result, err := d.q(ctx).Exec(ctx, `
		INSERT INTO clicks (link_id)
		SELECT id FROM links WHERE id = $1 AND active
	`, linkID)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// CountClicksByLinks returns click counts keyed by link id. Links without
// clicks are absent from the map.
func (d *DB) CountClicksByLinks(ctx context.Context, linkIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(linkIDs))
	if len(linkIDs) == 0 {
		return counts, nil
	}

	rows, err := d.q(ctx).Query(ctx, `
		SELECT link_id, COUNT(*) FROM clicks
		WHERE link_id = ANY($1)
		GROUP BY link_id
	`, linkIDs)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, mapError(err)
		}
		counts[id] = count
	}

	return counts, mapError(rows.Err())
}

// GetClickTotalsBySlug returns total clicks per owner for metrics export.
func (d *DB) GetClickTotalsBySlug(ctx context.Context) ([]models.ClickTotal, error) {
	rows, err := d.q(ctx).Query(ctx, `
		SELECT u.slug, COUNT(c.id)
		FROM users u
		JOIN links l ON l.user_id = u.id
		JOIN clicks c ON c.link_id = l.id
		GROUP BY u.slug
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var totals []models.ClickTotal
	for rows.Next() {
		var t models.ClickTotal
		if err := rows.Scan(&t.Slug, &t.Count); err != nil {
			return nil, mapError(err)
		}
		totals = append(totals, t)
	}
	return totals, mapError(rows.Err())
}
