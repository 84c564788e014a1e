// Package links manages an owner's ordered collection of links.
//
// Every mutation runs in one transaction that first locks the owner, so
// concurrent edits of the same collection apply one after another and the
// orders stay exactly 0..n-1.
package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"biolinks/internal/db"
	"biolinks/internal/metrics"
	"biolinks/internal/models"
	"biolinks/internal/ordering"
	"biolinks/internal/platforms"
)

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	LockOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	GetLinksVersion(ctx context.Context, ownerID uuid.UUID) (int64, error)
	BumpLinksVersion(ctx context.Context, ownerID uuid.UUID) (int64, error)

	GetLinksByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error)
	GetLinkByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error)
	CountLinks(ctx context.Context, ownerID uuid.UUID) (int, error)
	CreateLink(ctx context.Context, link *models.Link) error
	UpdateLink(ctx context.Context, ownerID, id uuid.UUID, patch models.LinkPatch) (*models.Link, error)
	DeleteLink(ctx context.Context, ownerID, id uuid.UUID) error
	BatchUpdateOrder(ctx context.Context, ownerID uuid.UUID, assignments []ordering.Assignment) (int64, error)

	GetUserBySlug(ctx context.Context, slug string) (*models.User, error)
}

// TxRunner runs fn in a transaction carried by the context it receives.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClickCounter supplies the click count of a link.
type ClickCounter interface {
	CountClicksForLink(ctx context.Context, linkID uuid.UUID) (int64, error)
}

// Service implements link management for authenticated owners and the
// public page projection for visitors.
type Service struct {
	store     Store
	tx        TxRunner
	clicks    ClickCounter
	platforms *platforms.Catalog
	log       *slog.Logger
}

// NewService creates a Service. A nil catalog uses the built-in platforms.
func NewService(store Store, tx TxRunner, clicks ClickCounter, catalog *platforms.Catalog, log *slog.Logger) *Service {
	if catalog == nil {
		catalog = platforms.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     store,
		tx:        tx,
		clicks:    clicks,
		platforms: catalog,
		log:       log,
	}
}

// List returns the owner's links in display order.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	links, err := s.store.GetLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	ordering.Sort(links)
	return links, nil
}

// Get returns one of the owner's links.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error) {
	return s.store.GetLinkByID(ctx, ownerID, id)
}

// Create appends a new link to the end of the owner's collection.
// Any order in the input is ignored.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input models.LinkInput) (*models.Link, error) {
	linkType, icon, err := s.platforms.Resolve(input.Type, input.Icon, input.URL)
	if err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	link := &models.Link{
		UserID: ownerID,
		Title:  input.Title,
		URL:    input.URL,
		Active: active,
		Type:   linkType,
		Icon:   icon,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.LockOwner(ctx, ownerID); err != nil {
			return err
		}

		count, err := s.store.CountLinks(ctx, ownerID)
		if err != nil {
			return err
		}
		link.Order = ordering.Append(count)

		if err := s.store.CreateLink(ctx, link); err != nil {
			return err
		}

		_, err = s.store.BumpLinksVersion(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, s.mutationError("create link", err)
	}

	s.log.DebugContext(ctx, "link created",
		slog.String("user_id", ownerID.String()),
		slog.String("link_id", link.ID.String()),
		slog.Int("order", link.Order),
	)

	return link, nil
}

// Update changes the content fields of a link. Order cannot be set here;
// a patch carrying one is rejected with ErrInvalidReorderIntent.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, patch models.LinkPatch) (*models.Link, error) {
	if patch.Order != nil {
		return nil, fmt.Errorf("%w: order changes through reorder", ErrInvalidReorderIntent)
	}

	var updated *models.Link
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetLinkByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		if patch.Type != nil || patch.URL != nil {
			url := current.URL
			if patch.URL != nil {
				url = *patch.URL
			}
			linkType := current.Type
			if patch.Type != nil {
				linkType = *patch.Type
			}
			if err := s.platforms.Validate(linkType, url); err != nil {
				return err
			}
		}

		if patch.IsEmpty() {
			updated = current
			return nil
		}

		updated, err = s.store.UpdateLink(ctx, ownerID, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Toggle flips whether a link is shown on the public page.
func (s *Service) Toggle(ctx context.Context, ownerID, id uuid.UUID) (*models.Link, error) {
	var updated *models.Link
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetLinkByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		active := !current.Active
		updated, err = s.store.UpdateLink(ctx, ownerID, id, models.LinkPatch{Active: &active})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "link toggled",
		slog.String("user_id", ownerID.String()),
		slog.String("link_id", id.String()),
		slog.Bool("active", updated.Active),
	)

	return updated, nil
}

// Delete removes a link and closes the gap it leaves in the same transaction.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.LockOwner(ctx, ownerID); err != nil {
			return err
		}

		if err := s.store.DeleteLink(ctx, ownerID, id); err != nil {
			return err
		}

		remaining, err := s.store.GetLinksByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		if err := s.apply(ctx, ownerID, remaining, ordering.Normalize(remaining)); err != nil {
			return err
		}

		_, err = s.store.BumpLinksVersion(ctx, ownerID)
		return err
	})
	if err != nil {
		return s.mutationError("delete link", err)
	}

	s.log.DebugContext(ctx, "link deleted",
		slog.String("user_id", ownerID.String()),
		slog.String("link_id", id.String()),
	)

	return nil
}

// Reorder puts the owner's links in the order of desired, which must name
// every link exactly once. When expectedVersion is set it must match the
// stored version. Returns the confirmed management view.
func (s *Service) Reorder(ctx context.Context, ownerID uuid.UUID, desired []uuid.UUID, expectedVersion *int64) (*models.ManagementView, error) {
	return s.reorder(ctx, ownerID, expectedVersion, func([]uuid.UUID) ([]uuid.UUID, error) {
		return desired, nil
	})
}

// ApplyAssignments reorders from explicit id/order pairs. The pairs must form
// a permutation of the owner's links over orders 0..n-1.
func (s *Service) ApplyAssignments(ctx context.Context, ownerID uuid.UUID, assignments []ordering.Assignment, expectedVersion *int64) (*models.ManagementView, error) {
	return s.reorder(ctx, ownerID, expectedVersion, func(current []uuid.UUID) ([]uuid.UUID, error) {
		return ordering.FromAssignments(current, assignments)
	})
}

// Move relocates one link to position to, shifting the others.
func (s *Service) Move(ctx context.Context, ownerID, id uuid.UUID, to int, expectedVersion *int64) (*models.ManagementView, error) {
	return s.reorder(ctx, ownerID, expectedVersion, func(current []uuid.UUID) ([]uuid.UUID, error) {
		if !containsID(current, id) {
			return nil, ErrNotFound
		}
		return ordering.Move(current, id, to)
	})
}

// reorder runs the shared protocol: lock, check version, validate intent on
// the locked snapshot, write only the rows that change, verify, bump.
func (s *Service) reorder(
	ctx context.Context,
	ownerID uuid.UUID,
	expectedVersion *int64,
	intent func(current []uuid.UUID) ([]uuid.UUID, error),
) (*models.ManagementView, error) {
	var changed int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		version, err := s.store.LockOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != version {
			return fmt.Errorf("%w: have %d, stored %d", ErrStaleVersion, *expectedVersion, version)
		}

		links, err := s.store.GetLinksByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		current := ordering.Sequence(links)

		desired, err := intent(current)
		if err != nil {
			return err
		}

		assignments, err := ordering.ComputeReorder(current, desired)
		if err != nil {
			return err
		}

		diff := ordering.Diff(links, assignments)
		changed = len(diff)
		if changed == 0 {
			return nil
		}

		if err := s.apply(ctx, ownerID, links, diff); err != nil {
			return err
		}

		_, err = s.store.BumpLinksVersion(ctx, ownerID)
		return err
	})
	if err != nil {
		metrics.RecordReorder(reorderOutcome(err))
		return nil, s.mutationError("reorder links", err)
	}

	metrics.RecordReorder(metrics.ReorderApplied)
	s.log.DebugContext(ctx, "links reordered",
		slog.String("user_id", ownerID.String()),
		slog.Int("changed", changed),
	)

	return s.ManagementView(ctx, ownerID)
}

// apply writes assignments and checks that every row was written and the
// collection ended up dense. Must run inside a transaction.
func (s *Service) apply(ctx context.Context, ownerID uuid.UUID, before []models.Link, assignments []ordering.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	applied, err := s.store.BatchUpdateOrder(ctx, ownerID, assignments)
	if err != nil {
		return err
	}
	if applied != int64(len(assignments)) {
		return fmt.Errorf("%w: applied %d of %d order writes", ErrPartialBatchFailure, applied, len(assignments))
	}

	after := make([]models.Link, len(before))
	copy(after, before)
	orders := make(map[uuid.UUID]int, len(assignments))
	for _, a := range assignments {
		orders[a.ID] = a.Order
	}
	for i := range after {
		if order, ok := orders[after[i].ID]; ok {
			after[i].Order = order
		}
	}
	if !ordering.IsDense(after) {
		return fmt.Errorf("%w: orders not dense after write", ErrPartialBatchFailure)
	}

	return nil
}

// mutationError turns a commit-time order conflict into ErrPartialBatchFailure.
func (s *Service) mutationError(op string, err error) error {
	if errors.Is(err, db.ErrOrderConflict) {
		s.log.Warn(op+": order conflict at commit", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrPartialBatchFailure, err)
	}
	return err
}

func reorderOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidReorderIntent), errors.Is(err, ErrNotFound):
		return metrics.ReorderRejected
	case errors.Is(err, ErrStaleVersion):
		return metrics.ReorderStale
	case errors.Is(err, ErrPartialBatchFailure), errors.Is(err, db.ErrOrderConflict):
		return metrics.ReorderPartial
	default:
		return metrics.ReorderFailed
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
