package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Link errors
	ErrLinkNotFound = errors.New("link not found")

	// ErrOrderConflict means a commit would leave two links of one owner at the same order.
	ErrOrderConflict = errors.New("link order conflict")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrSlugTaken    = errors.New("slug already taken")

	// ErrStoreUnavailable wraps connection failures and timeouts.
	ErrStoreUnavailable = errors.New("store unavailable")
)

const (
	codeUniqueViolation = "23505"
	codeForeignKey      = "23503"

	constraintUserOrder = "links_user_order_unique"
	constraintUserSlug  = "users_slug_key"
)

// mapError converts pgx/pgconn errors into the sentinels above.
// Context cancellation passes through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintUserOrder:
			return fmt.Errorf("%w: %s", ErrOrderConflict, pgErr.Message)
		case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintUserSlug:
			return ErrSlugTaken
		case pgErr.Code == codeForeignKey:
			return fmt.Errorf("%w: %s", ErrLinkNotFound, pgErr.Message)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return err
}
