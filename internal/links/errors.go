package links

import (
	"errors"

	"biolinks/internal/db"
	"biolinks/internal/ordering"
)

var (
	// ErrNotFound means the link does not exist or belongs to another owner.
	ErrNotFound = db.ErrLinkNotFound

	// ErrProfileNotFound means no owner has the requested slug or id.
	ErrProfileNotFound = db.ErrUserNotFound

	// ErrStoreUnavailable means the store could not be reached.
	ErrStoreUnavailable = db.ErrStoreUnavailable

	// ErrInvalidReorderIntent means a requested ordering is not a permutation
	// of the owner's links. Nothing is written.
	ErrInvalidReorderIntent = ordering.ErrInvalidReorderIntent

	// ErrPartialBatchFailure means a batch of order writes did not apply as a
	// whole. The transaction is rolled back and clients should refetch.
	ErrPartialBatchFailure = errors.New("partial batch failure")

	// ErrStaleVersion means the caller reordered from an outdated snapshot.
	ErrStaleVersion = errors.New("links changed since last read")
)
