package ordering

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidReorderIntent is returned when a desired ordering is not a
// permutation of the owner's current links.
var ErrInvalidReorderIntent = errors.New("invalid reorder intent")

// Reasons reported by IntentError.
const (
	ReasonForeign        = "foreign"         // id does not belong to the current sequence
	ReasonDuplicate      = "duplicate"       // id appears more than once
	ReasonMissing        = "missing"         // current id absent from the desired sequence
	ReasonLength         = "length"          // sequence lengths differ
	ReasonOrderRange     = "order_range"     // order outside 0..n-1
	ReasonDuplicateOrder = "duplicate_order" // two ids claim the same order
)

// IntentError describes why a reorder intent was rejected.
type IntentError struct {
	Reason string
	ID     uuid.UUID
	Order  int
}

func (e *IntentError) Error() string {
	switch e.Reason {
	case ReasonLength:
		return fmt.Sprintf("%s: sequence length mismatch", ErrInvalidReorderIntent)
	case ReasonOrderRange, ReasonDuplicateOrder:
		return fmt.Sprintf("%s: %s %d for link %s", ErrInvalidReorderIntent, e.Reason, e.Order, e.ID)
	default:
		return fmt.Sprintf("%s: %s link %s", ErrInvalidReorderIntent, e.Reason, e.ID)
	}
}

func (e *IntentError) Unwrap() error {
	return ErrInvalidReorderIntent
}
