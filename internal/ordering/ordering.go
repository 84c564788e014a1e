// Package ordering keeps an owner's links in a dense ascending order.
//
// Every function here is pure: callers load the current collection, ask for
// the assignments that realise an intent, and persist them as one unit.
// After each successful mutation the orders of an owner's n links are exactly
// 0..n-1.
package ordering

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"biolinks/internal/models"
)

// Assignment sets the order of one link.
type Assignment struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

// Append returns the order a new link receives when the owner already has count links.
func Append(count int) int {
	return count
}

// ComputeReorder maps each id in desired to its 0-based position.
// desired must be a permutation of current; otherwise an *IntentError wrapping
// ErrInvalidReorderIntent is returned and no assignments are produced.
func ComputeReorder(current, desired []uuid.UUID) ([]Assignment, error) {
	known := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		if _, ok := known[id]; !ok {
			return nil, &IntentError{Reason: ReasonForeign, ID: id}
		}
		if _, dup := seen[id]; dup {
			return nil, &IntentError{Reason: ReasonDuplicate, ID: id}
		}
		seen[id] = struct{}{}
	}

	if len(desired) != len(current) {
		for _, id := range current {
			if _, ok := seen[id]; !ok {
				return nil, &IntentError{Reason: ReasonMissing, ID: id}
			}
		}
		return nil, &IntentError{Reason: ReasonLength}
	}

	return Compact(desired), nil
}

// Compact numbers a sequence 0..n-1, preserving its relative order.
func Compact(sequence []uuid.UUID) []Assignment {
	assignments := make([]Assignment, len(sequence))
	for i, id := range sequence {
		assignments[i] = Assignment{ID: id, Order: i}
	}
	return assignments
}

// Move returns a copy of sequence with id relocated to index to.
// to is clamped into range.
func Move(sequence []uuid.UUID, id uuid.UUID, to int) ([]uuid.UUID, error) {
	from := slices.Index(sequence, id)
	if from < 0 {
		return nil, &IntentError{Reason: ReasonForeign, ID: id}
	}

	to = max(0, min(to, len(sequence)-1))

	moved := slices.Delete(slices.Clone(sequence), from, from+1)
	return slices.Insert(moved, to, id), nil
}

// FromAssignments converts explicit id/order pairs into a desired sequence.
// The pairs must cover every id in current exactly once and use each order in
// 0..n-1 exactly once.
func FromAssignments(current []uuid.UUID, assignments []Assignment) ([]uuid.UUID, error) {
	n := len(current)
	desired := make([]uuid.UUID, n)
	filled := make([]bool, n)

	for _, a := range assignments {
		if a.Order < 0 || a.Order >= n {
			if !slices.Contains(current, a.ID) {
				return nil, &IntentError{Reason: ReasonForeign, ID: a.ID}
			}
			return nil, &IntentError{Reason: ReasonOrderRange, ID: a.ID, Order: a.Order}
		}
		if filled[a.Order] {
			return nil, &IntentError{Reason: ReasonDuplicateOrder, ID: a.ID, Order: a.Order}
		}
		desired[a.Order] = a.ID
		filled[a.Order] = true
	}

	if len(assignments) != n {
		// Let ComputeReorder name the offending id where it can.
		ids := make([]uuid.UUID, len(assignments))
		for i, a := range assignments {
			ids[i] = a.ID
		}
		if _, err := ComputeReorder(current, ids); err != nil {
			return nil, err
		}
		return nil, &IntentError{Reason: ReasonLength}
	}

	if _, err := ComputeReorder(current, desired); err != nil {
		return nil, err
	}
	return desired, nil
}

// Diff drops assignments that would not change the stored order of a link.
func Diff(links []models.Link, assignments []Assignment) []Assignment {
	stored := make(map[uuid.UUID]int, len(links))
	for _, l := range links {
		stored[l.ID] = l.Order
	}

	var changed []Assignment
	for _, a := range assignments {
		if order, ok := stored[a.ID]; ok && order == a.Order {
			continue
		}
		changed = append(changed, a)
	}
	return changed
}

// Normalize returns the assignments that make links dense again while
// keeping their current relative order. It is used after a delete.
func Normalize(links []models.Link) []Assignment {
	return Diff(links, Compact(Sequence(links)))
}

// Sort orders links ascending by order. Equal orders, which only occur
// with corrupted data, are broken by the id's string form.
func Sort(links []models.Link) {
	slices.SortStableFunc(links, func(a, b models.Link) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// Sequence returns the ids of links in display order without modifying links.
func Sequence(links []models.Link) []uuid.UUID {
	sorted := slices.Clone(links)
	Sort(sorted)

	ids := make([]uuid.UUID, len(sorted))
	for i, l := range sorted {
		ids[i] = l.ID
	}
	return ids
}

// IsDense reports whether the orders of links are exactly 0..n-1.
func IsDense(links []models.Link) bool {
	seen := make([]bool, len(links))
	for _, l := range links {
		if l.Order < 0 || l.Order >= len(links) || seen[l.Order] {
			return false
		}
		seen[l.Order] = true
	}
	return true
}
