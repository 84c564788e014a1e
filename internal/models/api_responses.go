package models

import "github.com/google/uuid"

// ManagementView is the owner-facing projection of the link collection.
type ManagementView struct {
	Version int64            `json:"version"`
	Links   []LinkWithClicks `json:"links"`
}

// PublicLink is the visitor-facing projection of a single active link.
// It carries no owner fields, order or counts.
type PublicLink struct {
	ID    uuid.UUID `json:"id"` // needed for click tracking
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Type  string    `json:"type"`
	Icon  string    `json:"icon,omitempty"`
}

// PublicProfile is the anonymous view of a profile page.
type PublicProfile struct {
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	Bio        string       `json:"bio"`
	Avatar     string       `json:"avatar"`
	ThemeColor string       `json:"theme_color"`
	Links      []PublicLink `json:"links"`
}

// ReorderRequest is the body of a reorder call. Either IDs (the desired sequence)
// or Links (explicit id/order pairs) must be set.
type ReorderRequest struct {
	IDs     []uuid.UUID       `json:"ids"`
	Links   []OrderAssignment `json:"links" validate:"dive"`
	Version *int64            `json:"version"`
}

// OrderAssignment pairs a link id with its desired position.
type OrderAssignment struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Order int       `json:"order" validate:"min=0"`
}

// MoveRequest is the body of a single-link move.
type MoveRequest struct {
	To      int    `json:"to" validate:"min=0"`
	Version *int64 `json:"version"`
}

// ClickRequest is the body of the click tracking endpoint.
type ClickRequest struct {
	LinkID uuid.UUID `json:"linkId" validate:"required"`
}
