package models

import (
	"time"

	"github.com/google/uuid"
)

// Click is an append-only record of a visitor following a link.
type Click struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ClickTotal is the aggregate click count for one owner, used for metrics export.
type ClickTotal struct {
	Slug  string
	Count int64
}
