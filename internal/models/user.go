package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultThemeColor is applied to new profiles.
const DefaultThemeColor = "#6366f1"

// User represents a profile owner authenticated via OIDC.
type User struct {
	ID           uuid.UUID `json:"id"`
	Sub          string    `json:"-"` // OIDC subject identifier
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar"`
	ThemeColor   string    `json:"theme_color"`
	LinksVersion int64     `json:"links_version"` // bumped on every change to link order
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the name, or the slug when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Slug
}

// ProfilePatch carries the optional fields of a profile update. Nil means unchanged.
type ProfilePatch struct {
	Name       *string `json:"name" validate:"omitnil,min=2"`
	Bio        *string `json:"bio" validate:"omitnil,max=500"`
	Avatar     *string `json:"avatar" validate:"omitempty,httpurl"`
	ThemeColor *string `json:"themeColor" validate:"omitnil,hexcolor,len=7"`
	Slug       *string `json:"slug" validate:"omitnil,slug"`
}

// IsEmpty returns true if the patch changes nothing.
func (p *ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.Avatar == nil && p.ThemeColor == nil && p.Slug == nil
}
