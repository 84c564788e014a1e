package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform type constants.
const (
	PlatformRegular   = "regular"
	PlatformInstagram = "instagram"
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
)

// PlatformTypes lists every accepted link type.
var PlatformTypes = []string{
	PlatformRegular,
	PlatformInstagram,
	PlatformTwitter,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformTikTok,
	PlatformYouTube,
}

// IsPlatformType reports whether t is one of PlatformTypes.
func IsPlatformType(t string) bool {
	for _, p := range PlatformTypes {
		if p == t {
			return true
		}
	}
	return false
}

// Link is an outbound link owned by exactly one user.
type Link struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	Order     int       `json:"order"`
	Type      string    `json:"type"`
	Icon      *string   `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSocial returns true if the link points at a known social platform.
func (l *Link) IsSocial() bool {
	return l.Type != "" && l.Type != PlatformRegular
}

// IconName returns the icon reference, falling back to the link type.
func (l *Link) IconName() string {
	if l.Icon != nil && *l.Icon != "" {
		return *l.Icon
	}
	if l.IsSocial() {
		return l.Type
	}
	return ""
}

// LinkWithClicks is a link annotated with its click count for the owner dashboard.
type LinkWithClicks struct {
	Link
	Clicks int64 `json:"clicks"`
}

// LinkInput carries the fields accepted when creating a link.
type LinkInput struct {
	Title  string  `json:"title" validate:"required,title"`
	URL    string  `json:"url" validate:"required,httpurl"`
	Active *bool   `json:"active"`
	Order  *int    `json:"order" validate:"omitempty,min=0"`
	Type   string  `json:"type" validate:"omitempty,oneof=regular instagram twitter facebook linkedin tiktok youtube"`
	Icon   *string `json:"icon"`
}

// LinkPatch carries the optional fields of a link update. Nil means unchanged.
type LinkPatch struct {
	Title  *string `json:"title" validate:"omitnil,title"`
	URL    *string `json:"url" validate:"omitnil,httpurl"`
	Active *bool   `json:"active"`
	Order  *int    `json:"order" validate:"omitempty,min=0"`
	Type   *string `json:"type" validate:"omitnil,oneof=regular instagram twitter facebook linkedin tiktok youtube"`
	Icon   *string `json:"icon"`
}

// IsEmpty returns true if the patch changes nothing.
func (p *LinkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Active == nil && p.Order == nil && p.Type == nil && p.Icon == nil
}
