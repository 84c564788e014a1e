// Package platforms knows which social networks a link can point at and how
// to recognise their profile URLs.
package platforms

import (
	"errors"
	"fmt"
	"regexp"

	"biolinks/internal/models"
)

var (
	// ErrUnknownPlatform is returned for a link type the catalog does not list.
	ErrUnknownPlatform = errors.New("invalid platform")

	// ErrInvalidPlatformURL is returned when a URL does not match the pattern
	// of the platform chosen for it.
	ErrInvalidPlatformURL = errors.New("invalid platform URL")
)

// Definition describes a platform in configuration.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Placeholder string `yaml:"placeholder"`
	BaseURL     string `yaml:"base_url"`
	Color       string `yaml:"color"`
}

// Platform is a compiled catalog entry.
type Platform struct {
	ID          string
	Name        string
	Placeholder string
	BaseURL     string
	Color       string
	pattern     *regexp.Regexp
}

// Matches reports whether url looks like a profile on this platform.
func (p Platform) Matches(url string) bool {
	return p.pattern.MatchString(url)
}

// Defaults is the built-in catalog.
var Defaults = []Definition{
	{ID: models.PlatformInstagram, Name: "Instagram", Pattern: `instagram\.com/[\w.-]+`, Placeholder: "https://instagram.com/username", BaseURL: "https://instagram.com/", Color: "#E4405F"},
	{ID: models.PlatformTwitter, Name: "Twitter / X", Pattern: `(?:x\.com|twitter\.com)/[\w.-]+`, Placeholder: "https://x.com/username", BaseURL: "https://x.com/", Color: "#000000"},
	{ID: models.PlatformFacebook, Name: "Facebook", Pattern: `facebook\.com/[\w.-]+`, Placeholder: "https://facebook.com/pagename", BaseURL: "https://facebook.com/", Color: "#1877F2"},
	{ID: models.PlatformLinkedIn, Name: "LinkedIn", Pattern: `linkedin\.com/in/[\w.-]+`, Placeholder: "https://linkedin.com/in/profile", BaseURL: "https://linkedin.com/", Color: "#0A66C2"},
	{ID: models.PlatformTikTok, Name: "TikTok", Pattern: `tiktok\.com/@?[\w.-]+`, Placeholder: "https://tiktok.com/@username", BaseURL: "https://tiktok.com/", Color: "#000000"},
	{ID: models.PlatformYouTube, Name: "YouTube", Pattern: `youtube\.com/(channel|user|c)/[\w.-]+`, Placeholder: "https://youtube.com/channel/...", BaseURL: "https://youtube.com/", Color: "#FF0000"},
}

// Catalog is an ordered set of platforms. Detection tries them in order.
type Catalog struct {
	platforms []Platform
	byID      map[string]int
}

// New compiles a catalog. Every ID must be one of the link types in models
// and appear once.
func New(defs []Definition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(defs))}

	for _, d := range defs {
		if d.ID == models.PlatformRegular || !models.IsPlatformType(d.ID) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("platform %q defined twice", d.ID)
		}

		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("platform %q: invalid pattern: %w", d.ID, err)
		}

		name := d.Name
		if name == "" {
			name = d.ID
		}

		c.byID[d.ID] = len(c.platforms)
		c.platforms = append(c.platforms, Platform{
			ID:          d.ID,
			Name:        name,
			Placeholder: d.Placeholder,
			BaseURL:     d.BaseURL,
			Color:       d.Color,
			pattern:     re,
		})
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(Defaults)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the platforms in detection order.
func (c *Catalog) All() []Platform {
	return c.platforms
}

// Get looks up a platform by ID.
func (c *Catalog) Get(id string) (Platform, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Platform{}, false
	}
	return c.platforms[i], true
}

// Detect returns the first platform whose pattern matches url.
func (c *Catalog) Detect(url string) (Platform, bool) {
	for _, p := range c.platforms {
		if p.Matches(url) {
			return p, true
		}
	}
	return Platform{}, false
}

// Validate checks url against the platform named by linkType.
// Regular links accept any URL.
func (c *Catalog) Validate(linkType, url string) error {
	if linkType == "" || linkType == models.PlatformRegular {
		return nil
	}

	p, ok := c.Get(linkType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, linkType)
	}
	if !p.Matches(url) {
		return fmt.Errorf("%w: invalid %s URL format", ErrInvalidPlatformURL, p.Name)
	}
	return nil
}

// Resolve settles the type and icon of a link being saved.
//
// An explicit platform type must match url; the icon defaults to the
// platform ID. Without a type, or with "regular", the platform is detected
// from url and the icon follows the detected platform.
func (c *Catalog) Resolve(linkType string, icon *string, url string) (string, *string, error) {
	if linkType != "" && linkType != models.PlatformRegular {
		if err := c.Validate(linkType, url); err != nil {
			return "", nil, err
		}
		if icon == nil || *icon == "" {
			id := linkType
			icon = &id
		}
		return linkType, icon, nil
	}

	if p, ok := c.Detect(url); ok {
		id := p.ID
		return p.ID, &id, nil
	}

	return models.PlatformRegular, icon, nil
}
