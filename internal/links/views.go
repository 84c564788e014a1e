package links

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"biolinks/internal/models"
	"biolinks/internal/ordering"
)

// ManagementView returns every link of the owner in display order, each with
// its click count, plus the version to send back with the next reorder.
// It is rebuilt from the store on every call.
func (s *Service) ManagementView(ctx context.Context, ownerID uuid.UUID) (*models.ManagementView, error) {
	version, err := s.store.GetLinksVersion(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get links version: %w", err)
	}

	links, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	view := &models.ManagementView{
		Version: version,
		Links:   make([]models.LinkWithClicks, len(links)),
	}

	// Counts are requested concurrently so the click loader can batch them.
	g, gctx := errgroup.WithContext(ctx)
	for i, link := range links {
		view.Links[i].Link = link
		g.Go(func() error {
			count, err := s.clicks.CountClicksForLink(gctx, link.ID)
			if err != nil {
				return fmt.Errorf("count clicks for %s: %w", link.ID, err)
			}
			view.Links[i].Clicks = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// PublicView returns the visitor page for slug: profile fields and the active
// links in display order, without counts or owner details.
func (s *Service) PublicView(ctx context.Context, slug string) (*models.PublicProfile, error) {
	owner, err := s.store.GetUserBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	links, err := s.List(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	return Project(owner, links), nil
}

// Project builds the public page from an owner and their links.
// Inactive links are dropped; links are sorted if they are not already.
func Project(owner *models.User, links []models.Link) *models.PublicProfile {
	sorted := make([]models.Link, len(links))
	copy(sorted, links)
	ordering.Sort(sorted)

	profile := &models.PublicProfile{
		Name:       owner.DisplayName(),
		Slug:       owner.Slug,
		Bio:        owner.Bio,
		Avatar:     owner.Avatar,
		ThemeColor: owner.ThemeColor,
		Links:      []models.PublicLink{},
	}

	for _, l := range sorted {
		if !l.Active {
			continue
		}
		profile.Links = append(profile.Links, models.PublicLink{
			ID:    l.ID,
			Title: l.Title,
			URL:   l.URL,
			Type:  l.Type,
			Icon:  l.IconName(),
		})
	}

	return profile
}
