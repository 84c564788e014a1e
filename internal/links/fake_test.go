package links

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"biolinks/internal/db"
	"biolinks/internal/models"
	"biolinks/internal/ordering"
)

// memStore is an in-memory Store and TxRunner. Transactions run one at a
// time, roll back on error and reject duplicate orders at commit like the
// deferred unique constraint does.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[uuid.UUID]models.User
	links    map[uuid.UUID]models.Link
	versions map[uuid.UUID]int64

	// batchFault, when set, may drop assignments or fail a batch.
	batchFault func(assignments []ordering.Assignment) ([]ordering.Assignment, error)
	// unavailable makes every call fail with db.ErrStoreUnavailable.
	unavailable bool

	batchCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]models.User{},
		links:    map[uuid.UUID]models.Link{},
		versions: map[uuid.UUID]int64{},
	}
}

func (m *memStore) addUser(slug string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := models.User{ID: uuid.New(), Slug: slug, Name: "User " + slug, ThemeColor: models.DefaultThemeColor}
	m.users[u.ID] = u
	return u
}

// seed inserts links with the given titles at orders 0..n-1.
func (m *memStore) seed(ownerID uuid.UUID, titles ...string) []models.Link {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Link
	for i, title := range titles {
		l := models.Link{
			ID:     uuid.New(),
			UserID: ownerID,
			Title:  title,
			URL:    "https://example.com/" + title,
			Active: true,
			Order:  i,
			Type:   models.PlatformRegular,
		}
		m.links[l.ID] = l
		out = append(out, l)
	}
	return out
}

// setOrder writes an order directly, bypassing the service.
func (m *memStore) setOrder(id uuid.UUID, order int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.links[id]
	l.Order = order
	m.links[id] = l
}

func (m *memStore) ownerLinks(ownerID uuid.UUID) []models.Link {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Link
	for _, l := range m.links {
		if l.UserID == ownerID {
			out = append(out, l)
		}
	}
	ordering.Sort(out)
	return out
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	links := maps.Clone(m.links)
	versions := maps.Clone(m.versions)
	m.mu.Unlock()

	rollback := func() {
		m.mu.Lock()
		m.links = links
		m.versions = versions
		m.mu.Unlock()
	}

	if err := fn(ctx); err != nil {
		rollback()
		return err
	}

	if m.hasDuplicateOrder() {
		rollback()
		return db.ErrOrderConflict
	}
	return nil
}

func (m *memStore) hasDuplicateOrder() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct {
		owner uuid.UUID
		order int
	}
	seen := map[key]bool{}
	for _, l := range m.links {
		k := key{l.UserID, l.Order}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}

func (m *memStore) check() error {
	if m.unavailable {
		return db.ErrStoreUnavailable
	}
	return nil
}

func (m *memStore) LockOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return m.GetLinksVersion(ctx, ownerID)
}

func (m *memStore) GetLinksVersion(_ context.Context, ownerID uuid.UUID) (int64, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[ownerID]; !ok {
		return 0, db.ErrUserNotFound
	}
	return m.versions[ownerID], nil
}

func (m *memStore) BumpLinksVersion(_ context.Context, ownerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.versions[ownerID]++
	return m.versions[ownerID], nil
}

func (m *memStore) GetLinksByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	links := m.ownerLinks(ownerID)
	// Hand back an unsorted slice; callers must not rely on store order.
	slices.Reverse(links)
	return links, nil
}

func (m *memStore) GetLinkByID(_ context.Context, ownerID, id uuid.UUID) (*models.Link, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.links[id]
	if !ok || l.UserID != ownerID {
		return nil, db.ErrLinkNotFound
	}
	return &l, nil
}

func (m *memStore) CountLinks(_ context.Context, ownerID uuid.UUID) (int, error) {
	return len(m.ownerLinks(ownerID)), nil
}

func (m *memStore) CreateLink(_ context.Context, link *models.Link) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	link.ID = uuid.New()
	m.links[link.ID] = *link
	return nil
}

func (m *memStore) UpdateLink(_ context.Context, ownerID, id uuid.UUID, patch models.LinkPatch) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.links[id]
	if !ok || l.UserID != ownerID {
		return nil, db.ErrLinkNotFound
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.URL != nil {
		l.URL = *patch.URL
	}
	if patch.Active != nil {
		l.Active = *patch.Active
	}
	if patch.Type != nil {
		l.Type = *patch.Type
	}
	if patch.Icon != nil {
		l.Icon = patch.Icon
	}
	m.links[id] = l
	return &l, nil
}

func (m *memStore) DeleteLink(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.links[id]
	if !ok || l.UserID != ownerID {
		return db.ErrLinkNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *memStore) BatchUpdateOrder(_ context.Context, ownerID uuid.UUID, assignments []ordering.Assignment) (int64, error) {
	m.batchCalls++
	if m.batchFault != nil {
		var err error
		if assignments, err = m.batchFault(assignments); err != nil {
			return 0, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var applied int64
	for _, a := range assignments {
		l, ok := m.links[a.ID]
		if !ok || l.UserID != ownerID {
			continue
		}
		l.Order = a.Order
		m.links[a.ID] = l
		applied++
	}
	return applied, nil
}

func (m *memStore) GetUserBySlug(_ context.Context, slug string) (*models.User, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Slug == slug {
			return &u, nil
		}
	}
	return nil, db.ErrUserNotFound
}

// memClicks counts clicks from a fixed map.
type memClicks map[uuid.UUID]int64

func (c memClicks) CountClicksForLink(_ context.Context, id uuid.UUID) (int64, error) {
	return c[id], nil
}
