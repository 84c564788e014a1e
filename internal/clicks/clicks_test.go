package clicks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biolinks/internal/db"
)

type fakeStore struct {
	mu        sync.Mutex
	counts    map[uuid.UUID]int64
	batches   [][]uuid.UUID
	recorded  []uuid.UUID
	countErr  error
	recordErr error
}

func (f *fakeStore) CountClicksByLinks(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, ids)
	if f.countErr != nil {
		return nil, f.countErr
	}
	out := map[uuid.UUID]int64{}
	for _, id := range ids {
		if n, ok := f.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (f *fakeStore) RecordClick(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, id)
	return nil
}

func (f *fakeStore) recordedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recorded)
}

func TestCounter_WithLoader(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{counts: map[uuid.UUID]int64{a: 4, b: 1}}
	counter := NewCounter(store)
	ctx := WithLoader(context.Background(), store)

	got := make([]int64, 3)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{a, b, c} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := counter.CountClicksForLink(ctx, id)
			assert.NoError(t, err)
			got[i] = n
		}()
	}
	wg.Wait()

	assert.Equal(t, []int64{4, 1, 0}, got)
}

func TestLoader_OneQueryPerBatch(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{counts: map[uuid.UUID]int64{a: 3}}
	loader := NewLoader(store)
	ctx := context.Background()

	thunkA := loader.Load(ctx, a)
	thunkB := loader.Load(ctx, b)

	n, err := thunkA()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = thunkB()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.Len(t, store.batches, 1)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, store.batches[0])
}

func TestCounter_WithoutLoader(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{counts: map[uuid.UUID]int64{id: 2}}

	n, err := NewCounter(store).CountClicksForLink(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCounter_StoreError(t *testing.T) {
	store := &fakeStore{countErr: db.ErrStoreUnavailable}
	ctx := WithLoader(context.Background(), store)

	_, err := NewCounter(store).CountClicksForLink(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrStoreUnavailable)
}

func TestRecorder_WritesQueuedClicks(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, 10, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Start(ctx)
		close(done)
	}()

	for range 5 {
		require.NoError(t, rec.Record(uuid.New()))
	}

	assert.Eventually(t, func() bool { return store.recordedCount() == 5 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRecorder_DrainsOnStop(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, 10, 1, nil)

	for range 3 {
		require.NoError(t, rec.Record(uuid.New()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Start(ctx)

	assert.Equal(t, 3, store.recordedCount())
}

func TestRecorder_QueueFull(t *testing.T) {
	rec := NewRecorder(&fakeStore{}, 1, 1, nil)

	require.NoError(t, rec.Record(uuid.New()))
	err := rec.Record(uuid.New())
	assert.True(t, errors.Is(err, ErrQueueFull))
}

func TestRecorder_RejectsAfterStop(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, 10, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Start(ctx)

	err := rec.Record(uuid.New())
	assert.ErrorIs(t, err, ErrRecorderStopped)
	assert.Zero(t, store.recordedCount())
}

func TestRecorder_IgnoresInactiveLinks(t *testing.T) {
	store := &fakeStore{recordErr: db.ErrLinkNotFound}
	rec := NewRecorder(store, 1, 1, nil)

	require.NoError(t, rec.Record(uuid.New()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Start(ctx)

	assert.Zero(t, store.recordedCount())
}
