package jalur

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedFetch(data string) FetchFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(data), nil
	}
}

func TestMemoryStorePrefetchStores(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)

	err := store.Prefetch(context.Background(), key, fixedFetch(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStorePrefetchShortCircuitsWhenFresh(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)

	var fetches int32
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&fetches, 1)
		return json.RawMessage(`[]`), nil
	}

	require.NoError(t, store.Prefetch(context.Background(), key, fetch))
	require.NoError(t, store.Prefetch(context.Background(), key, fetch))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "fresh entry must short circuit")
}

func TestMemoryStorePrefetchPropagatesFetchError(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)
	boom := errors.New("boom")

	err := store.Prefetch(context.Background(), key, func(ctx context.Context) (json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len(), "failed prefetch must not store")
}

func TestMemoryStoreConcurrentPrefetchCoalesces(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)

	var fetches int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return json.RawMessage(`[]`), nil
	}

	var wg sync.WaitGroup
	started := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-started
			_ = store.Prefetch(context.Background(), key, fetch)
		}()
	}
	close(started)
	// Give the owner a moment to claim the key, then release everyone.
	for atomic.LoadInt32(&fetches) == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "concurrent prefetches of one key must share a fetch")
}

func TestMemoryStoreInvalidateExactKeyedEntry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	input := map[string]any{"page": 1}

	require.NoError(t, store.Prefetch(ctx, KeyFor(Address{"users", "list"}, input), fixedFetch(`[1]`)))
	require.NoError(t, store.Prefetch(ctx, KeyFor(Address{"users", "list"}, map[string]any{"page": 2}), fixedFetch(`[2]`)))

	require.NoError(t, store.Invalidate(ctx, KeyFor(Address{"users", "list"}, input)))
	assert.Equal(t, 1, store.Len(), "input-keyed invalidation must match exactly one entry")
}

func TestMemoryStoreInvalidatePrefixMatchesKeyedEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Prefetch(ctx, KeyFor(Address{"users", "list"}, nil), fixedFetch(`[]`)))
	require.NoError(t, store.Prefetch(ctx, KeyFor(Address{"users", "list"}, map[string]any{"page": 1}), fixedFetch(`[1]`)))
	require.NoError(t, store.Prefetch(ctx, KeyFor(Address{"orders", "list"}, nil), fixedFetch(`[]`)))

	// Input-less invalidation is prefix-based: it covers the bare entry and
	// every input-keyed entry under the address, but not other addresses.
	require.NoError(t, store.Invalidate(ctx, KeyFor(Address{"users", "list"}, nil)))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreSubscribeDeliversCachedValue(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := KeyFor(Address{"users", "get"}, map[string]any{"id": 1})

	require.NoError(t, store.Prefetch(ctx, key, fixedFetch(`{"id":1}`)))

	var delivered json.RawMessage
	binding := QueryBinding{
		Key:    key,
		Fetch:  fixedFetch(`{"id":"fresh"}`),
		OnData: func(data json.RawMessage) { delivered = data },
	}

	require.NoError(t, store.Subscribe(ctx, binding))
	assert.JSONEq(t, `{"id":1}`, string(delivered), "cached value must be served without fetching")
}

func TestMemoryStoreSubscribeFetchesOnMiss(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var delivered json.RawMessage
	binding := QueryBinding{
		Key:    KeyFor(Address{"users", "get"}, map[string]any{"id": 2}),
		Fetch:  fixedFetch(`{"id":2}`),
		OnData: func(data json.RawMessage) { delivered = data },
	}

	require.NoError(t, store.Subscribe(ctx, binding))
	assert.JSONEq(t, `{"id":2}`, string(delivered))
	assert.Equal(t, 1, store.Len(), "fetched value must be stored")
}

func TestMemoryStoreSubscribeDeliversFetchError(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("fetch failed")

	var delivered error
	binding := QueryBinding{
		Key:     KeyFor(Address{"users", "get"}, nil),
		Fetch:   func(ctx context.Context) (json.RawMessage, error) { return nil, boom },
		OnError: func(err error) { delivered = err },
	}

	require.NoError(t, store.Subscribe(context.Background(), binding))
	assert.ErrorIs(t, delivered, boom)
}

func TestMemoryStoreInvalidateRefetchesSubscriptions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := KeyFor(Address{"users", "list"}, nil)

	version := int32(0)
	var mu sync.Mutex
	var history []string
	binding := QueryBinding{
		Key: key,
		Fetch: func(ctx context.Context) (json.RawMessage, error) {
			v := atomic.AddInt32(&version, 1)
			return json.RawMessage(`{"version":` + string(rune('0'+v)) + `}`), nil
		},
		OnData: func(data json.RawMessage) {
			mu.Lock()
			history = append(history, string(data))
			mu.Unlock()
		},
	}

	require.NoError(t, store.Subscribe(ctx, binding))
	require.NoError(t, store.Invalidate(ctx, KeyFor(Address{"users"}, nil)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, history, 2, "invalidation must refetch the covered subscription")
	assert.NotEqual(t, history[0], history[1])
}

func TestMemoryStoreSubscriptionDropsWithContext(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var deliveries int32
	binding := QueryBinding{
		Key:    key,
		Fetch:  fixedFetch(`[]`),
		OnData: func(json.RawMessage) { atomic.AddInt32(&deliveries, 1) },
	}
	require.NoError(t, store.Subscribe(ctx, binding))
	cancel()

	require.NoError(t, store.Invalidate(context.Background(), key))
	assert.Equal(t, int32(1), atomic.LoadInt32(&deliveries), "canceled subscription must not be refetched")
}

func TestMemoryStoreSubscribePrunesDeadSubscriptions(t *testing.T) {
	store := NewMemoryStore()
	key := KeyFor(Address{"users", "list"}, nil)

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		binding := QueryBinding{Key: key, Fetch: fixedFetch(`[]`)}
		require.NoError(t, store.Subscribe(ctx, binding))
		cancel()
	}

	require.NoError(t, store.Subscribe(context.Background(), QueryBinding{Key: key, Fetch: fixedFetch(`[]`)}))

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.subs, 1, "expired subscriptions must be pruned on registration")
}

func TestMemoryStoreMutateSettlesCallbacks(t *testing.T) {
	store := NewMemoryStore()

	var succeeded json.RawMessage
	binding := MutationBinding{
		Run: func(ctx context.Context, input any) (json.RawMessage, error) {
			return json.RawMessage(`{"created":true}`), nil
		},
		OnSuccess: func(data json.RawMessage) { succeeded = data },
		OnError:   func(error) { t.Error("OnError must not fire on success") },
	}

	require.NoError(t, store.Mutate(context.Background(), binding, map[string]any{"name": "ana"}))
	assert.JSONEq(t, `{"created":true}`, string(succeeded))
}

func TestMemoryStoreMutateFailure(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("rejected")

	var observed error
	binding := MutationBinding{
		Run:       func(ctx context.Context, input any) (json.RawMessage, error) { return nil, boom },
		OnSuccess: func(json.RawMessage) { t.Error("OnSuccess must not fire on failure") },
		OnError:   func(err error) { observed = err },
	}

	err := store.Mutate(context.Background(), binding, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, observed, boom)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Prefetch(context.Background(), KeyFor(Address{"a"}, nil), fixedFetch(`1`)))
	store.Clear()
	assert.Zero(t, store.Len())
}
