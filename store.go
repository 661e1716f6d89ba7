package jalur

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ambiyansyah-risyal/jalur/internal/flight"
)

// Store is the external memoized-query cache this client bridges into. The
// client never holds a lock on the store and relies entirely on the store's
// own concurrency discipline; implementations must be safe for concurrent
// Prefetch / Invalidate / Subscribe / Mutate.
//
// Matching policy: invalidation is prefix-based. An input-less key
// (namespace + address) matches every entry under that address, including
// entries keyed with an input; a key carrying an input matches exactly that
// entry.
type Store interface {
	// Prefetch fetches and stores the value for key unless the store already
	// holds a fresh one.
	Prefetch(ctx context.Context, key Key, fetch FetchFunc) error

	// Invalidate removes entries matching key and triggers any dependent
	// refetch the store supports.
	Invalidate(ctx context.Context, key Key) error

	// Subscribe registers a read binding. The store delivers results through
	// the binding's callbacks for as long as ctx is alive.
	Subscribe(ctx context.Context, binding QueryBinding) error

	// Mutate runs a write binding with the given invocation-time input and
	// settles it through the binding's callbacks.
	Mutate(ctx context.Context, binding MutationBinding, input any) error
}

// MemoryStore is the reference Store implementation: a concurrency-safe map
// of canonical keys to cached bodies with prefix-based invalidation,
// refetch-on-invalidate for live subscriptions, and coalescing of concurrent
// prefetches of the same key.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
	subs    []*storeSub
	flight  *flight.Group
}

type storeEntry struct {
	key  Key
	data json.RawMessage
}

type storeSub struct {
	ctx     context.Context
	binding QueryBinding
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*storeEntry),
		flight:  flight.New(),
	}
}

// Prefetch fetches and stores the value for key. A fresh entry short
// circuits; concurrent prefetches of one key share a single fetch.
func (s *MemoryStore) Prefetch(ctx context.Context, key Key, fetch FetchFunc) error {
	ck := key.String()

	s.mu.RLock()
	_, fresh := s.entries[ck]
	s.mu.RUnlock()
	if fresh {
		return nil
	}

	_, err := s.flight.Do(ck, func() (any, error) {
		// Re-check under the flight lock: a previous owner may have stored
		// the entry between the freshness probe and this call.
		if entry, ok := s.get(ck); ok {
			return entry.data, nil
		}
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.put(key, data)
		return data, nil
	})
	return err
}

// Invalidate removes every entry whose key extends the given key, then
// refetches live subscriptions that were covered by it.
func (s *MemoryStore) Invalidate(ctx context.Context, key Key) error {
	s.mu.Lock()
	for ck, entry := range s.entries {
		if entry.key.HasPrefix(key) {
			delete(s.entries, ck)
		}
	}
	affected := make([]*storeSub, 0)
	live := s.subs[:0]
	for _, sub := range s.subs {
		if sub.ctx.Err() != nil {
			continue
		}
		live = append(live, sub)
		if sub.binding.Key.HasPrefix(key) {
			affected = append(affected, sub)
		}
	}
	s.subs = live
	s.mu.Unlock()

	for _, sub := range affected {
		s.deliver(sub.ctx, sub.binding)
	}
	return nil
}

// Subscribe registers the binding and delivers the current value: the cached
// entry when present, otherwise a fresh fetch. Subscriptions whose context
// has expired are pruned on every registration, keeping the registry bounded
// even when the store is never invalidated.
func (s *MemoryStore) Subscribe(ctx context.Context, binding QueryBinding) error {
	s.mu.Lock()
	live := s.subs[:0]
	for _, sub := range s.subs {
		if sub.ctx.Err() != nil {
			continue
		}
		live = append(live, sub)
	}
	s.subs = append(live, &storeSub{ctx: ctx, binding: binding})
	s.mu.Unlock()

	s.deliver(ctx, binding)
	return nil
}

// Mutate runs the binding and settles it through its callbacks. The error is
// also returned so non-reactive callers can use the store directly.
func (s *MemoryStore) Mutate(ctx context.Context, binding MutationBinding, input any) error {
	data, err := binding.Run(ctx, input)
	if err != nil {
		if binding.OnError != nil {
			binding.OnError(err)
		}
		return err
	}
	if binding.OnSuccess != nil {
		binding.OnSuccess(data)
	}
	return nil
}

// Len returns the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all cached entries. Subscriptions stay registered.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*storeEntry)
}

// deliver serves a binding from cache or through its fetch thunk, routing
// the outcome to the binding's callbacks.
func (s *MemoryStore) deliver(ctx context.Context, binding QueryBinding) {
	ck := binding.Key.String()

	s.mu.RLock()
	entry, ok := s.entries[ck]
	s.mu.RUnlock()
	if ok {
		if binding.OnData != nil {
			binding.OnData(entry.data)
		}
		return
	}

	v, err := s.flight.Do(ck, func() (any, error) {
		if entry, ok := s.get(ck); ok {
			return entry.data, nil
		}
		data, err := binding.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.put(binding.Key, data)
		return data, nil
	})
	if err != nil {
		if binding.OnError != nil {
			binding.OnError(err)
		}
		return
	}
	if binding.OnData != nil {
		binding.OnData(v.(json.RawMessage))
	}
}

func (s *MemoryStore) get(ck string) (*storeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[ck]
	return entry, ok
}

func (s *MemoryStore) put(key Key, data json.RawMessage) {
	s.mu.Lock()
	s.entries[key.String()] = &storeEntry{key: key, data: data}
	s.mu.Unlock()
}
