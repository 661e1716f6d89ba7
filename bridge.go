package jalur

import (
	"context"
	"encoding/json"
)

// Cache bridge: connects terminal route nodes to the external store's
// documented operations. The bridge only computes keys and thunks and
// requests store operations; matching, staleness and dependent refetch are
// the store's responsibility.

// Prefetch computes this node's cache key and hands it, together with a
// thunk performing the read call, to the store's prefetch operation. It
// resolves when the store reports the prefetch complete (typically "fetched
// and stored, or already fresh").
func (r *Route) Prefetch(ctx context.Context, input any) error {
	if r.client.store == nil {
		return ErrNoStore
	}

	key := KeyFor(r.addr, input)
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		return r.client.call(ctx, KindQuery, r.addr, input)
	}

	if r.client.metrics != nil {
		r.client.metrics.RecordPrefetch(r.addr.String())
	}
	if r.client.debug != nil && r.client.debug.Enabled && r.client.debug.LogCache && r.client.logger != nil {
		r.client.logger.Debug("Prefetch requested", "route", r.addr.String(), "key", key.String())
	}

	err := r.client.store.Prefetch(ctx, key, fetch)
	r.client.recordStoreSize()
	return err
}

// Invalidate computes this node's cache key and hands it to the store's
// invalidate operation. The store owns matching; with the reference store an
// input-less key invalidates every entry under the address prefix, while a
// keyed input matches exactly one entry.
func (r *Route) Invalidate(ctx context.Context, input any) error {
	if r.client.store == nil {
		return ErrNoStore
	}

	key := KeyFor(r.addr, input)

	if r.client.metrics != nil {
		r.client.metrics.RecordInvalidation(r.addr.String())
	}
	if r.client.debug != nil && r.client.debug.Enabled && r.client.debug.LogCache && r.client.logger != nil {
		r.client.logger.Debug("Invalidate requested", "route", r.addr.String(), "key", key.String())
	}

	err := r.client.store.Invalidate(ctx, key)
	r.client.recordStoreSize()
	return err
}

// recordStoreSize updates the store-entry gauge when the configured store can
// report its size.
func (c *Client) recordStoreSize() {
	if c.metrics == nil {
		return
	}
	if mem, ok := c.store.(*MemoryStore); ok {
		c.metrics.RecordStoreEntries("memory", mem.Len())
	}
}
