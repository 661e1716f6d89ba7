package jalur

import (
	"context"
	"encoding/json"
)

// Binding layer: composes route nodes, the executor and the store into the
// subscription and invocation objects a reactive consumer hands to the
// store. Key and Fetch/Run are owned by this layer: they are dedicated
// struct fields, so caller options cannot override them.

// QueryBinding is a read subscription: the cache key, the fetch thunk and
// the caller's lifecycle callbacks. The store manages result delivery,
// staleness and retries itself.
type QueryBinding struct {
	Key   Key
	Fetch FetchFunc

	// OnData and OnError receive delivered results; both may fire more than
	// once over the subscription's lifetime (initial delivery, refetch after
	// invalidation).
	OnData  func(data json.RawMessage)
	OnError func(err error)

	// Options are caller-supplied, store-defined knobs, passed through
	// unmodified.
	Options map[string]any
}

// MutationBinding is a write invocation: the execution thunk plus the
// caller's settlement callbacks, passed through to the store's mutation
// primitive unmodified.
type MutationBinding struct {
	Run func(ctx context.Context, input any) (json.RawMessage, error)

	OnSuccess func(data json.RawMessage)
	OnError   func(err error)

	Options map[string]any
}

// BindingOption configures the caller-owned parts of a binding.
type BindingOption func(*bindingConfig)

type bindingConfig struct {
	onData    func(json.RawMessage)
	onError   func(error)
	onSuccess func(json.RawMessage)
	options   map[string]any
}

// OnData sets the data delivery callback of a read binding.
func OnData(fn func(data json.RawMessage)) BindingOption {
	return func(c *bindingConfig) {
		c.onData = fn
	}
}

// OnError sets the error delivery callback.
func OnError(fn func(err error)) BindingOption {
	return func(c *bindingConfig) {
		c.onError = fn
	}
}

// OnSuccess sets the settlement callback of a write binding.
func OnSuccess(fn func(data json.RawMessage)) BindingOption {
	return func(c *bindingConfig) {
		c.onSuccess = fn
	}
}

// WithBindingOptions merges store-defined options into the binding.
func WithBindingOptions(options map[string]any) BindingOption {
	return func(c *bindingConfig) {
		if c.options == nil {
			c.options = map[string]any{}
		}
		for k, v := range options {
			c.options[k] = v
		}
	}
}

// QueryBinding builds the read subscription for this node and input. The key
// is the node's cache key and the fetch thunk performs the read call; caller
// options ride alongside and cannot displace either.
func (r *Route) QueryBinding(input any, opts ...BindingOption) QueryBinding {
	var cfg bindingConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return QueryBinding{
		Key: KeyFor(r.addr, input),
		Fetch: func(ctx context.Context) (json.RawMessage, error) {
			return r.client.call(ctx, KindQuery, r.addr, input)
		},
		OnData:  cfg.onData,
		OnError: cfg.onError,
		Options: cfg.options,
	}
}

// MutationBinding builds the write invocation for this node. Input is
// supplied at invocation time by the store's mutation primitive.
func (r *Route) MutationBinding(opts ...BindingOption) MutationBinding {
	var cfg bindingConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return MutationBinding{
		Run: func(ctx context.Context, input any) (json.RawMessage, error) {
			return r.client.call(ctx, KindMutation, r.addr, input)
		},
		OnSuccess: cfg.onSuccess,
		OnError:   cfg.onError,
		Options:   cfg.options,
	}
}

// Subscribe hands this node's read binding to the configured store.
func (r *Route) Subscribe(ctx context.Context, input any, opts ...BindingOption) error {
	if r.client.store == nil {
		return ErrNoStore
	}
	return r.client.store.Subscribe(ctx, r.QueryBinding(input, opts...))
}

// RunMutation hands this node's write binding to the configured store with
// the given invocation-time input.
func (r *Route) RunMutation(ctx context.Context, input any, opts ...BindingOption) error {
	if r.client.store == nil {
		return ErrNoStore
	}
	return r.client.store.Mutate(ctx, r.MutationBinding(opts...), input)
}
