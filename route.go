package jalur

import (
	"context"
	"encoding/json"
	"fmt"
)

// Route is one node of the remote namespace: the accumulated address plus a
// handle to the shared client configuration. Nodes are immutable; descent
// allocates a new node and never touches per-node mutable state, so any node
// may be used from any goroutine.
//
// Descent is infinite and lazy. No route list is known in advance and no
// schema is checked at descent time: a segment the remote service does not
// recognize produces a normal node that fails only when actually invoked.
type Route struct {
	client *Client
	addr   Address
}

// Child returns the node one segment deeper.
func (r *Route) Child(segment string) *Route {
	return &Route{client: r.client, addr: r.addr.Child(segment)}
}

// Walk returns the node reached by descending the given segments in order.
func (r *Route) Walk(segments ...string) *Route {
	return &Route{client: r.client, addr: r.addr.Walk(segments...)}
}

// Address returns a copy of the node's accumulated address.
func (r *Route) Address() Address {
	addr := make(Address, len(r.addr))
	copy(addr, r.addr)
	return addr
}

// Query performs a read call at this node. A non-nil input is serialized as
// query parameters; there is no request body. The raw JSON response body is
// returned after the configured response hook.
func (r *Route) Query(ctx context.Context, input any, opts ...CallOption) (json.RawMessage, error) {
	return r.client.call(ctx, KindQuery, r.addr, input, opts...)
}

// Mutate performs a write call at this node. A non-nil input is serialized
// as the JSON request body; no query parameters derive from input. The
// method defaults to POST and may be overridden with WithCallMethod.
func (r *Route) Mutate(ctx context.Context, input any, opts ...CallOption) (json.RawMessage, error) {
	return r.client.call(ctx, KindMutation, r.addr, input, opts...)
}

// Key returns the cache key a read call at this node with the given input
// would be stored under. Side-effect free; works without a configured store.
func (r *Route) Key(input any) Key {
	return KeyFor(r.addr, input)
}

// QueryAs performs a read call at route and decodes the response body into T.
func QueryAs[T any](ctx context.Context, route *Route, input any, opts ...CallOption) (T, error) {
	var out T
	raw, err := route.Query(ctx, input, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("jalur: decode response: %w", err)
	}
	return out, nil
}

// MutateAs performs a write call at route and decodes the response body into T.
func MutateAs[T any](ctx context.Context, route *Route, input any, opts ...CallOption) (T, error) {
	var out T
	raw, err := route.Mutate(ctx, input, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("jalur: decode response: %w", err)
	}
	return out, nil
}

// Operation names the five terminal operations reserved at every node.
type Operation string

const (
	OpQuery      Operation = "query"
	OpMutate     Operation = "mutate"
	OpKey        Operation = "key"
	OpPrefetch   Operation = "prefetch"
	OpInvalidate Operation = "invalidate"
)

var reservedOps = map[string]Operation{
	string(OpQuery):      OpQuery,
	string(OpMutate):     OpMutate,
	string(OpKey):        OpKey,
	string(OpPrefetch):   OpPrefetch,
	string(OpInvalidate): OpInvalidate,
}

// IsReservedOperation reports whether name is one of the reserved terminal
// operation names.
func IsReservedOperation(name string) bool {
	_, ok := reservedOps[name]
	return ok
}

// Dispatch interprets one path step. A reserved operation name terminates
// descent and is returned as the operation; any other segment descends to
// the child node.
func (r *Route) Dispatch(segment string) (*Route, Operation, bool) {
	if op, ok := reservedOps[segment]; ok {
		return r, op, true
	}
	return r.Child(segment), "", false
}

// Invoke resolves a statically-unknown path and invokes its terminal
// operation. Every segment but the last descends; the last must name a
// reserved operation. The result is the raw response body for query and
// mutate, the JSON-encoded cache key for key, and nil for prefetch and
// invalidate.
//
// A genuine remote route whose name collides with a reserved operation name
// cannot be addressed through Invoke; use typed descent (Child / Walk) for
// such routes.
func (r *Route) Invoke(ctx context.Context, path []string, input any, opts ...CallOption) (json.RawMessage, error) {
	if len(path) == 0 {
		return nil, ErrUnknownOperation
	}

	node := r
	for _, segment := range path[:len(path)-1] {
		next, op, terminal := node.Dispatch(segment)
		if terminal {
			return nil, fmt.Errorf("jalur: operation %q must be the final path segment", op)
		}
		node = next
	}

	_, op, terminal := node.Dispatch(path[len(path)-1])
	if !terminal {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, path[len(path)-1])
	}

	switch op {
	case OpQuery:
		return node.Query(ctx, input, opts...)
	case OpMutate:
		return node.Mutate(ctx, input, opts...)
	case OpKey:
		encoded, err := json.Marshal(node.Key(input))
		if err != nil {
			return nil, fmt.Errorf("jalur: encode key: %w", err)
		}
		return encoded, nil
	case OpPrefetch:
		return nil, node.Prefetch(ctx, input)
	case OpInvalidate:
		return nil, node.Invalidate(ctx, input)
	}

	return nil, ErrUnknownOperation
}
