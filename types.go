package jalur

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// Transport is the HTTP dispatch interface. *http.Client satisfies it; tests
// and callers may substitute anything that performs one request per Do.
type Transport interface {
	Do(*http.Request) (*http.Response, error)
}

// RequestHook transforms the outgoing request before dispatch. It may mutate
// the request in place. A returned error aborts the call and is propagated to
// the caller unmodified.
type RequestHook func(req *http.Request) error

// ResponseHook transforms the decoded response body of a successful call
// before it is returned. A returned error is propagated to the caller
// unmodified.
type ResponseHook func(resp *http.Response, data json.RawMessage) (json.RawMessage, error)

// ErrorHook observes a classified call failure. It fires exactly once per
// failed call, after classification and before the error reaches the caller.
// It cannot suppress or alter propagation.
type ErrorHook func(err *CallError)

// FetchFunc performs one read call and returns the raw response body. The
// cache bridge hands fetch thunks to the Store's prefetch and subscription
// operations.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// CallKind distinguishes read calls from write calls.
type CallKind int

const (
	// KindQuery is a retrieval call: input travels as query parameters.
	KindQuery CallKind = iota
	// KindMutation is a mutating call: input travels as the request body.
	KindMutation
)

// String returns the metric label form of the kind.
func (k CallKind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Option represents a configuration option
type Option func(*Client)

// DebugConfig controls debug logging behavior per concern.
type DebugConfig struct {
	Enabled      bool
	LogCalls     bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a DebugConfig with all concerns enabled and
// UUID request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogCalls:     true,
		LogCache:     true,
		RequestIDGen: uuid.NewString,
	}
}
