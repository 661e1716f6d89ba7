package jalur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// callOptions carries per-call overrides. Each call gets its own value; no
// call-scoped state is shared between concurrent calls.
type callOptions struct {
	method  string
	headers map[string]string
	timeout time.Duration
}

// CallOption overrides one aspect of a single call.
type CallOption func(*callOptions)

// WithCallMethod overrides the HTTP method of a write call (PUT, PATCH,
// DELETE). Read calls always use GET.
func WithCallMethod(method string) CallOption {
	return func(o *callOptions) {
		o.method = method
	}
}

// WithCallHeaders merges headers into this call only. Per-call headers win
// over configured defaults on conflict.
func WithCallHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithCallTimeout overrides the configured timeout for this call only.
// Non-positive values are ignored and the client default applies.
func WithCallTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}

// call performs one network call for a resolved address. It is the only
// place that constructs *CallError values and the only suspension point in
// the library. The transform sequence is strict: request hook, transport,
// then response hook on success or classification + error hook on failure.
func (c *Client) call(ctx context.Context, kind CallKind, addr Address, input any, opts ...CallOption) (json.RawMessage, error) {
	options := callOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&options)
	}
	if options.timeout <= 0 {
		options.timeout = c.timeout
	}

	start := time.Now()
	route := addr.String()

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	if c.metrics != nil {
		c.metrics.RecordCallStart(kind.String(), route)
		defer c.metrics.RecordCallEnd(kind.String(), route)
	}

	method := http.MethodGet
	var body io.Reader
	var query string

	if kind == KindMutation {
		method = http.MethodPost
		if options.method != "" {
			method = options.method
		}
		if input != nil {
			// Input shaping failures are the caller's to fix; they are not
			// classified and never reach the error hook.
			encoded, err := json.Marshal(input)
			if err != nil {
				return nil, fmt.Errorf("jalur: encode request body: %w", err)
			}
			body = bytes.NewReader(encoded)
		}
	} else {
		values, err := QueryValues(input)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			query = values.Encode()
		}
	}

	target := BuildURL(c.baseURL, addr, nil)
	if query != "" {
		target += "?" + query
	}

	// Timeout and caller cancellation compose through the context: whichever
	// fires first aborts the in-flight call. The deferred cancel disarms the
	// timer on settlement.
	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.fail(&CallError{
			Kind:      ErrorKindNetwork,
			Message:   "build request",
			Cause:     err,
			RequestID: requestID,
			Address:   addr,
			Method:    method,
			URL:       target,
		})
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range options.headers {
		req.Header.Set(k, v)
	}

	if c.onRequest != nil {
		// Hook failures propagate unmodified: not classified, no error hook.
		if err := c.onRequest(req); err != nil {
			return nil, err
		}
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogCalls && c.logger != nil {
		c.logger.Debug("Starting call", "requestID", requestID, "kind", kind.String(), "method", method, "url", target, "route", route)
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, c.fail(c.classifyTransportError(ctx, err, requestID, addr, method, target))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(c.classifyTransportError(ctx, err, requestID, addr, method, target))
	}

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordCall(kind.String(), route, resp.StatusCode, duration)
	}

	// Anything outside 2xx is a remote failure; redirects the transport did
	// not follow are not success.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(c.remoteError(resp, raw, requestID, addr, method, target))
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogCalls && c.logger != nil {
		c.logger.Debug("Call settled", "requestID", requestID, "statusCode", resp.StatusCode, "duration", duration)
	}

	data := json.RawMessage(raw)
	if c.onResponse != nil {
		// Hook failures propagate unmodified: not classified, no error hook.
		data, err = c.onResponse(resp, data)
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}

// classifyTransportError sorts a transport failure into Aborted (the
// composed cancellation fired first) or Network (the transport itself
// rejected the call).
func (c *Client) classifyTransportError(ctx context.Context, cause error, requestID string, addr Address, method, target string) *CallError {
	callErr := &CallError{
		Kind:       ErrorKindNetwork,
		Message:    "network call failed",
		StatusCode: 0,
		Cause:      cause,
		RequestID:  requestID,
		Address:    addr,
		Method:     method,
		URL:        target,
	}
	if ctx.Err() != nil {
		callErr.Kind = ErrorKindAborted
		callErr.Message = "call aborted"
		callErr.StatusCode = http.StatusRequestTimeout
		callErr.Cause = ctx.Err()
	}
	return callErr
}

// remoteError builds the failure outcome for a non-success status. The body
// is parsed as structured data when possible, falling back to raw text; a
// string "code" member surfaces as the remote-defined code.
func (c *Client) remoteError(resp *http.Response, raw []byte, requestID string, addr Address, method, target string) *CallError {
	callErr := &CallError{
		Kind:       ErrorKindRemote,
		Message:    fmt.Sprintf("request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
		Address:    addr,
		Method:     method,
		URL:        target,
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		callErr.Details = parsed
		if obj, ok := parsed.(map[string]any); ok {
			if code, ok := obj["code"].(string); ok {
				callErr.RemoteCode = code
			}
		}
	} else {
		callErr.Details = string(raw)
	}

	return callErr
}

// fail records and observes a classified failure. The error hook fires
// exactly once per failed call, after classification, before propagation; it
// cannot alter the propagated error.
func (c *Client) fail(callErr *CallError) error {
	if c.metrics != nil {
		c.metrics.RecordError(callErr.Kind, callErr.Address.String())
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogCalls && c.logger != nil {
		c.logger.Warn("Call failed", "requestID", callErr.RequestID, "kind", callErr.Kind, "statusCode", callErr.StatusCode, "route", callErr.Address.String())
	}
	if c.onError != nil {
		c.onError(callErr)
	}
	return callErr
}
