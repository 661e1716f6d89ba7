// Package jalur is a dynamic remote-procedure client: it exposes a remote
// service's nested route namespace as navigable route nodes, without a
// generated function per route.
//
//   - Unbounded, lazy route descent – any path resolves to a callable node
//   - Read calls (input as query parameters) and write calls (input as body)
//   - Per-call timeout composed with caller cancellation
//   - Request / response / error hooks on every call
//   - Hierarchical cache keys bridged into an external memoized-query store
//     (prefetch, prefix invalidation, reactive subscriptions)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - No static route knowledge – invalid paths fail only at call time
//   - Safe concurrent use of a single *Client instance
//   - Extensibility via user supplied hooks & pluggable store / metrics
//
// Typical usage:
//
//	client := jalur.New(
//	    jalur.WithBaseURL("https://api.example.com"),
//	    jalur.WithTimeout(10*time.Second),
//	    jalur.WithMemoryStore(),
//	)
//	raw, err := client.Route("users", "get").Query(ctx, map[string]any{"id": 1})
//
// Caching, staleness and retry policy all belong to the configured Store; the
// client only shapes requests and cache keys and never retries a call. The
// library avoids opinionated logging: provide a Logger (e.g. via
// WithSimpleLogger) + enable debug flags selectively (WithDebug /
// WithDebugConfig) for insight without noise.
package jalur
