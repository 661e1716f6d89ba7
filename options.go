package jalur

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithBaseURL sets the base URL prepended to every route path.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTransport sets the transport used to dispatch calls.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient sets a custom HTTP client as the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = client
	}
}

// WithHeaders merges default headers key-wise into the configured set.
// Later options win on conflicting keys; the map is never replaced wholesale.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithHeader sets one default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestHook sets the transform applied to every outgoing request.
func WithRequestHook(hook RequestHook) Option {
	return func(c *Client) {
		c.onRequest = hook
	}
}

// WithResponseHook sets the transform applied to every successful response
// body before it is returned.
func WithResponseHook(hook ResponseHook) Option {
	return func(c *Client) {
		c.onResponse = hook
	}
}

// WithErrorHook sets the observation hook fired once per classified call
// failure.
func WithErrorHook(hook ErrorHook) Option {
	return func(c *Client) {
		c.onError = hook
	}
}

// WithStore sets the external cache store backing Prefetch, Invalidate and
// the binding layer.
func WithStore(store Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithMemoryStore configures the reference in-memory store.
func WithMemoryStore() Option {
	return func(c *Client) {
		c.store = NewMemoryStore()
	}
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a simple console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithZapLogger enables debug logging through a zap logger.
func WithZapLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewZapLogger(logger)
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}
