package jalur

import (
	"fmt"
	"net/http"
	"time"
)

// Client is a dynamic remote-procedure client. It holds the shared,
// read-only configuration referenced by every route node: transport, base
// URL, default headers, timeout, hooks, store, logging and metrics. It is
// safe for concurrent use; no call mutates it after construction.
type Client struct {
	transport  Transport
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	onRequest  RequestHook
	onResponse ResponseHook
	onError    ErrorHook
	store      Store
	metrics    *MetricsCollector
	debug      *DebugConfig
	logger     Logger

	validationError error
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	client := &Client{
		transport: &http.Client{},
		baseURL:   "/api",
		headers:   map[string]string{},
		timeout:   30 * time.Second,
		store:     nil, // cache operations return ErrNoStore until configured
		metrics:   nil,
		debug:     DefaultDebugConfig(),
		logger:    nil,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Root returns the route node with the empty address. Every route in the
// remote namespace is reachable from it by descent.
func (c *Client) Root() *Route {
	return &Route{client: c}
}

// Route returns the node addressed by the given segments.
func (c *Client) Route(segments ...string) *Route {
	return &Route{client: c, addr: Address(nil).Walk(segments...)}
}

// Store returns the configured cache store, or nil.
func (c *Client) Store() Store {
	return c.store
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// ValidateConfiguration validates the client configuration and returns an
// error if invalid.
func (c *Client) ValidateConfiguration() error {
	var errs []string

	errs = append(errs, c.validateTransportConfig()...)
	errs = append(errs, c.validateURLConfig()...)
	errs = append(errs, c.validateDebugConfig()...)
	errs = append(errs, c.validateExtremeValues()...)

	if len(errs) > 0 {
		return fmt.Errorf("jalur: configuration validation failed: %v", errs)
	}

	return nil
}

func (c *Client) validateTransportConfig() []string {
	var errs []string

	if c.transport == nil {
		errs = append(errs, "transport cannot be nil")
	}
	if c.timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	return errs
}

func (c *Client) validateURLConfig() []string {
	var errs []string

	if c.baseURL == "" {
		errs = append(errs, "baseURL cannot be empty")
	}

	return errs
}

func (c *Client) validateDebugConfig() []string {
	var errs []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errs = append(errs, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errs = append(errs, "logger must be set when debug is enabled")
		}
	}

	return errs
}

func (c *Client) validateExtremeValues() []string {
	var errs []string

	if c.timeout > 10*time.Minute {
		errs = append(errs, "timeout > 10m may cause calls to hang for too long")
	}

	return errs
}
