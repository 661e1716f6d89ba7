package jalur

import (
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	client := New()

	if client == nil {
		t.Fatal("New() returned nil")
	}

	// Test default values
	if client.baseURL != "/api" {
		t.Errorf("Expected baseURL=/api, got %s", client.baseURL)
	}

	if client.timeout != 30*time.Second {
		t.Errorf("Expected timeout=30s, got %v", client.timeout)
	}

	if _, ok := client.transport.(*http.Client); !ok {
		t.Errorf("Expected *http.Client default transport, got %T", client.transport)
	}

	if client.store != nil {
		t.Error("Expected no store by default")
	}

	if !client.IsValid() {
		t.Errorf("Default configuration must validate, got %v", client.ValidationError())
	}
}

func TestWithHeadersMergesKeyWise(t *testing.T) {
	client := New(
		WithHeaders(map[string]string{"Authorization": "Bearer a", "X-Team": "platform"}),
		WithHeaders(map[string]string{"Authorization": "Bearer b"}),
		WithHeader("X-Region", "sg"),
	)

	if client.headers["Authorization"] != "Bearer b" {
		t.Errorf("Later option must win on conflict, got %s", client.headers["Authorization"])
	}
	if client.headers["X-Team"] != "platform" {
		t.Error("Non-conflicting keys must survive a later merge")
	}
	if client.headers["X-Region"] != "sg" {
		t.Error("WithHeader must add its key")
	}
}

func TestValidationRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		options []Option
	}{
		{"empty baseURL", []Option{WithBaseURL("")}},
		{"zero timeout", []Option{WithTimeout(0)}},
		{"negative timeout", []Option{WithTimeout(-time.Second)}},
		{"nil transport", []Option{WithTransport(nil)}},
		{"debug without logger", []Option{WithDebug()}},
		{"extreme timeout", []Option{WithTimeout(time.Hour)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := New(tc.options...)
			if client.IsValid() {
				t.Error("Expected validation failure")
			}
			if client.ValidationError() == nil {
				t.Error("Expected ValidationError to be set")
			}
		})
	}
}

func TestWithSimpleLoggerEnablesDebug(t *testing.T) {
	client := New(WithSimpleLogger())

	if !client.debug.Enabled {
		t.Error("WithSimpleLogger must enable debug")
	}
	if client.logger == nil {
		t.Error("WithSimpleLogger must set a logger")
	}
	if !client.IsValid() {
		t.Errorf("Debug with logger must validate, got %v", client.ValidationError())
	}
}

func TestWithMemoryStore(t *testing.T) {
	client := New(WithMemoryStore())

	if _, ok := client.Store().(*MemoryStore); !ok {
		t.Errorf("Expected *MemoryStore, got %T", client.Store())
	}
}

func TestWithRequestIDGenerator(t *testing.T) {
	client := New(
		WithSimpleLogger(),
		WithRequestIDGenerator(func() string { return "fixed" }),
	)

	if got := client.debug.RequestIDGen(); got != "fixed" {
		t.Errorf("Expected fixed, got %s", got)
	}
}
