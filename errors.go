package jalur

import (
	"errors"
	"fmt"
)

// Error kinds carried by CallError.Kind.
const (
	// ErrorKindNetwork is a transport-level failure: the call never produced
	// a response. StatusCode is 0.
	ErrorKindNetwork = "Network"
	// ErrorKindAborted is a timeout or caller cancellation that fired before
	// the call settled. StatusCode is 408.
	ErrorKindAborted = "Aborted"
	// ErrorKindRemote is a response with a non-success status. StatusCode is
	// the remote's own.
	ErrorKindRemote = "Remote"
)

// Sentinel errors for common failure scenarios
var (
	// ErrNoStore is returned by cache operations when no Store is configured.
	ErrNoStore = errors.New("jalur: no cache store configured")

	// ErrUnknownOperation is returned by dynamic dispatch when the final path
	// segment is not one of the reserved operation names.
	ErrUnknownOperation = errors.New("jalur: unknown terminal operation")
)

// CallError is the single failure outcome of a call. Only the request
// executor constructs CallError values; every other layer re-surfaces them
// unchanged.
type CallError struct {
	Kind    string
	Message string
	Cause   error

	// StatusCode is 0 for network failures, 408 for aborted calls and the
	// remote's own status otherwise.
	StatusCode int
	// RemoteCode is the remote-defined error code, when the error body
	// carried one.
	RemoteCode string
	// Details is the parsed error body (structured data when the body was
	// JSON, raw text otherwise).
	Details any

	RequestID string
	Address   Address
	Method    string
	URL       string
}

// Error implements error interface.
func (e *CallError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.RemoteCode != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.RemoteCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *CallError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*CallError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return isKind(err, ErrorKindNetwork) }

// IsAborted reports whether err is a timeout or cancellation.
func IsAborted(err error) bool { return isKind(err, ErrorKindAborted) }

// IsRemote reports whether err is a non-success remote response.
func IsRemote(err error) bool { return isKind(err, ErrorKindRemote) }

func isKind(err error, kind string) bool {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind == kind
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *CallError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Kind: %s\n", e.Kind)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if len(e.Address) > 0 {
		info += fmt.Sprintf("Route: %s\n", e.Address)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.RemoteCode != "" {
		info += fmt.Sprintf("Remote Code: %s\n", e.RemoteCode)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
