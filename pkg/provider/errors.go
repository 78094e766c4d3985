// Package provider holds the error taxonomy and HTTP helpers shared by every
// network-bound provider (detectors, transcribers, translators).
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Kind classifies why a provider call failed.
type Kind int

const (
	// KindProvider covers transport errors, timeouts, non-2xx responses and
	// provider-reported failures. Transport errors carry status 0.
	KindProvider Kind = iota
	// KindConfiguration means the provider was never contacted because a
	// credential or endpoint is missing.
	KindConfiguration
	// KindConnectivity means the device has no usable network.
	KindConnectivity
	// KindParse means the provider answered 2xx with an unusable body.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnectivity:
		return "connectivity"
	case KindParse:
		return "parse"
	default:
		return "provider"
	}
}

// Error is a failed provider call.
type Error struct {
	Kind     Kind
	Provider string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s [%s]: status %d: %v", e.Kind, e.Provider, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s [%s]", e.Kind, e.Provider)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the call ran out of time.
func (e *Error) IsTimeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IsUnauthorized returns true for HTTP 401 and 403.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Sentinel causes for configuration errors.
var (
	ErrMissingCredential = errors.New("credential not configured")
	ErrMissingEndpoint   = errors.New("endpoint not configured")
	ErrNoConnectivity    = errors.New("no internet connection")
	ErrEmptyResult       = errors.New("empty result")
)

// Configuration reports a provider skipped before any network call.
func Configuration(provider string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Err: cause}
}

// Connectivity reports a provider skipped because the device is offline.
func Connectivity(provider string) *Error {
	return &Error{Kind: KindConnectivity, Provider: provider, Err: ErrNoConnectivity}
}

// Transport wraps an error raised before a response was read.
func Transport(provider string, err error) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Err: err}
}

// Status reports a non-2xx response. body is truncated for logging.
func Status(provider string, code int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{Kind: KindProvider, Provider: provider, StatusCode: code, Err: errors.New(msg)}
}

// Rejected reports a 2xx response whose payload signals failure.
func Rejected(provider string, reason string) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Err: errors.New(reason)}
}

// Parse reports a 2xx response that could not be decoded.
func Parse(provider string, err error) *Error {
	return &Error{Kind: KindParse, Provider: provider, Err: err}
}

// Panic converts a recovered panic value into a provider error.
func Panic(provider string, v any) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Err: fmt.Errorf("panic: %v", v)}
}

// KindOf returns the Kind of err, or KindProvider for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindProvider
}

// IsConfiguration reports whether err means the provider was never contacted.
func IsConfiguration(err error) bool {
	return err != nil && KindOf(err) == KindConfiguration
}

// ReadBody reads a response body up to limit bytes and closes it.
// Non-2xx responses become Status errors.
func ReadBody(name string, resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, Transport(name, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Status(name, resp.StatusCode, body)
	}
	return body, nil
}
