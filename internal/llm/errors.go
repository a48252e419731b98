package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a generation failure.
type Kind string

// Failure kinds.
const (
	KindTimeout         Kind = "timeout"
	KindCanceled        Kind = "canceled"
	KindAuth            Kind = "auth"
	KindPermission      Kind = "permission"
	KindNotFound        Kind = "not_found"
	KindRateLimited     Kind = "rate_limited"
	KindServer          Kind = "server"
	KindHTTPUnknown     Kind = "http_unknown"
	KindContentFiltered Kind = "content_filtered"
	KindTruncated       Kind = "truncated"
	KindParse           Kind = "parse"
	KindNetwork         Kind = "network"
	KindUnknown         Kind = "unknown"
)

// Error is returned by every Client for a failed generation.
type Error struct {
	Err        error
	Provider   string
	Kind       Kind
	StatusCode int
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err. Errors not produced by this package are
// KindUnknown; nil is "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindUnknown
}

// ClassifyStatus maps a non-2xx HTTP status to a Kind.
func ClassifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return KindHTTPUnknown
	}
}

// classifyTransport maps an error from http.Client.Do or the rate limiter.
func classifyTransport(provider string, err error) *Error {
	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &Error{Provider: provider, Kind: kind, Err: err}
}

func newError(provider string, kind Kind, format string, args ...any) *Error {
	return &Error{Provider: provider, Kind: kind, Err: fmt.Errorf(format, args...)}
}
