package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure. It is the only error vocabulary
// that crosses the provider boundary: every upstream status code, refused
// prompt or transport error is folded into one of these values before the
// error leaves the package.
type Kind string

const (
	KindMissingCredential  Kind = "missing_credential"
	KindInvalidCredential  Kind = "invalid_credential"
	KindRateLimited        Kind = "rate_limited"
	KindContentPolicy      Kind = "content_policy_violation"
	KindNetwork            Kind = "network_failure"
	KindInvalidParameters  Kind = "invalid_parameters"
	KindServiceUnavailable Kind = "service_unavailable"
	KindUnknown            Kind = "unknown"
)

// Failure is the classified error raised by providers. Immutable once
// created; Cause may carry the underlying transport or upstream error.
type Failure struct {
	Provider string
	Kind     Kind
	Message  string
	Cause    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s [%s]: %s", f.Provider, f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Cause }

// NewFailure builds a classified failure without an underlying cause.
func NewFailure(provider string, kind Kind, message string) *Failure {
	return &Failure{Provider: provider, Kind: kind, Message: message}
}

// WrapFailure builds a classified failure that retains the underlying error.
func WrapFailure(provider string, kind Kind, message string, cause error) *Failure {
	return &Failure{Provider: provider, Kind: kind, Message: message, Cause: cause}
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the classification of err, walking the chain so a
// retry-exhausted wrapper still exposes the last attempt's kind through
// its cause. Non-failure errors report KindUnknown.
func KindOf(err error) Kind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return KindUnknown
}

// IsKind reports whether any failure in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if f, ok := e.(*Failure); ok && f.Kind == kind {
			return true
		}
	}
	return false
}
