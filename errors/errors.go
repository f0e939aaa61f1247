// Package errors defines the error types returned by the rt-go clients.
//
// Every failure surfaces as a *Error carrying a Kind so callers can
// distinguish transport problems from authentication, permission,
// validation and parse failures without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies client errors.
type Kind int

const (
	// KindConnection indicates a network-level failure (refused, DNS, timeout).
	KindConnection Kind = iota
	// KindAuthorization indicates invalid or missing credentials, or an
	// expired session.
	KindAuthorization
	// KindNotAllowed indicates the server rejected the operation due to
	// insufficient privileges.
	KindNotAllowed
	// KindBadRequest indicates server-side validation rejected the input.
	KindBadRequest
	// KindNotFound indicates the referenced ticket, user or queue is absent.
	KindNotFound
	// KindMalformedResponse indicates the response body did not match the
	// expected message format.
	KindMalformedResponse
	// KindUnexpectedResponse indicates an unexpected HTTP status code.
	KindUnexpectedResponse
	// KindSyntaxError indicates the legacy API reported a syntax error.
	KindSyntaxError
	// KindInvalidQuery indicates a malformed search query.
	KindInvalidQuery
	// KindInvalidUse indicates the client API was called incorrectly.
	KindInvalidUse
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuthorization:
		return "authorization"
	case KindNotAllowed:
		return "not_allowed"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUnexpectedResponse:
		return "unexpected_response"
	case KindSyntaxError:
		return "syntax_error"
	case KindInvalidQuery:
		return "invalid_query"
	case KindInvalidUse:
		return "invalid_use"
	default:
		return "unknown"
	}
}

// Error is a classified RT client error.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// StatusCode is the HTTP status code, when one was received.
	StatusCode int
	// Message describes the error, usually quoting the server.
	Message string
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("rt: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rt: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConnection wraps a transport-level failure.
func NewConnection(message string, err error) *Error {
	if err != nil {
		message += ": " + err.Error()
	}
	return &Error{Kind: KindConnection, Message: message, Err: err}
}

// NewAuthorization creates an authentication failure.
func NewAuthorization(message string) *Error {
	return &Error{Kind: KindAuthorization, StatusCode: http.StatusUnauthorized, Message: message}
}

// NewNotAllowed creates a permission failure.
func NewNotAllowed(message string) *Error {
	return &Error{Kind: KindNotAllowed, Message: message}
}

// NewBadRequest creates a server-side validation failure.
func NewBadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, StatusCode: http.StatusBadRequest, Message: message}
}

// NewNotFound creates a missing-resource failure.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

// NewMalformedResponse creates a parse failure for a response that did
// not match the expected message format.
func NewMalformedResponse(message string) *Error {
	return &Error{Kind: KindMalformedResponse, Message: message}
}

// NewUnexpectedResponse creates a failure for an unexpected HTTP status.
func NewUnexpectedResponse(statusCode int, message string) *Error {
	return &Error{Kind: KindUnexpectedResponse, StatusCode: statusCode, Message: message}
}

// NewSyntaxError creates a legacy-API syntax failure.
func NewSyntaxError(message string) *Error {
	return &Error{Kind: KindSyntaxError, Message: message}
}

// NewInvalidQuery creates a malformed-search-query failure.
func NewInvalidQuery(message string) *Error {
	return &Error{Kind: KindInvalidQuery, Message: message}
}

// NewInvalidUse creates a client-side misuse failure.
func NewInvalidUse(message string) *Error {
	return &Error{Kind: KindInvalidUse, Message: message}
}

// FromStatusCode converts an HTTP status code into a typed error.
// It returns nil for 2xx codes.
func FromStatusCode(statusCode int, body string) *Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized:
		return NewAuthorization("server could not verify that you are authorized to access the requested document")
	case statusCode == http.StatusForbidden:
		return &Error{Kind: KindNotAllowed, StatusCode: statusCode, Message: firstNonEmpty(body, "forbidden")}
	case statusCode == http.StatusNotFound:
		return NewNotFound(firstNonEmpty(body, "no such resource found"))
	case statusCode == http.StatusBadRequest:
		return NewBadRequest(firstNonEmpty(body, "bad request"))
	default:
		return NewUnexpectedResponse(statusCode, fmt.Sprintf("received status code %d instead of 200", statusCode))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func is(err error, kind Kind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == kind
}

// IsConnection reports whether err is a transport failure.
func IsConnection(err error) bool { return is(err, KindConnection) }

// IsAuthorization reports whether err is an authentication failure.
func IsAuthorization(err error) bool { return is(err, KindAuthorization) }

// IsNotAllowed reports whether err is a permission failure.
func IsNotAllowed(err error) bool { return is(err, KindNotAllowed) }

// IsBadRequest reports whether err is a server-side validation failure.
func IsBadRequest(err error) bool { return is(err, KindBadRequest) }

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsMalformedResponse reports whether err is a response-parse failure.
func IsMalformedResponse(err error) bool { return is(err, KindMalformedResponse) }

// IsUnexpectedResponse reports whether err is an unexpected-status failure.
func IsUnexpectedResponse(err error) bool { return is(err, KindUnexpectedResponse) }

// IsSyntaxError reports whether err is a legacy-API syntax failure.
func IsSyntaxError(err error) bool { return is(err, KindSyntaxError) }

// IsInvalidQuery reports whether err is a malformed-query failure.
func IsInvalidQuery(err error) bool { return is(err, KindInvalidQuery) }

// IsInvalidUse reports whether err is a client-misuse failure.
func IsInvalidUse(err error) bool { return is(err, KindInvalidUse) }
