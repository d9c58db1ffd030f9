// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error kinds surfaced by the service layer and
// their mapping to HTTP status codes. Services translate store, delegate and
// token errors into a kind exactly once; the transport maps kinds to statuses
// in a single place.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by who can fix it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
	KindStoreUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:         "internal",
	KindValidation:       "validation",
	KindUnauthenticated:  "unauthenticated",
	KindForbidden:        "forbidden",
	KindNotFound:         "not_found",
	KindConflict:         "conflict",
	KindUpstream:         "upstream_failure",
	KindStoreUnavailable: "store_unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified application error. Message is safe to show to the
// client; Err carries the underlying cause for logs and errors.Is checks.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around an existing cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }

func Unauthenticated(message string, err error) *Error {
	return Wrap(KindUnauthenticated, message, err)
}

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func Upstream(message string, err error) *Error { return Wrap(KindUpstream, message, err) }

// StoreUnavailable marks a persistence failure. It is fatal to the request
// and never retried by the core.
func StoreUnavailable(err error) *Error {
	return Wrap(KindStoreUnavailable, "storage is unavailable", err)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err. Internal and storage
// failures never leak their cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error"
	}
	switch e.Kind {
	case KindInternal, KindStoreUnavailable:
		return "Internal server error"
	}
	return e.Message
}

var statusByKind = map[Kind]int{
	KindInternal:         http.StatusInternalServerError,
	KindValidation:       http.StatusBadRequest,
	KindUnauthenticated:  http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindNotFound:         http.StatusNotFound,
	KindConflict:         http.StatusConflict,
	KindUpstream:         http.StatusBadGateway,
	KindStoreUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	return statusByKind[KindOf(err)]
}
