/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"errors"
	"fmt"
)

// ErrKind classifies engine and controller failures so transports can map
// them onto status codes without string matching.
type ErrKind int

const (
	ErrValidation ErrKind = iota
	ErrNotFound
	ErrState
	ErrPairing
	ErrConflict
	ErrIntegration
	ErrTimeout
)

var errKindNames = map[ErrKind]string{
	ErrValidation:  "validation",
	ErrNotFound:    "not_found",
	ErrState:       "state",
	ErrPairing:     "pairing",
	ErrConflict:    "conflict",
	ErrIntegration: "integration",
	ErrTimeout:     "timeout",
}

func (k ErrKind) String() string {
	return errKindNames[k]
}

// Error carries a kind alongside a human readable detail. Detail is safe
// to surface to API clients; wrapped causes are for logs.
type Error struct {
	Kind   ErrKind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %v: %v", e.Kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Errorf builds an Error of the given kind with a formatted detail.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapErr builds an Error of the given kind preserving err as the cause.
func WrapErr(kind ErrKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), cause: err}
}

// KindOf extracts the kind from err, defaulting unclassified errors to
// ErrIntegration so callers treat them as internal.
func KindOf(err error) ErrKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrIntegration
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrKind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// DetailOf returns the client safe detail for err, or its plain message
// when err is unclassified.
func DetailOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Detail
	}
	return err.Error()
}
