// Package service provides business logic for the chat platform.
package service

import "errors"

// Error kinds, matched with errors.Is by the HTTP layer to pick a status
// code. The concrete error carries the human-readable message.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream dependency failed")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func invalid(msg string) error         { return &kindError{kind: ErrValidation, msg: msg} }
func unauthenticated(msg string) error { return &kindError{kind: ErrUnauthenticated, msg: msg} }
func forbidden(msg string) error       { return &kindError{kind: ErrForbidden, msg: msg} }
func notFound(msg string) error        { return &kindError{kind: ErrNotFound, msg: msg} }
func upstream(msg string) error        { return &kindError{kind: ErrUpstream, msg: msg} }
