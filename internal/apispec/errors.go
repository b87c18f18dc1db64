// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrMissingInput    = errors.New("api description not found")
	ErrRead            = errors.New("reading api description")
	ErrMalformedInput  = errors.New("malformed api description")
	ErrSchemaViolation = errors.New("api description violates schema")
	ErrInvalidDocument = errors.New("enriched api description is invalid")
	ErrWrite           = errors.New("writing api description")
)

// Error carries the kind of failure plus the location and cause.
// Unwrap exposes both Kind and Err so errors.Is can match either
// the kind or an underlying cause such as fs.ErrNotExist.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func schemaErrorf(path, format string, args ...any) error {
	return &Error{Op: "decode", Path: path, Kind: ErrSchemaViolation, Err: fmt.Errorf(format, args...)}
}
