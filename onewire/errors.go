// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "fmt"

// Kind identifies a category of error a Bus or LinkLayer operation can
// fail with.
type Kind string

const (
	// BusClosed is returned by any operation performed after Close.
	BusClosed Kind = "bus closed"
	// NoDevice is returned when reset() reports no presence pulse before a
	// command that requires one.
	NoDevice Kind = "no device on bus"
	// BusErrorKind is returned when search() sees a (1,1) response outside
	// alarm-only mode.
	BusErrorKind Kind = "bus error"
	// CRCErrorKind is returned when search() delivers an id that fails
	// CRC-8 validation.
	CRCErrorKind Kind = "crc error"
	// InvalidSignal is returned when decode() sees an unexpected level or
	// out-of-range signal offset.
	InvalidSignal Kind = "invalid signal"
	// InvalidArgument is returned when a bit count is out of the [0, 64]
	// range.
	InvalidArgument Kind = "invalid argument"
	// Transport is returned when the underlying Transceiver reports a
	// failure.
	Transport Kind = "transport error"
)

// Error is the concrete error type returned by this package. It wraps an
// optional underlying cause while keeping Kind available for callers that
// want to branch on the failure category with errors.Is / Is.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("onewire: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("onewire: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &onewire.Error{Kind: onewire.NoDevice}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newErr(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// BusError implements the periph.io/x/conn/v3/onewire.BusError interface:
// it marks an error as a 1-wire bus condition (not a persistent transport
// failure), matching the busError string type in the ds248x driver this
// package is grounded on.
func (e *Error) BusError() bool {
	switch e.Kind {
	case BusErrorKind, CRCErrorKind, NoDevice:
		return true
	default:
		return false
	}
}
