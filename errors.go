// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.2
//

package gorinex

import (
	"errors"
	"fmt"
)

// Header errors
var (
	ErrNotRinex             = errors.New("first line is not a RINEX VERSION / TYPE line")
	ErrUnsupportedRevision  = errors.New("unsupported revision")
	ErrUnknownType          = errors.New("unknown file type")
	ErrUnknownConstellation = errors.New("unknown constellation")
	ErrMissingConstellation = errors.New("constellation is required for this file type")
	ErrMissingObsCodes      = errors.New("observation header without observable codes")
	ErrNoEndOfHeader        = errors.New("END OF HEADER not found")
)

// Engine errors
var (
	ErrFileTypeMismatch = errors.New("file types mismatch: cannot merge different rinex")
	ErrEpochTooEarly    = errors.New("desired epoch is too early")
	ErrEpochTooLate     = errors.New("desired epoch is too late")
	ErrNoRecord         = errors.New("no record for this file type")
	ErrNotMerged        = errors.New("not a merged rinex")
)

// HeaderError locates a header failure by line number and label.
type HeaderError struct {
	Line  int
	Label string
	Err   error
}

func (e *HeaderError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("header line %d: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("header line %d (%s): %s", e.Line, e.Label, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// EpochError names the date field that failed to parse.
type EpochError struct {
	Field string
	Value string
	Err   error
}

func (e *EpochError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s field %q: %s", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("failed to parse %s field %q", e.Field, e.Value)
}

func (e *EpochError) Unwrap() error {
	return e.Err
}

// CodecError reports a compact line field that could not be restored.
// Field is the observable index, or -1 for the epoch and clock lines.
type CodecError struct {
	Sat   SatType
	Field int
	Line  string
	Err   error
}

func (e *CodecError) Error() string {
	if e.Sat == "" {
		return fmt.Sprintf("crinex: %s (line %q)", e.Err, e.Line)
	}
	return fmt.Sprintf("crinex: %s field %d: %s", e.Sat, e.Field, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
