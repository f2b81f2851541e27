// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("index out of bounds")
	ErrUnknownField    = errors.New("unknown field")
	ErrSegmentMismatch = errors.New("path segment does not apply to layout")
	ErrTypeMismatch    = errors.New("value type does not match layout")
	ErrNotFlat         = errors.New("layout is not a flat value")
	ErrEmptyKey        = errors.New("map key serializes to no elements")
	errDuplicateMember = errors.New("duplicate member name")
	errEmptyPath       = errors.New("empty storage path")
)

// BoundsError is raised when an array index is not below the array length.
// Array.At panics with it; other accessors return it.
type BoundsError struct {
	Index  uint64
	Length uint64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: index %d, length %d", ErrOutOfBounds, e.Index, e.Length)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }
