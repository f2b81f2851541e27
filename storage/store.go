// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage lays structured values out over a flat, sparse space of
// field-element cells. Addresses are derived deterministically from a storage
// path: variable names, struct member offsets, hashed map keys and array
// indices. Maps are computed-address views over the cell store; no entry exists
// apart from its address, so reading a key that was never written yields the
// zero value.
package storage

import (
	"fmt"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/serde"
)

// CellStore is the flat cell store supplied by the host. Cells that were never
// set read as zero.
type CellStore interface {
	Get(addr felt.Felt) (felt.Felt, error)
	Set(addr felt.Felt, value felt.Felt) error
}

// cellSource streams consecutive cells starting at addr.
type cellSource struct {
	cs   CellStore
	addr felt.Felt
	next uint64
}

func (s *cellSource) Next() (felt.Felt, error) {
	f, err := s.cs.Get(Offset(s.addr, s.next))
	s.next++
	return f, err
}

// ReadValue decodes a value of type t from the cells starting at addr.
func ReadValue(cs CellStore, addr felt.Felt, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t)
	d := serde.NewStreamDecoder(&cellSource{cs: cs, addr: addr})
	if err := d.Decode(v.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("reading %s at %s: %w", t, addr, err)
	}
	return v.Elem(), nil
}

// Load decodes the value at addr into dst, which must be a pointer.
func Load(cs CellStore, addr felt.Felt, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: %T is not a pointer", ErrTypeMismatch, dst)
	}
	v, err := ReadValue(cs, addr, rv.Elem().Type())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// WriteValue serializes v as type t into the cells starting at addr.
func WriteValue(cs CellStore, addr felt.Felt, t reflect.Type, v reflect.Value) error {
	felts, err := encodeAs(t, v)
	if err != nil {
		return err
	}
	return writeCells(cs, addr, felts)
}

// Store serializes v into the cells starting at addr.
func Store(cs CellStore, addr felt.Felt, v interface{}) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return fmt.Errorf("%w: nil value", ErrTypeMismatch)
	}
	return WriteValue(cs, addr, rv.Type(), rv)
}

// encodeAs serializes v as the declared type t, so interface-typed slots keep
// their enum discriminant.
func encodeAs(t reflect.Type, v reflect.Value) ([]felt.Felt, error) {
	if !v.IsValid() || !v.Type().AssignableTo(t) {
		return nil, fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, typeName(v), t)
	}
	slot := reflect.New(t)
	slot.Elem().Set(v)
	return serde.Marshal(slot.Interface())
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

// writeCells sets consecutive cells, skipping those already holding the
// target value.
func writeCells(cs CellStore, addr felt.Felt, felts []felt.Felt) error {
	for i, f := range felts {
		a := Offset(addr, uint64(i))
		cur, err := cs.Get(a)
		if err != nil {
			return err
		}
		if cur == f {
			continue
		}
		if err := cs.Set(a, f); err != nil {
			return err
		}
	}
	return nil
}

func clearCells(cs CellStore, addr felt.Felt, n int) error {
	return writeCells(cs, addr, make([]felt.Felt, n))
}
