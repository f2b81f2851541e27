// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feltvm

import (
	"fmt"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/storage"
)

// Tx is the storage surface of one invocation. It is only valid inside the
// function passed to VM.Invoke.
type Tx struct {
	schema  *storage.Schema
	cells   storage.CellStore
	events  *event.Codec
	emitted []event.Emitted
}

// Cells exposes the cell store for typed handles such as storage.Map.
func (tx *Tx) Cells() storage.CellStore { return tx.cells }

// Locate resolves path without touching any cell.
func (tx *Tx) Locate(path storage.Path) (storage.Location, error) {
	return tx.schema.Resolve(path)
}

func (tx *Tx) flat(path storage.Path) (storage.Location, *storage.FlatLayout, error) {
	loc, err := tx.schema.Resolve(path)
	if err != nil {
		return storage.Location{}, nil, err
	}
	flat, ok := loc.Layout.(*storage.FlatLayout)
	if !ok {
		return storage.Location{}, nil, fmt.Errorf("%w: %s is %s", storage.ErrNotFlat, path, loc.Layout)
	}
	return loc, flat, nil
}

// Read returns the value at path. Untouched cells read as the zero value.
func (tx *Tx) Read(path storage.Path) (interface{}, error) {
	loc, flat, err := tx.flat(path)
	if err != nil {
		return nil, err
	}
	v, err := storage.ReadValue(tx.cells, loc.Addr, flat.Type)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Load reads the value at path into dst.
func (tx *Tx) Load(path storage.Path, dst interface{}) error {
	loc, flat, err := tx.flat(path)
	if err != nil {
		return err
	}
	if t := reflect.TypeOf(dst); t == nil || t.Kind() != reflect.Ptr || t.Elem() != flat.Type {
		return fmt.Errorf("%w: %T for %s", storage.ErrTypeMismatch, dst, flat)
	}
	return storage.Load(tx.cells, loc.Addr, dst)
}

// Write stores v at path.
func (tx *Tx) Write(path storage.Path, v interface{}) error {
	loc, flat, err := tx.flat(path)
	if err != nil {
		return err
	}
	return storage.WriteValue(tx.cells, loc.Addr, flat.Type, reflect.ValueOf(v))
}

func (tx *Tx) array(path storage.Path) (*storage.Array, error) {
	loc, err := tx.schema.Resolve(path)
	if err != nil {
		return nil, err
	}
	return storage.OpenArray(tx.cells, loc)
}

func (tx *Tx) Push(path storage.Path, v interface{}) error {
	arr, err := tx.array(path)
	if err != nil {
		return err
	}
	return arr.Push(v)
}

func (tx *Tx) Pop(path storage.Path) (interface{}, bool, error) {
	arr, err := tx.array(path)
	if err != nil {
		return nil, false, err
	}
	return arr.Pop()
}

func (tx *Tx) Len(path storage.Path) (uint64, error) {
	arr, err := tx.array(path)
	if err != nil {
		return 0, err
	}
	return arr.Len()
}

// At panics with a *storage.BoundsError when i is out of range, which aborts
// the invocation.
func (tx *Tx) At(path storage.Path, i uint64) (interface{}, error) {
	arr, err := tx.array(path)
	if err != nil {
		return nil, err
	}
	return arr.At(i)
}

func (tx *Tx) Get(path storage.Path, i uint64) (interface{}, bool, error) {
	arr, err := tx.array(path)
	if err != nil {
		return nil, false, err
	}
	return arr.Get(i)
}

func (tx *Tx) mapping(path storage.Path) (*storage.Mapping, error) {
	loc, err := tx.schema.Resolve(path)
	if err != nil {
		return nil, err
	}
	return storage.OpenMapping(tx.cells, loc)
}

// MapRead returns the value under key; absent keys read as the zero value.
func (tx *Tx) MapRead(path storage.Path, key interface{}) (interface{}, error) {
	m, err := tx.mapping(path)
	if err != nil {
		return nil, err
	}
	return m.Read(key)
}

func (tx *Tx) MapWrite(path storage.Path, key, v interface{}) error {
	m, err := tx.mapping(path)
	if err != nil {
		return err
	}
	return m.Write(key, v)
}

// Emit encodes rec and queues it for the invocation's receipt. It reads and
// writes no cells.
func (tx *Tx) Emit(rec interface{}, opts ...event.Option) (event.Emitted, error) {
	e, err := tx.events.Encode(rec, opts...)
	if err != nil {
		return event.Emitted{}, err
	}
	tx.emitted = append(tx.emitted, e)
	return e, nil
}
