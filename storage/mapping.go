// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/felt"
)

// Mapping is a computed-address view of a map slot. It enumerates nothing and
// cannot tell a stored zero from an absent key.
type Mapping struct {
	cs     CellStore
	root   felt.Felt
	layout *MapLayout
}

// OpenMapping opens the map at a resolved location.
func OpenMapping(cs CellStore, loc Location) (*Mapping, error) {
	l, ok := loc.Layout.(*MapLayout)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a map", ErrSegmentMismatch, loc.Layout)
	}
	return &Mapping{cs: cs, root: loc.Addr, layout: l}, nil
}

func (m *Mapping) Root() felt.Felt { return m.root }

// Entry returns the location of key's slot.
func (m *Mapping) Entry(key interface{}) (Location, error) {
	return Step(Location{Addr: m.root, Layout: m.layout}, Key(key))
}

func (m *Mapping) flatEntry(key interface{}) (felt.Felt, *FlatLayout, error) {
	loc, err := m.Entry(key)
	if err != nil {
		return felt.Zero, nil, err
	}
	flat, ok := loc.Layout.(*FlatLayout)
	if !ok {
		return felt.Zero, nil, fmt.Errorf("%w: map value %s", ErrNotFlat, loc.Layout)
	}
	return loc.Addr, flat, nil
}

// Read returns the value stored under key, the zero value if never written.
func (m *Mapping) Read(key interface{}) (interface{}, error) {
	addr, flat, err := m.flatEntry(key)
	if err != nil {
		return nil, err
	}
	v, err := ReadValue(m.cs, addr, flat.Type)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Write stores v under key.
func (m *Mapping) Write(key, v interface{}) error {
	addr, flat, err := m.flatEntry(key)
	if err != nil {
		return err
	}
	return WriteValue(m.cs, addr, flat.Type, reflect.ValueOf(v))
}

// Map is a map slot with static key and value types.
type Map[K, V any] struct {
	cs   CellStore
	root felt.Felt
	key  reflect.Type
}

// NewMap opens the map rooted at root.
func NewMap[K, V any](cs CellStore, root felt.Felt) *Map[K, V] {
	return &Map[K, V]{cs: cs, root: root, key: reflect.TypeOf((*K)(nil)).Elem()}
}

func (m *Map[K, V]) Root() felt.Felt { return m.root }

// Entry returns the address of key's slot.
func (m *Map[K, V]) Entry(key K) (felt.Felt, error) {
	felts, err := KeyFelts(m.key, reflect.ValueOf(&key).Elem())
	if err != nil {
		return felt.Zero, err
	}
	return Entry(m.root, felts...), nil
}

func (m *Map[K, V]) Read(key K) (V, error) {
	addr, err := m.Entry(key)
	if err != nil {
		var zero V
		return zero, err
	}
	return serdeRead[V](m.cs, addr)
}

// Write stores v under key. Cells already holding their target value are
// left untouched.
func (m *Map[K, V]) Write(key K, v V) error {
	addr, err := m.Entry(key)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(&v).Elem()
	return WriteValue(m.cs, addr, rv.Type(), rv)
}

// NestedMap is a map of maps. The entry for (k1, k2) is the entry for k2 in
// the row map rooted at the entry address of k1.
type NestedMap[K1, K2, V any] struct {
	rows *Map[K1, struct{}]
}

// NewNestedMap opens the nested map rooted at root.
func NewNestedMap[K1, K2, V any](cs CellStore, root felt.Felt) *NestedMap[K1, K2, V] {
	return &NestedMap[K1, K2, V]{rows: NewMap[K1, struct{}](cs, root)}
}

func (m *NestedMap[K1, K2, V]) Root() felt.Felt { return m.rows.root }

// Row returns the inner map for k1.
func (m *NestedMap[K1, K2, V]) Row(k1 K1) (*Map[K2, V], error) {
	addr, err := m.rows.Entry(k1)
	if err != nil {
		return nil, err
	}
	return NewMap[K2, V](m.rows.cs, addr), nil
}

func (m *NestedMap[K1, K2, V]) Read(k1 K1, k2 K2) (V, error) {
	row, err := m.Row(k1)
	if err != nil {
		var zero V
		return zero, err
	}
	return row.Read(k2)
}

func (m *NestedMap[K1, K2, V]) Write(k1 K1, k2 K2, v V) error {
	row, err := m.Row(k1)
	if err != nil {
		return err
	}
	return row.Write(k2, v)
}
