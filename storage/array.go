// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/scalar"
	"github.com/tanim0la/cairo-tutorial/serde"
)

// Array is a growable array of flat elements. The root cell holds the length;
// element i lives at VecElement(root, i, width), or at Entry(root, i) when the
// element type has no fixed width.
type Array struct {
	cs   CellStore
	root felt.Felt
	elem *FlatLayout
}

// NewArray opens the array rooted at root.
func NewArray(cs CellStore, root felt.Felt, elem *FlatLayout) *Array {
	return &Array{cs: cs, root: root, elem: elem}
}

// OpenArray opens the array at a resolved location.
func OpenArray(cs CellStore, loc Location) (*Array, error) {
	l, ok := loc.Layout.(*VecLayout)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrSegmentMismatch, loc.Layout)
	}
	return NewArray(cs, loc.Addr, l.Elem), nil
}

func (a *Array) Root() felt.Felt { return a.root }

// Elem returns the element layout.
func (a *Array) Elem() *FlatLayout { return a.elem }

// Len reads the length cell.
func (a *Array) Len() (uint64, error) {
	f, err := a.cs.Get(a.root)
	if err != nil {
		return 0, err
	}
	n, err := scalar.DecodeUint64(scalar.U64, f)
	if err != nil {
		return 0, fmt.Errorf("array length at %s: %w", a.root, err)
	}
	return n, nil
}

func (a *Array) setLen(n uint64) error {
	return writeCells(a.cs, a.root, []felt.Felt{scalar.EncodeUint64(n)})
}

// Push appends v. The element is written before the length is committed, so
// an interrupted push leaves the array unchanged.
func (a *Array) Push(v interface{}) error {
	return a.push(reflect.ValueOf(v))
}

func (a *Array) push(v reflect.Value) error {
	felts, err := encodeAs(a.elem.Type, v)
	if err != nil {
		return err
	}
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := writeCells(a.cs, elementAddr(a.root, a.elem, n), felts); err != nil {
		return err
	}
	return a.setLen(n + 1)
}

// Pop removes and returns the last element. ok is false on an empty array.
func (a *Array) Pop() (v interface{}, ok bool, err error) {
	rv, ok, err := a.pop()
	if err != nil || !ok {
		return nil, ok, err
	}
	return rv.Interface(), true, nil
}

func (a *Array) pop() (reflect.Value, bool, error) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return reflect.Value{}, false, err
	}
	addr := elementAddr(a.root, a.elem, n-1)
	v, err := ReadValue(a.cs, addr, a.elem.Type)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if err := a.setLen(n - 1); err != nil {
		return reflect.Value{}, false, err
	}
	width, fixed := a.elem.Width()
	if !fixed {
		felts, err := encodeAs(a.elem.Type, v)
		if err != nil {
			return reflect.Value{}, false, err
		}
		width = len(felts)
	}
	if err := clearCells(a.cs, addr, width); err != nil {
		return reflect.Value{}, false, err
	}
	return v, true, nil
}

// At returns element i. It panics with a *BoundsError if i >= Len.
func (a *Array) At(i uint64) (interface{}, error) {
	rv, err := a.at(i)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

func (a *Array) at(i uint64) (reflect.Value, error) {
	rv, n, err := a.lookup(i)
	if err != nil {
		return reflect.Value{}, err
	}
	if i >= n {
		panic(&BoundsError{Index: i, Length: n})
	}
	return rv, nil
}

// Get returns element i, or ok == false if i >= Len.
func (a *Array) Get(i uint64) (v interface{}, ok bool, err error) {
	rv, ok, err := a.get(i)
	if err != nil || !ok {
		return nil, ok, err
	}
	return rv.Interface(), true, nil
}

func (a *Array) get(i uint64) (reflect.Value, bool, error) {
	rv, n, err := a.lookup(i)
	if err != nil || i >= n {
		return reflect.Value{}, false, err
	}
	return rv, true, nil
}

// lookup reads the length and, when i is in range, element i.
func (a *Array) lookup(i uint64) (reflect.Value, uint64, error) {
	n, err := a.Len()
	if err != nil || i >= n {
		return reflect.Value{}, n, err
	}
	v, err := ReadValue(a.cs, elementAddr(a.root, a.elem, i), a.elem.Type)
	if err != nil {
		return reflect.Value{}, n, err
	}
	return v, n, nil
}

// Set overwrites element i.
func (a *Array) Set(i uint64, v interface{}) error {
	return a.set(i, reflect.ValueOf(v))
}

func (a *Array) set(i uint64, v reflect.Value) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return &BoundsError{Index: i, Length: n}
	}
	return WriteValue(a.cs, elementAddr(a.root, a.elem, i), a.elem.Type, v)
}

// Vec is an Array with a static element type.
type Vec[T any] struct {
	arr *Array
}

// NewVec opens the vector of T rooted at root.
func NewVec[T any](cs CellStore, root felt.Felt) *Vec[T] {
	return &Vec[T]{arr: NewArray(cs, root, Flat[T]())}
}

func (v *Vec[T]) Root() felt.Felt { return v.arr.root }

func (v *Vec[T]) Len() (uint64, error) { return v.arr.Len() }

func (v *Vec[T]) Push(x T) error {
	return v.arr.push(reflect.ValueOf(&x).Elem())
}

func (v *Vec[T]) Pop() (T, bool, error) {
	rv, ok, err := v.arr.pop()
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return as[T](rv), true, nil
}

// At panics with a *BoundsError if i >= Len.
func (v *Vec[T]) At(i uint64) (T, error) {
	rv, err := v.arr.at(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](rv), nil
}

func (v *Vec[T]) Get(i uint64) (T, bool, error) {
	rv, ok, err := v.arr.get(i)
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return as[T](rv), true, nil
}

func (v *Vec[T]) Set(i uint64, x T) error {
	return v.arr.set(i, reflect.ValueOf(&x).Elem())
}

// Collect reads every element in order.
func (v *Vec[T]) Collect() ([]T, error) {
	n, err := v.Len()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		x, err := serdeRead[T](v.arr.cs, elementAddr(v.arr.root, v.arr.elem, i))
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// as converts a decoded value to T. Interface-typed T keeps a nil zero value.
func as[T any](rv reflect.Value) T {
	x, _ := rv.Interface().(T)
	return x
}

func serdeRead[T any](cs CellStore, addr felt.Felt) (T, error) {
	var x T
	d := serde.NewStreamDecoder(&cellSource{cs: cs, addr: addr})
	if err := d.Decode(&x); err != nil {
		return x, fmt.Errorf("reading %T at %s: %w", x, addr, err)
	}
	return x, nil
}
