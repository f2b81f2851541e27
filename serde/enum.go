// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serde

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/tanim0la/cairo-tutorial/scalar"
)

var (
	errNotInterface     = errors.New("serde: enum type must be an interface")
	errNilVariant       = errors.New("serde: enum variant must not be nil")
	errDuplicateVariant = errors.New("serde: duplicate enum variant")
	errNoVariants       = errors.New("serde: enum needs at least one variant")

	enumsLock sync.RWMutex
	enums     = map[reflect.Type]*enumInfo{}
)

type enumInfo struct {
	variants []reflect.Type
	index    map[reflect.Type]int
}

// RegisterEnum declares the interface type E as a tagged union of the given
// variants. A variant's discriminant is its position in the list.
//
//	type Shape interface{ isShape() }
//	serde.RegisterEnum[Shape](Circle{}, Square{}, Empty{})
//
// Values are encoded as enums only when their static type is E: as a field or
// element of type E, or passed to Marshal as a *E.
func RegisterEnum[E any](variants ...E) error {
	iface := reflect.TypeOf((*E)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s", errNotInterface, iface)
	}
	if len(variants) == 0 {
		return fmt.Errorf("%w: %s", errNoVariants, iface)
	}
	info := &enumInfo{index: make(map[reflect.Type]int, len(variants))}
	for i, v := range variants {
		vt := reflect.TypeOf(interface{}(v))
		if vt == nil {
			return fmt.Errorf("%w: %s variant %d", errNilVariant, iface, i)
		}
		if _, ok := info.index[vt]; ok {
			return fmt.Errorf("%w: %s in %s", errDuplicateVariant, vt, iface)
		}
		info.index[vt] = i
		info.variants = append(info.variants, vt)
	}

	enumsLock.Lock()
	defer enumsLock.Unlock()
	enums[iface] = info
	return nil
}

// MustRegisterEnum is RegisterEnum that panics on error, for package init.
func MustRegisterEnum[E any](variants ...E) {
	if err := RegisterEnum[E](variants...); err != nil {
		panic(err)
	}
}

// Variants returns the registered variant types of enum type iface.
func Variants(iface reflect.Type) ([]reflect.Type, bool) {
	info, ok := lookupEnum(iface)
	if !ok {
		return nil, false
	}
	return append([]reflect.Type(nil), info.variants...), true
}

func lookupEnum(iface reflect.Type) (*enumInfo, bool) {
	enumsLock.RLock()
	defer enumsLock.RUnlock()
	info, ok := enums[iface]
	return info, ok
}

func (e *Encoder) encodeEnum(v reflect.Value) error {
	info, ok := lookupEnum(v.Type())
	if !ok {
		return fmt.Errorf("%w: interface %s is not a registered enum", ErrUnsupportedType, v.Type())
	}
	if v.IsNil() {
		return fmt.Errorf("%w: nil %s", ErrUnsupportedType, v.Type())
	}
	inner := v.Elem()
	idx, ok := info.index[inner.Type()]
	if !ok {
		return fmt.Errorf("%w: %s is not a variant of %s", ErrUnsupportedType, inner.Type(), v.Type())
	}
	e.Felt(scalar.EncodeUint64(uint64(idx)))
	return e.encode(inner)
}

func (d *Decoder) decodeEnum(v reflect.Value) error {
	info, ok := lookupEnum(v.Type())
	if !ok {
		return fmt.Errorf("%w: interface %s is not a registered enum", ErrUnsupportedType, v.Type())
	}
	f, err := d.Next()
	if err != nil {
		return err
	}
	idx, ok := f.Uint64()
	if !ok || idx >= uint64(len(info.variants)) {
		return fmt.Errorf("%w: %s has no variant %s", ErrMalformed, v.Type(), f)
	}
	inner := reflect.New(info.variants[idx]).Elem()
	if err := d.decode(inner); err != nil {
		return err
	}
	v.Set(inner)
	return nil
}

// enumWidth is 1 + payload width when every variant shares one static width.
func enumWidth(iface reflect.Type) (int, bool) {
	info, ok := lookupEnum(iface)
	if !ok {
		return 0, false
	}
	width := -1
	for _, vt := range info.variants {
		w, ok := WidthOf(vt)
		if !ok || (width >= 0 && w != width) {
			return 0, false
		}
		width = w
	}
	return 1 + width, true
}
