// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serde

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/holiman/uint256"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/scalar"
)

var (
	feltType      = reflect.TypeOf(felt.Felt{})
	addressType   = reflect.TypeOf(felt.Address{})
	u256Type      = reflect.TypeOf(uint256.Int{})
	bytes31Type   = reflect.TypeOf([31]byte{})
	marshalerType = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	widtherType   = reflect.TypeOf((*Widther)(nil)).Elem()
)

// Fields returns the serialized fields of struct type t in declaration order.
func Fields(t reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Tag.Get("serde") == "-" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func intType(k reflect.Kind) scalar.Type {
	switch k {
	case reflect.Uint8:
		return scalar.U8
	case reflect.Uint16:
		return scalar.U16
	case reflect.Uint32:
		return scalar.U32
	case reflect.Uint64, reflect.Uint:
		return scalar.U64
	case reflect.Int8:
		return scalar.I8
	case reflect.Int16:
		return scalar.I16
	case reflect.Int32:
		return scalar.I32
	default:
		return scalar.I64
	}
}

func (e *Encoder) encode(v reflect.Value) error {
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("%w: nil %s", ErrUnsupportedType, t)
		}
		return e.encode(v.Elem())
	}
	if t.Implements(marshalerType) {
		return v.Interface().(Marshaler).MarshalFelts(e)
	}
	if reflect.PtrTo(t).Implements(marshalerType) {
		p := reflect.New(t)
		p.Elem().Set(v)
		return p.Interface().(Marshaler).MarshalFelts(e)
	}

	switch t {
	case feltType:
		e.Felt(v.Interface().(felt.Felt))
		return nil
	case addressType:
		a := v.Interface().(felt.Address)
		if err := scalar.CheckAddress(a.Felt()); err != nil {
			return err
		}
		e.Felt(a.Felt())
		return nil
	case u256Type:
		u := v.Interface().(uint256.Int)
		low, high := scalar.SplitU256(&u)
		e.Felt(low)
		e.Felt(high)
		return nil
	case bytes31Type:
		e.Felt(scalar.EncodeBytes31(v.Interface().([31]byte)))
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		e.Felt(scalar.EncodeBool(v.Bool()))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		e.Felt(scalar.EncodeUint64(v.Uint()))
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		e.Felt(scalar.EncodeInt64(v.Int()))
	case reflect.String:
		ChunkByteArray([]byte(v.String())).encode(e)
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := e.encode(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Slice:
		e.Felt(scalar.EncodeUint64(uint64(v.Len())))
		for i := 0; i < v.Len(); i++ {
			if err := e.encode(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for _, f := range Fields(t) {
			if err := e.encode(v.FieldByIndex(f.Index)); err != nil {
				return fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
			}
		}
	case reflect.Interface:
		return e.encodeEnum(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}

func (d *Decoder) decode(v reflect.Value) error {
	t := v.Type()
	if reflect.PtrTo(t).Implements(unmarshalType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalFelts(d)
	}

	switch t {
	case feltType:
		f, err := d.Next()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(f))
		return nil
	case addressType:
		f, err := d.Next()
		if err != nil {
			return err
		}
		if err := scalar.CheckAddress(f); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(felt.Address(f)))
		return nil
	case u256Type:
		low, err := d.Next()
		if err != nil {
			return err
		}
		high, err := d.Next()
		if err != nil {
			return err
		}
		u, err := scalar.JoinU256(low, high)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*u))
		return nil
	case bytes31Type:
		f, err := d.Next()
		if err != nil {
			return err
		}
		b, err := scalar.DecodeBytes31(f)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(b))
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		f, err := d.Next()
		if err != nil {
			return err
		}
		b, err := scalar.DecodeBool(f)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		f, err := d.Next()
		if err != nil {
			return err
		}
		u, err := scalar.DecodeUint64(intType(t.Kind()), f)
		if err != nil {
			return err
		}
		v.SetUint(u)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		f, err := d.Next()
		if err != nil {
			return err
		}
		i, err := scalar.DecodeInt64(intType(t.Kind()), f)
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.String:
		var parts ByteArrayParts
		if err := parts.decode(d); err != nil {
			return err
		}
		v.SetString(string(parts.Bytes()))
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := d.decode(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Slice:
		n, err := d.length()
		if err != nil {
			return err
		}
		s := reflect.MakeSlice(t, 0, minInt(n, 1024))
		for i := 0; i < n; i++ {
			elem := reflect.New(t.Elem()).Elem()
			if err := d.decode(elem); err != nil {
				return err
			}
			s = reflect.Append(s, elem)
		}
		v.Set(s)
	case reflect.Struct:
		for _, f := range Fields(t) {
			if err := d.decode(v.FieldByIndex(f.Index)); err != nil {
				return fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
			}
		}
	case reflect.Interface:
		return d.decodeEnum(v)
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}
		return d.decode(v.Elem())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}

// length reads a u32 element count.
func (d *Decoder) length() (int, error) {
	f, err := d.Next()
	if err != nil {
		return 0, err
	}
	n, err := scalar.DecodeUint64(scalar.U32, f)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// WidthOf returns the static serialized width of t, or false when the width
// depends on the value.
func WidthOf(t reflect.Type) (int, bool) {
	if t.Kind() == reflect.Ptr {
		return WidthOf(t.Elem())
	}
	if t.Kind() != reflect.Interface && t.Implements(widtherType) {
		return reflect.Zero(t).Interface().(Widther).FeltWidth(), true
	}
	if t.Implements(marshalerType) || reflect.PtrTo(t).Implements(marshalerType) {
		return 0, false
	}
	switch t {
	case feltType, addressType, bytes31Type:
		return 1, true
	case u256Type:
		return 2, true
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return 1, true
	case reflect.Array:
		w, ok := WidthOf(t.Elem())
		return w * t.Len(), ok
	case reflect.Struct:
		total := 0
		for _, f := range Fields(t) {
			w, ok := WidthOf(f.Type)
			if !ok {
				return 0, false
			}
			total += w
		}
		return total, true
	case reflect.Interface:
		return enumWidth(t)
	default:
		return 0, false
	}
}

// Width returns the static width of v's type.
func Width(v interface{}) (int, bool) {
	return WidthOf(reflect.TypeOf(v))
}

// FieldOffset returns the position of the named field within the
// serialization of struct type t. Every preceding field must have a static
// width.
func FieldOffset(t reflect.Type, name string) (int, reflect.StructField, error) {
	offset := 0
	for _, f := range Fields(t) {
		if f.Name == name {
			return offset, f, nil
		}
		w, ok := WidthOf(f.Type)
		if !ok {
			return 0, f, fmt.Errorf("%w: field %s of %s precedes %s with a dynamic width", ErrUnsupportedType, f.Name, t, name)
		}
		offset += w
	}
	return 0, reflect.StructField{}, fmt.Errorf("%w: %s has no field %s", ErrUnsupportedType, t, name)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func bigFromUint64s(hi, lo uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(lo))
}
