// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serde

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/scalar"
)

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64 = new(big.Int).Sub(two64, big.NewInt(1))

	_ Marshaler   = U128{}
	_ Unmarshaler = (*U128)(nil)
	_ Marshaler   = I128{}
	_ Unmarshaler = (*I128)(nil)
)

// U128 is an unsigned 128-bit integer occupying one felt.
type U128 struct {
	Hi, Lo uint64
}

func U128From64(v uint64) U128 { return U128{Lo: v} }

func U128FromBig(b *big.Int) (U128, error) {
	if b.Sign() < 0 || b.Cmp(two128) >= 0 {
		return U128{}, &scalar.RangeError{Type: scalar.U128, Value: new(big.Int).Set(b)}
	}
	hi := new(big.Int).Rsh(b, 64)
	lo := new(big.Int).And(b, mask64)
	return U128{Hi: hi.Uint64(), Lo: lo.Uint64()}, nil
}

func (u U128) Big() *big.Int { return bigFromUint64s(u.Hi, u.Lo) }

func (u U128) String() string { return u.Big().String() }

func (U128) FeltWidth() int { return 1 }

func (u U128) MarshalFelts(e *Encoder) error {
	f, err := scalar.EncodeUnsigned(scalar.U128, u.Big())
	if err != nil {
		return err
	}
	e.Felt(f)
	return nil
}

func (u *U128) UnmarshalFelts(d *Decoder) error {
	f, err := d.Next()
	if err != nil {
		return err
	}
	v, err := scalar.DecodeUnsigned(scalar.U128, f)
	if err != nil {
		return err
	}
	*u, err = U128FromBig(v)
	return err
}

// I128 is a signed 128-bit integer in two's complement halves.
type I128 struct {
	Hi int64
	Lo uint64
}

func I128From64(v int64) I128 {
	if v < 0 {
		return I128{Hi: -1, Lo: uint64(v)}
	}
	return I128{Lo: uint64(v)}
}

func I128FromBig(b *big.Int) (I128, error) {
	half := new(big.Int).Rsh(two128, 1)
	if b.Cmp(new(big.Int).Neg(half)) < 0 || b.Cmp(half) >= 0 {
		return I128{}, &scalar.RangeError{Type: scalar.I128, Value: new(big.Int).Set(b)}
	}
	m := new(big.Int).Mod(b, two128)
	hi := new(big.Int).Rsh(m, 64)
	lo := new(big.Int).And(m, mask64)
	return I128{Hi: int64(hi.Uint64()), Lo: lo.Uint64()}, nil
}

func (i I128) Big() *big.Int {
	v := new(big.Int).SetInt64(i.Hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(i.Lo))
}

func (i I128) String() string { return i.Big().String() }

func (I128) FeltWidth() int { return 1 }

func (i I128) MarshalFelts(e *Encoder) error {
	f, err := scalar.EncodeSigned(scalar.I128, i.Big())
	if err != nil {
		return err
	}
	e.Felt(f)
	return nil
}

func (i *I128) UnmarshalFelts(d *Decoder) error {
	f, err := d.Next()
	if err != nil {
		return err
	}
	v, err := scalar.DecodeSigned(scalar.I128, f)
	if err != nil {
		return err
	}
	*i, err = I128FromBig(v)
	return err
}

// Option holds an optional value. It serializes as a discriminant, 0 for
// None and 1 for Some, followed by the value when present, so the zero Option
// and an untouched storage cell both read as None.
type Option[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Option[T] { return Option[T]{Value: v, Valid: true} }

func None[T any]() Option[T] { return Option[T]{} }

func (o Option[T]) MarshalFelts(e *Encoder) error {
	if !o.Valid {
		e.Felt(scalar.EncodeUint64(0))
		return nil
	}
	e.Felt(scalar.EncodeUint64(1))
	return e.encode(reflect.ValueOf(&o.Value).Elem())
}

func (o *Option[T]) UnmarshalFelts(d *Decoder) error {
	f, err := d.Next()
	if err != nil {
		return err
	}
	switch {
	case f.IsZero():
		*o = Option[T]{}
		return nil
	case f == scalar.EncodeUint64(1):
		o.Valid = true
		return d.decode(reflect.ValueOf(&o.Value).Elem())
	default:
		return fmt.Errorf("%w: option discriminant %s", ErrMalformed, f)
	}
}
