// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scalar maps primitive values to and from a single field element.
// Decoding never truncates: a felt outside the declared domain is a
// *RangeError.
package scalar

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tanim0la/cairo-tutorial/felt"
)

// Kind is the family of a scalar type.
type Kind uint8

const (
	KindBool Kind = iota
	KindUnsigned
	KindSigned
	KindAddress
	KindBytes31
	KindFelt
)

// Type is a scalar type descriptor. Bits is the declared width for integer kinds.
type Type struct {
	Kind Kind
	Bits int
}

var (
	Bool    = Type{Kind: KindBool, Bits: 1}
	U8      = Type{Kind: KindUnsigned, Bits: 8}
	U16     = Type{Kind: KindUnsigned, Bits: 16}
	U32     = Type{Kind: KindUnsigned, Bits: 32}
	U64     = Type{Kind: KindUnsigned, Bits: 64}
	U128    = Type{Kind: KindUnsigned, Bits: 128}
	I8      = Type{Kind: KindSigned, Bits: 8}
	I16     = Type{Kind: KindSigned, Bits: 16}
	I32     = Type{Kind: KindSigned, Bits: 32}
	I64     = Type{Kind: KindSigned, Bits: 64}
	I128    = Type{Kind: KindSigned, Bits: 128}
	Address = Type{Kind: KindAddress, Bits: 251}
	Bytes31 = Type{Kind: KindBytes31, Bits: 248}
	Felt252 = Type{Kind: KindFelt, Bits: 252}

	ErrOutOfRange = errors.New("value out of range")

	halfModulus = new(big.Int).Rsh(felt.Modulus(), 1)
)

func (t Type) String() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindUnsigned:
		return fmt.Sprintf("u%d", t.Bits)
	case KindSigned:
		return fmt.Sprintf("i%d", t.Bits)
	case KindAddress:
		return "ContractAddress"
	case KindBytes31:
		return "bytes31"
	default:
		return "felt252"
	}
}

// RangeError reports a value outside the domain of its declared type.
type RangeError struct {
	Type  Type
	Value *big.Int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s is not a valid %s", ErrOutOfRange, e.Value.String(), e.Type)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func rangeErr(t Type, v *big.Int) error {
	return &RangeError{Type: t, Value: new(big.Int).Set(v)}
}

func pow2(bits int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(bits))
}

func EncodeBool(b bool) felt.Felt {
	if b {
		return felt.One
	}
	return felt.Zero
}

func DecodeBool(f felt.Felt) (bool, error) {
	switch {
	case f.IsZero():
		return false, nil
	case f == felt.One:
		return true, nil
	default:
		return false, rangeErr(Bool, f.Big())
	}
}

// EncodeUnsigned encodes v as an unsigned integer of type t.
func EncodeUnsigned(t Type, v *big.Int) (felt.Felt, error) {
	if v.Sign() < 0 || v.Cmp(pow2(t.Bits)) >= 0 {
		return felt.Zero, rangeErr(t, v)
	}
	return felt.FromBig(v)
}

func DecodeUnsigned(t Type, f felt.Felt) (*big.Int, error) {
	v := f.Big()
	if v.Cmp(pow2(t.Bits)) >= 0 {
		return nil, rangeErr(t, v)
	}
	return v, nil
}

// EncodeSigned encodes v as a signed integer of type t. Negative values are
// represented by their field negation P + v.
func EncodeSigned(t Type, v *big.Int) (felt.Felt, error) {
	half := pow2(t.Bits - 1)
	if v.Cmp(new(big.Int).Neg(half)) < 0 || v.Cmp(half) >= 0 {
		return felt.Zero, rangeErr(t, v)
	}
	return felt.FromBigReduced(v), nil
}

func DecodeSigned(t Type, f felt.Felt) (*big.Int, error) {
	v := f.Big()
	if v.Cmp(halfModulus) > 0 {
		v.Sub(v, felt.Modulus())
	}
	half := pow2(t.Bits - 1)
	if v.Cmp(new(big.Int).Neg(half)) < 0 || v.Cmp(half) >= 0 {
		return nil, rangeErr(t, f.Big())
	}
	return v, nil
}

func EncodeUint64(v uint64) felt.Felt {
	return felt.FromUint64(v)
}

// DecodeUint64 decodes an unsigned integer of at most 64 bits.
func DecodeUint64(t Type, f felt.Felt) (uint64, error) {
	v, ok := f.Uint64()
	if !ok || (t.Bits < 64 && v>>uint(t.Bits) != 0) {
		return 0, rangeErr(t, f.Big())
	}
	return v, nil
}

func EncodeInt64(v int64) felt.Felt {
	if v >= 0 {
		return felt.FromUint64(uint64(v))
	}
	return felt.FromUint64(uint64(-(v + 1)) + 1).Neg()
}

// DecodeInt64 decodes a signed integer of at most 64 bits.
func DecodeInt64(t Type, f felt.Felt) (int64, error) {
	v, err := DecodeSigned(t, f)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// CheckAddress verifies f is a valid contract address, i.e. below 2^251.
func CheckAddress(f felt.Felt) error {
	if v := f.Big(); v.BitLen() > Address.Bits {
		return rangeErr(Address, v)
	}
	return nil
}

// EncodeBytes31 packs 31 bytes big-endian into one felt.
func EncodeBytes31(b [31]byte) felt.Felt {
	f, _ := felt.FromBytes(b[:])
	return f
}

func DecodeBytes31(f felt.Felt) ([31]byte, error) {
	var out [31]byte
	raw := f.Bytes()
	if raw[0] != 0 {
		return out, rangeErr(Bytes31, f.Big())
	}
	copy(out[:], raw[1:])
	return out, nil
}
