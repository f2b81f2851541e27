// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package felt implements the field element, the atomic unit of storage and
// serialization: an integer modulo P = 2^251 + 17*2^192 + 1.
package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Bytes is the width of a canonical big-endian felt encoding.
const Bytes = fp.Bytes

var (
	ErrNotCanonical    = errors.New("value is not a canonical field element")
	ErrDivisionByZero  = errors.New("division by zero")
	errInvalidFeltText = errors.New("invalid field element text")

	Zero = Felt{}
	One  = FromUint64(1)

	modulus = fp.Modulus()
)

// Felt is a canonical field element. The zero value is 0 and values are
// comparable with ==.
type Felt struct {
	val fp.Element
}

// Address is a felt restricted to [0, 2^251) by the scalar codec.
type Address Felt

// Modulus returns a copy of P.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

func FromUint64(v uint64) Felt {
	var f Felt
	f.val.SetUint64(v)
	return f
}

// FromBig returns the felt equal to b. b must lie in [0, P).
func FromBig(b *big.Int) (Felt, error) {
	if b.Sign() < 0 || b.Cmp(modulus) >= 0 {
		return Zero, fmt.Errorf("%w: %s", ErrNotCanonical, b.Text(16))
	}
	var f Felt
	f.val.SetBigInt(b)
	return f, nil
}

// FromBigReduced returns b mod P, accepting negative inputs.
func FromBigReduced(b *big.Int) Felt {
	var f Felt
	f.val.SetBigInt(new(big.Int).Mod(b, modulus))
	return f
}

// FromBytes decodes up to 32 big-endian bytes. The value must be below P.
func FromBytes(b []byte) (Felt, error) {
	if len(b) > Bytes {
		return Zero, fmt.Errorf("%w: %d bytes", ErrNotCanonical, len(b))
	}
	return FromBig(new(big.Int).SetBytes(b))
}

// FromHex parses a 0x-prefixed hexadecimal string. Leading zeros are allowed.
func FromHex(s string) (Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits) == len(s) || digits == "" {
		return Zero, fmt.Errorf("%w: %q", errInvalidFeltText, s)
	}
	b, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return Zero, fmt.Errorf("%w: %q", errInvalidFeltText, s)
	}
	return FromBig(b)
}

// FromString parses either a 0x-prefixed hex string or a decimal string.
func FromString(s string) (Felt, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return FromHex(s)
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Zero, fmt.Errorf("%w: %q", errInvalidFeltText, s)
	}
	return FromBig(b)
}

func (f Felt) Big() *big.Int {
	return f.val.BigInt(new(big.Int))
}

// Bytes returns the canonical big-endian encoding.
func (f Felt) Bytes() [Bytes]byte {
	return f.val.Bytes()
}

// Uint64 returns the value and whether it fits in 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	if !f.val.IsUint64() {
		return 0, false
	}
	return f.val.Uint64(), true
}

func (f Felt) IsZero() bool { return f.val.IsZero() }

// Cmp compares the canonical integer values of f and g.
func (f Felt) Cmp(g Felt) int { return f.val.Cmp(&g.val) }

func (f Felt) Add(g Felt) Felt {
	var r Felt
	r.val.Add(&f.val, &g.val)
	return r
}

func (f Felt) Sub(g Felt) Felt {
	var r Felt
	r.val.Sub(&f.val, &g.val)
	return r
}

func (f Felt) Mul(g Felt) Felt {
	var r Felt
	r.val.Mul(&f.val, &g.val)
	return r
}

func (f Felt) Neg() Felt {
	var r Felt
	r.val.Neg(&f.val)
	return r
}

// Div returns f / g in the field.
func (f Felt) Div(g Felt) (Felt, error) {
	if g.IsZero() {
		return Zero, ErrDivisionByZero
	}
	var inv, r Felt
	inv.val.Inverse(&g.val)
	r.val.Mul(&f.val, &inv.val)
	return r, nil
}

// String returns the minimal 0x-prefixed hex form.
func (f Felt) String() string {
	return hexutil.EncodeBig(f.Big())
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	v, err := FromString(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (a Address) Felt() Felt { return Felt(a) }

func (a Address) String() string { return Felt(a).String() }

func (a Address) MarshalText() ([]byte, error) { return Felt(a).MarshalText() }

func (a *Address) UnmarshalText(text []byte) error { return (*Felt)(a).UnmarshalText(text) }
