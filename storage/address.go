// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/felt"
)

// AddressBound is 2^251 - 256. Hashed base addresses are reduced below it so
// that small offsets from a base never leave the address range.
var AddressBound = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 251), big.NewInt(256))

func reduce(f felt.Felt) felt.Felt {
	b := f.Big()
	if b.Cmp(AddressBound) < 0 {
		return f
	}
	r, _ := felt.FromBig(b.Mod(b, AddressBound))
	return r
}

// VariableBase is the base address of a top-level storage variable: the
// starknet-keccak of its name.
func VariableBase(name string) felt.Felt {
	return reduce(felt.StarknetKeccak([]byte(name)))
}

// Entry hashes key elements into base one at a time, reducing after each
// step. A map entry for a multi-element key and a nested map entry reached
// through the same elements share one address:
// Entry(Entry(b, k1), k2) == Entry(b, k1, k2).
func Entry(base felt.Felt, key ...felt.Felt) felt.Felt {
	acc := base
	for _, k := range key {
		acc = reduce(felt.Pedersen(acc, k))
	}
	return acc
}

// Offset returns base + n.
func Offset(base felt.Felt, n uint64) felt.Felt {
	if n == 0 {
		return base
	}
	return base.Add(felt.FromUint64(n))
}

// MemberRoot is the namespace root of an addressable member of a storage node.
func MemberRoot(base felt.Felt, name string) felt.Felt {
	return Entry(base, felt.StarknetKeccak([]byte(name)))
}

// VecElement returns root + 1 + index*width, the address of a fixed-width
// array element. The root cell holds the length.
func VecElement(root felt.Felt, index, width uint64) felt.Felt {
	step := felt.FromUint64(index).Mul(felt.FromUint64(width))
	return root.Add(felt.One).Add(step)
}

// KeyFelts serializes a map key as type t.
func KeyFelts(t reflect.Type, key reflect.Value) ([]felt.Felt, error) {
	felts, err := encodeAs(t, key)
	if err != nil {
		return nil, err
	}
	if len(felts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyKey, t)
	}
	return felts, nil
}
