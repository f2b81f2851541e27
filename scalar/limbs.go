// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scalar

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tanim0la/cairo-tutorial/felt"
)

// LimbBits is the width of one limb of an integer wider than a felt.
// Limbs are ordered least significant first.
const LimbBits = 128

var limbMask = new(big.Int).Sub(pow2(LimbBits), big.NewInt(1))

// LimbCount returns how many limbs an integer of the given width needs.
func LimbCount(bits int) int {
	return (bits + LimbBits - 1) / LimbBits
}

// SplitU256 returns the (low, high) limbs of v.
func SplitU256(v *uint256.Int) (low, high felt.Felt) {
	var lo, hi uint256.Int
	lo[0], lo[1] = v[0], v[1]
	hi[0], hi[1] = v[2], v[3]
	low, _ = felt.FromBig(lo.ToBig())
	high, _ = felt.FromBig(hi.ToBig())
	return low, high
}

// JoinU256 computes high*2^128 + low. Both limbs must be below 2^128.
func JoinU256(low, high felt.Felt) (*uint256.Int, error) {
	lo, err := DecodeUnsigned(U128, low)
	if err != nil {
		return nil, err
	}
	hi, err := DecodeUnsigned(U128, high)
	if err != nil {
		return nil, err
	}
	v, _ := uint256.FromBig(lo.Or(lo, hi.Lsh(hi, LimbBits)))
	return v, nil
}

// SplitLimbs decomposes v into n limbs, least significant first.
func SplitLimbs(v *big.Int, n int) ([]felt.Felt, error) {
	t := Type{Kind: KindUnsigned, Bits: n * LimbBits}
	if v.Sign() < 0 || v.BitLen() > t.Bits {
		return nil, rangeErr(t, v)
	}
	limbs := make([]felt.Felt, n)
	rest := new(big.Int).Set(v)
	for i := range limbs {
		limbs[i], _ = felt.FromBig(new(big.Int).And(rest, limbMask))
		rest.Rsh(rest, LimbBits)
	}
	return limbs, nil
}

// JoinLimbs recombines limbs produced by SplitLimbs.
func JoinLimbs(limbs []felt.Felt) (*big.Int, error) {
	v := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		limb, err := DecodeUnsigned(U128, limbs[i])
		if err != nil {
			return nil, err
		}
		v.Lsh(v, LimbBits).Or(v, limb)
	}
	return v, nil
}
