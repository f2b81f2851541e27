// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package felt

import (
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
	"golang.org/x/crypto/sha3"
)

// Pedersen returns the Pedersen hash of (a, b) over the stark curve.
func Pedersen(a, b Felt) Felt {
	return Felt{val: pedersenhash.Pedersen(&a.val, &b.val)}
}

// PedersenChain folds elems into acc left to right: h = H(...H(H(acc, e0), e1)..., en).
func PedersenChain(acc Felt, elems ...Felt) Felt {
	for _, e := range elems {
		acc = Pedersen(acc, e)
	}
	return acc
}

// StarknetKeccak is keccak256(data) truncated to its low 250 bits.
func StarknetKeccak(data []byte) Felt {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var digest [Bytes]byte
	h.Sum(digest[:0])
	digest[0] &= 0x03

	var f Felt
	f.val.SetBytes(digest[:])
	return f
}
