// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package felt

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulus(t *testing.T) {
	assert := assert.New(t)
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
	p.Add(p, big.NewInt(1))
	assert.Equal(0, p.Cmp(Modulus()))
}

func TestFromBigCanonical(t *testing.T) {
	require := require.New(t)

	_, err := FromBig(Modulus())
	require.ErrorIs(err, ErrNotCanonical)

	_, err = FromBig(big.NewInt(-1))
	require.ErrorIs(err, ErrNotCanonical)

	max := new(big.Int).Sub(Modulus(), big.NewInt(1))
	f, err := FromBig(max)
	require.NoError(err)
	require.Equal(0, max.Cmp(f.Big()))
	require.Equal(Zero, f.Add(One))
}

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)
	a, b := FromUint64(10), FromUint64(4)

	assert.Equal(FromUint64(14), a.Add(b))
	assert.Equal(FromUint64(6), a.Sub(b))
	assert.Equal(FromUint64(40), a.Mul(b))
	assert.Equal(Zero, a.Add(a.Neg()))

	q, err := FromUint64(40).Div(b)
	assert.NoError(err)
	assert.Equal(a, q)

	_, err = a.Div(Zero)
	assert.ErrorIs(err, ErrDivisionByZero)
}

func TestTextRoundTrip(t *testing.T) {
	require := require.New(t)

	f, err := FromHex("0x00ff")
	require.NoError(err)
	require.Equal(FromUint64(255), f)
	require.Equal("0xff", f.String())

	d, err := FromString("255")
	require.NoError(err)
	require.Equal(f, d)

	_, err = FromHex("ff")
	require.Error(err)

	raw, err := json.Marshal([]Felt{Zero, f})
	require.NoError(err)
	require.JSONEq(`["0x0","0xff"]`, string(raw))

	var out []Felt
	require.NoError(json.Unmarshal(raw, &out))
	require.Equal([]Felt{Zero, f}, out)
}

func TestBytes(t *testing.T) {
	require := require.New(t)
	f := FromUint64(0x0102)
	b := f.Bytes()
	require.Equal(byte(0x01), b[30])
	require.Equal(byte(0x02), b[31])

	g, err := FromBytes(b[:])
	require.NoError(err)
	require.Equal(f, g)

	_, err = FromBytes(make([]byte, 33))
	require.ErrorIs(err, ErrNotCanonical)
}

func TestStarknetKeccak(t *testing.T) {
	require := require.New(t)

	transfer, err := FromHex("0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e")
	require.NoError(err)
	require.Equal(transfer, StarknetKeccak([]byte("transfer")))

	bound := new(big.Int).Lsh(big.NewInt(1), 250)
	for _, name := range []string{"", "balances", "Transfer", "owner"} {
		require.Negative(StarknetKeccak([]byte(name)).Big().Cmp(bound), name)
	}
}

func TestPedersenDeterministic(t *testing.T) {
	assert := assert.New(t)
	a, b := FromUint64(1), FromUint64(2)

	assert.Equal(Pedersen(a, b), Pedersen(a, b))
	assert.NotEqual(Pedersen(a, b), Pedersen(b, a))
	assert.Equal(Pedersen(Pedersen(a, b), a), PedersenChain(a, b, a))
	assert.Equal(a, PedersenChain(a))
}
