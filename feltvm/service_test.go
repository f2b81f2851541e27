// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feltvm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/storage"
)

func TestStaticService(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ss := CreateStaticService()

	sel := SelectorReply{}
	require.NoError(ss.Selector(nil, &SelectorArgs{Name: "Transfer"}, &sel))
	assert.Equal(event.Selector("Transfer"), sel.Selector)

	addr := StorageAddressReply{}
	require.NoError(ss.StorageAddress(nil, &StorageAddressArgs{Variable: "balances", Keys: []felt.Felt{felt.One}}, &addr))
	assert.Equal(storage.Entry(storage.VariableBase("balances"), felt.One), addr.Address)

	text := "a byte array that needs two words of storage"
	felts := FeltsReply{}
	require.NoError(ss.EncodeByteArray(nil, &ByteArrayArgs{Data: text}, &felts))
	assert.Equal(felt.FromUint64(1), felts.Felts[0])

	decoded := ByteArrayReply{}
	require.NoError(ss.DecodeByteArray(nil, &FeltsArgs{Felts: felts.Felts}, &decoded))
	assert.Equal(text, decoded.Data)
	assert.Error(ss.DecodeByteArray(nil, &FeltsArgs{Felts: felts.Felts[:2]}, &decoded))

	v := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 200), big.NewInt(7))
	split := SplitU256Reply{}
	require.NoError(ss.SplitU256(nil, &SplitU256Args{Value: v.String()}, &split))
	assert.Equal(felt.FromUint64(7), split.Low)
	assert.Equal(0, split.High.Big().Cmp(new(big.Int).Lsh(big.NewInt(1), 72)))

	hex := SplitU256Reply{}
	require.NoError(ss.SplitU256(nil, &SplitU256Args{Value: "0x" + v.Text(16)}, &hex))
	assert.Equal(split, hex)
	assert.Error(ss.SplitU256(nil, &SplitU256Args{Value: "not a number"}, &hex))
}
