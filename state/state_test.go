// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/storage"
)

func TestCellState(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	db := memdb.New()
	cells := NewCellState(db)
	addr := storage.VariableBase("counter")

	v, err := cells.Get(addr)
	require.NoError(err)
	assert.True(v.IsZero())

	require.NoError(cells.Set(addr, felt.FromUint64(42)))
	v, err = cells.Get(addr)
	require.NoError(err)
	assert.Equal(felt.FromUint64(42), v)

	require.NoError(cells.Set(addr, felt.Zero))
	key := addr.Bytes()
	has, err := db.Has(key[:])
	require.NoError(err)
	assert.False(has)
}

func TestMeteredCellsIdempotentMapWrite(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	metered, err := NewMeteredCells(NewCellState(memdb.New()), "test", prometheus.NewRegistry())
	require.NoError(err)

	m := storage.NewMap[uint64, uint64](metered, storage.VariableBase("balances"))
	require.NoError(m.Write(1, 100))
	assert.Equal(1.0, testutil.ToFloat64(metered.writes))

	require.NoError(m.Write(1, 100))
	assert.Equal(1.0, testutil.ToFloat64(metered.writes))
	assert.Equal(2.0, testutil.ToFloat64(metered.reads))
}

func TestStateCommitAndAbort(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	db := memdb.New()
	s, err := NewState(db, "", nil)
	require.NoError(err)
	addr := storage.VariableBase("counter")

	require.NoError(s.Cells().Set(addr, felt.FromUint64(1)))
	require.NoError(s.Commit())

	require.NoError(s.Cells().Set(addr, felt.FromUint64(2)))
	v, err := s.Cells().Get(addr)
	require.NoError(err)
	assert.Equal(felt.FromUint64(2), v)
	s.Abort()

	v, err = s.Cells().Get(addr)
	require.NoError(err)
	assert.Equal(felt.FromUint64(1), v)

	reopened, err := NewState(db, "", nil)
	require.NoError(err)
	v, err = reopened.Cells().Get(addr)
	require.NoError(err)
	assert.Equal(felt.FromUint64(1), v)
}

func TestReceiptRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	db := memdb.New()
	receipts := NewReceiptState(db)

	last, err := receipts.GetLastReceipt()
	require.NoError(err)
	assert.Equal(ids.Empty, last)

	events := []event.Emitted{{
		Selector: event.Selector("Transfer"),
		Keys:     []felt.Felt{event.Selector("Transfer"), felt.FromUint64(1)},
		Data:     []felt.Felt{felt.FromUint64(500), felt.Zero},
	}}
	r := NewReceipt(1, ids.Empty, events)
	require.NoError(receipts.PutReceipt(r))
	assert.NotEqual(ids.Empty, r.ID())
	require.NoError(receipts.SetLastReceipt(r.ID()))

	// read through a fresh state to bypass the cache
	fresh := NewReceiptState(db)
	got, err := fresh.GetReceipt(r.ID())
	require.NoError(err)
	assert.Equal(r.ID(), got.ID())
	assert.Equal(uint64(1), got.Height)

	emitted, err := got.Emitted()
	require.NoError(err)
	assert.Equal(events, emitted)

	last, err = fresh.GetLastReceipt()
	require.NoError(err)
	assert.Equal(r.ID(), last)
}

func TestReceiptWrongVersion(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	receipts := NewReceiptState(db)
	r := NewReceipt(1, ids.Empty, nil)
	require.NoError(receipts.PutReceipt(r))

	bytes := append([]byte(nil), r.Bytes()...)
	bytes[1] = 1 // codec version prefix
	id := r.ID()
	require.NoError(db.Put(id[:], bytes))

	_, err := NewReceiptState(db).GetReceipt(id)
	require.Error(err)
}

type describedSchema string

func (d describedSchema) String() string { return string(d) }

func TestLayoutCheck(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	layouts := NewLayoutState(memdb.New())
	a := Fingerprint(describedSchema("balances: map(felt.Address => uint64)"))
	b := Fingerprint(describedSchema("balances: map(felt.Address => serde.U128)"))

	_, ok, err := layouts.GetLayout()
	require.NoError(err)
	assert.False(ok)

	require.NoError(layouts.CheckLayout(a))
	require.NoError(layouts.CheckLayout(a))
	assert.ErrorIs(layouts.CheckLayout(b), ErrLayoutMismatch)

	stored, ok, err := layouts.GetLayout()
	require.NoError(err)
	assert.True(ok)
	assert.Equal(a, stored)
}

func accountSchemaV1() *storage.Schema {
	type Account struct {
		Balance uint64
	}
	return storage.MustSchema(storage.Var("acct", storage.Flat[Account]()))
}

func accountSchemaV2() *storage.Schema {
	type Account struct {
		Owner   uint64
		Balance uint64
		Frozen  bool
	}
	return storage.MustSchema(storage.Var("acct", storage.Flat[Account]()))
}

func accountSchemaReordered() *storage.Schema {
	type Account struct {
		Balance uint64
		Owner   uint64
		Frozen  bool
	}
	return storage.MustSchema(storage.Var("acct", storage.Flat[Account]()))
}

func TestFingerprintTracksStructShape(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	v1, v2, reordered := accountSchemaV1(), accountSchemaV2(), accountSchemaReordered()
	assert.NotEqual(v1.String(), v2.String())
	assert.NotEqual(Fingerprint(v1), Fingerprint(v2))
	assert.NotEqual(Fingerprint(v2), Fingerprint(reordered))
	assert.Equal(Fingerprint(v1), Fingerprint(accountSchemaV1()))

	layouts := NewLayoutState(memdb.New())
	require.NoError(layouts.CheckLayout(Fingerprint(v1)))
	assert.ErrorIs(layouts.CheckLayout(Fingerprint(v2)), ErrLayoutMismatch)
	assert.ErrorIs(layouts.CheckLayout(Fingerprint(reordered)), ErrLayoutMismatch)
}
