// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/serde"
)

var errInjected = errors.New("injected failure")

// memCells is an in-memory CellStore that counts writes and can refuse
// writes to one address or all reads.
type memCells struct {
	cells     map[felt.Felt]felt.Felt
	sets      int
	failAt    *felt.Felt
	failReads bool
}

func newMemCells() *memCells {
	return &memCells{cells: make(map[felt.Felt]felt.Felt)}
}

func (m *memCells) Get(addr felt.Felt) (felt.Felt, error) {
	if m.failReads {
		return felt.Zero, errInjected
	}
	return m.cells[addr], nil
}

func (m *memCells) Set(addr, value felt.Felt) error {
	if m.failAt != nil && *m.failAt == addr {
		return errInjected
	}
	m.sets++
	if value.IsZero() {
		delete(m.cells, addr)
		return nil
	}
	m.cells[addr] = value
	return nil
}

type point struct {
	X uint32
	Y uint32
}

func TestAddressDerivation(t *testing.T) {
	assert := assert.New(t)

	base := VariableBase("balances")
	assert.Equal(felt.StarknetKeccak([]byte("balances")), base)
	assert.Equal(-1, base.Big().Cmp(AddressBound))

	k1, k2 := felt.FromUint64(7), felt.FromUint64(9)
	assert.Equal(Entry(Entry(base, k1), k2), Entry(base, k1, k2))
	assert.NotEqual(Entry(base, k1, k2), Entry(base, k2, k1))
	assert.Equal(base, Entry(base))

	assert.Equal(base.Add(felt.FromUint64(3)), Offset(base, 3))
	assert.Equal(base.Add(felt.FromUint64(1+4*2)), VecElement(base, 4, 2))
	assert.Equal(Entry(base, felt.StarknetKeccak([]byte("owner"))), MemberRoot(base, "owner"))
}

func TestMapDefaultAndIdempotentWrite(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	m := NewMap[felt.Address, uint64](cells, VariableBase("balances"))
	alice := felt.Address(felt.FromUint64(0xa11ce))

	v, err := m.Read(alice)
	require.NoError(err)
	assert.Zero(v)
	assert.Zero(cells.sets)

	require.NoError(m.Write(alice, 5))
	assert.Equal(1, cells.sets)

	require.NoError(m.Write(alice, 5))
	assert.Equal(1, cells.sets)

	v, err = m.Read(alice)
	require.NoError(err)
	assert.Equal(uint64(5), v)

	addr, err := m.Entry(alice)
	require.NoError(err)
	assert.Equal(Entry(VariableBase("balances"), felt.FromUint64(0xa11ce)), addr)
}

func TestMapCompositeValues(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	m := NewMap[uint64, point](cells, VariableBase("points"))
	require.NoError(m.Write(1, point{X: 3, Y: 4}))

	p, err := m.Read(1)
	require.NoError(err)
	assert.Equal(point{X: 3, Y: 4}, p)

	addr, err := m.Entry(1)
	require.NoError(err)
	y, err := cells.Get(Offset(addr, 1))
	require.NoError(err)
	assert.Equal(felt.FromUint64(4), y)

	names := NewMap[felt.Felt, string](cells, VariableBase("names"))
	require.NoError(names.Write(felt.One, "a name longer than thirty-one bytes"))
	s, err := names.Read(felt.One)
	require.NoError(err)
	assert.Equal("a name longer than thirty-one bytes", s)
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	base := VariableBase("origin")
	require.NoError(Store(cells, base, point{X: 5, Y: 6}))

	var p point
	require.NoError(Load(cells, base, &p))
	assert.Equal(point{X: 5, Y: 6}, p)

	assert.ErrorIs(Load(cells, base, p), ErrTypeMismatch)
	assert.ErrorIs(Store(cells, base, nil), ErrTypeMismatch)
}

func TestNestedMapIndependence(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	allowances := NewNestedMap[uint64, uint64, uint64](cells, VariableBase("allowances"))

	rng := rand.New(rand.NewSource(1))
	type pair struct{ owner, spender uint64 }
	want := make(map[pair]uint64)
	for i := 0; i < 64; i++ {
		p := pair{owner: uint64(rng.Intn(8)), spender: uint64(rng.Intn(8))}
		v := rng.Uint64() >> 1
		want[p] = v
		require.NoError(allowances.Write(p.owner, p.spender, v))
	}
	for owner := uint64(0); owner < 8; owner++ {
		row, err := allowances.Row(owner)
		require.NoError(err)
		for spender := uint64(0); spender < 8; spender++ {
			got, err := allowances.Read(owner, spender)
			require.NoError(err)
			assert.Equal(want[pair{owner, spender}], got, "(%d, %d)", owner, spender)

			viaRow, err := row.Read(spender)
			require.NoError(err)
			assert.Equal(got, viaRow)
		}
	}

	row, err := allowances.Row(3)
	require.NoError(err)
	assert.Equal(Entry(VariableBase("allowances"), felt.FromUint64(3)), row.Root())
}

func TestEntryAddressesDoNotCollide(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	const samples = 2000
	base := VariableBase("allowances")
	rng := rand.New(rand.NewSource(7))

	keys := make([]felt.Felt, 0, samples)
	distinct := make(map[felt.Felt]struct{}, samples)
	for len(keys) < samples {
		k, err := felt.FromBytes(randomBytes(rng, 31))
		require.NoError(err)
		if _, dup := distinct[k]; dup {
			continue
		}
		distinct[k] = struct{}{}
		keys = append(keys, k)
	}

	rows := make(map[felt.Felt]int, samples)
	for i, k := range keys {
		addr := Entry(base, k)
		if j, dup := rows[addr]; dup {
			t.Fatalf("row address of key %d collides with key %d", i, j)
		}
		rows[addr] = i
	}
	assert.NotEqual(Entry(base, keys[0]), Entry(base, keys[1]))

	entries := make(map[felt.Felt]struct{}, samples)
	for i := range keys {
		k1, k2 := keys[i], keys[(i+1)%samples]
		addr := Entry(base, k1, k2)
		_, dup := entries[addr]
		require.False(dup, "entry (%d, %d) collides", i, (i+1)%samples)
		_, isRow := rows[addr]
		require.False(isRow, "entry (%d, %d) collides with a row address", i, (i+1)%samples)
		entries[addr] = struct{}{}
	}
	assert.Len(entries, samples)
}

func randomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	_, _ = rng.Read(b)
	return b
}

func TestVecInvariants(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	root := VariableBase("history")
	v := NewVec[point](cells, root)

	n, err := v.Len()
	require.NoError(err)
	assert.Zero(n)

	_, ok, err := v.Pop()
	require.NoError(err)
	assert.False(ok)

	for i := uint32(0); i < 3; i++ {
		require.NoError(v.Push(point{X: i, Y: i * 10}))
	}
	n, err = v.Len()
	require.NoError(err)
	assert.Equal(uint64(3), n)

	p, err := v.At(1)
	require.NoError(err)
	assert.Equal(point{X: 1, Y: 10}, p)

	second, err := cells.Get(VecElement(root, 2, 2))
	require.NoError(err)
	assert.Equal(felt.FromUint64(2), second)

	_, ok, err = v.Get(3)
	require.NoError(err)
	assert.False(ok)

	require.NoError(v.Set(0, point{X: 9, Y: 9}))
	assert.ErrorIs(v.Set(3, point{}), ErrOutOfBounds)

	all, err := v.Collect()
	require.NoError(err)
	assert.Equal([]point{{9, 9}, {1, 10}, {2, 20}}, all)

	last, ok, err := v.Pop()
	require.NoError(err)
	assert.True(ok)
	assert.Equal(point{X: 2, Y: 20}, last)

	n, err = v.Len()
	require.NoError(err)
	assert.Equal(uint64(2), n)
	for j := uint64(0); j < 2; j++ {
		c, err := cells.Get(Offset(VecElement(root, 2, 2), j))
		require.NoError(err)
		assert.True(c.IsZero())
	}
}

func TestVecAtOutOfBoundsPanics(t *testing.T) {
	assert := assert.New(t)

	cells := newMemCells()
	v := NewVec[uint64](cells, VariableBase("numbers"))
	assert.NoError(v.Push(1))

	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		_, _ = v.At(1)
	}()
	err, ok := recovered.(*BoundsError)
	if !ok {
		t.Fatalf("expected *BoundsError, got %v", recovered)
	}
	assert.Equal(uint64(1), err.Index)
	assert.Equal(uint64(1), err.Length)
	assert.ErrorIs(err, ErrOutOfBounds)
}

func TestVecReadErrorsDoNotPanic(t *testing.T) {
	assert := assert.New(t)

	cells := newMemCells()
	v := NewVec[uint64](cells, VariableBase("numbers"))
	assert.NoError(v.Push(1))

	cells.failReads = true
	assert.NotPanics(func() {
		_, err := v.At(0)
		assert.ErrorIs(err, errInjected)
		_, err = v.At(5)
		assert.ErrorIs(err, errInjected)
	})
	_, ok, err := v.Get(0)
	assert.ErrorIs(err, errInjected)
	assert.False(ok)
}

func TestVecPushIsCrashConsistent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	root := VariableBase("numbers")
	v := NewVec[uint64](cells, root)
	require.NoError(v.Push(1))

	cells.failAt = &root
	assert.ErrorIs(v.Push(2), errInjected)
	cells.failAt = nil

	n, err := v.Len()
	require.NoError(err)
	assert.Equal(uint64(1), n)
	_, ok, err := v.Get(1)
	require.NoError(err)
	assert.False(ok)

	require.NoError(v.Push(3))
	x, err := v.At(1)
	require.NoError(err)
	assert.Equal(uint64(3), x)
}

func TestVecDynamicElements(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	root := VariableBase("notes")
	v := NewVec[string](cells, root)
	long := "this note spans more than one thirty-one byte word"
	require.NoError(v.Push("short"))
	require.NoError(v.Push(long))

	s, err := v.At(1)
	require.NoError(err)
	assert.Equal(long, s)

	words, err := cells.Get(Entry(root, felt.FromUint64(1)))
	require.NoError(err)
	assert.Equal(felt.FromUint64(1), words)

	popped, ok, err := v.Pop()
	require.NoError(err)
	assert.True(ok)
	assert.Equal(long, popped)

	short, err := serde.Marshal("short")
	require.NoError(err)
	live := 1 // length cell
	for _, f := range short {
		if !f.IsZero() {
			live++
		}
	}
	assert.Len(cells.cells, live)
}

var (
	configNode = MustNode("config",
		Var("owner", Flat[felt.Address]()),
		Var("origin", Flat[point]()),
		Var("label", Flat[string]()),
		Var("limits", MapOf[felt.Address](Flat[uint64]())),
		Var("history", VecOf[point]()),
		Var("paused", Flat[bool]()),
	)
	testSchema = MustSchema(
		Var("config", configNode),
		Var("balances", MapOf[felt.Address](Flat[uint64]())),
		Var("allowances", MapOf[uint64](MapOf[uint64](Flat[uint64]()))),
	)
)

func TestSchemaResolve(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	base := VariableBase("config")

	loc, err := testSchema.Resolve(P("config", Field("owner")))
	require.NoError(err)
	assert.Equal(base, loc.Addr)

	loc, err = testSchema.Resolve(P("config", Field("origin"), Field("Y")))
	require.NoError(err)
	assert.Equal(Offset(base, 2), loc.Addr)

	loc, err = testSchema.Resolve(P("config", Field("paused")))
	require.NoError(err)
	assert.Equal(Offset(base, 3), loc.Addr)

	loc, err = testSchema.Resolve(P("config", Field("label")))
	require.NoError(err)
	assert.Equal(MemberRoot(base, "label"), loc.Addr)

	alice := felt.Address(felt.FromUint64(1))
	loc, err = testSchema.Resolve(P("config", Field("limits"), Key(alice)))
	require.NoError(err)
	assert.Equal(Entry(MemberRoot(base, "limits"), felt.FromUint64(1)), loc.Addr)

	loc, err = testSchema.Resolve(P("config", Field("history"), Index(4), Field("Y")))
	require.NoError(err)
	assert.Equal(Offset(VecElement(MemberRoot(base, "history"), 4, 2), 1), loc.Addr)

	loc, err = testSchema.Resolve(P("allowances", Key(uint64(1)), Key(uint64(2))))
	require.NoError(err)
	nested := NewNestedMap[uint64, uint64, uint64](nil, VariableBase("allowances"))
	row, err := nested.Row(1)
	require.NoError(err)
	entry, err := row.Entry(2)
	require.NoError(err)
	assert.Equal(entry, loc.Addr)

	_, err = testSchema.Resolve(P("config", Field("missing")))
	assert.ErrorIs(err, ErrUnknownField)
	_, err = testSchema.Resolve(P("nothing"))
	assert.ErrorIs(err, ErrUnknownField)
	_, err = testSchema.Resolve(P("config", Field("history"), Key(uint64(1))))
	assert.ErrorIs(err, ErrSegmentMismatch)
	_, err = testSchema.Resolve(P("balances", Key(uint64(1))))
	assert.ErrorIs(err, ErrTypeMismatch)
	_, err = testSchema.Resolve(nil)
	assert.Error(err)
}

func TestLayoutDriven(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cells := newMemCells()
	loc, err := testSchema.Resolve(P("balances"))
	require.NoError(err)
	m, err := OpenMapping(cells, loc)
	require.NoError(err)

	alice := felt.Address(felt.FromUint64(1))
	require.NoError(m.Write(alice, uint64(40)))
	typed := NewMap[felt.Address, uint64](cells, loc.Addr)
	v, err := typed.Read(alice)
	require.NoError(err)
	assert.Equal(uint64(40), v)

	assert.ErrorIs(m.Write(alice, "wrong"), ErrTypeMismatch)

	loc, err = testSchema.Resolve(P("config", Field("history")))
	require.NoError(err)
	arr, err := OpenArray(cells, loc)
	require.NoError(err)
	require.NoError(arr.Push(point{X: 1, Y: 2}))
	got, err := arr.At(0)
	require.NoError(err)
	assert.Equal(point{X: 1, Y: 2}, got)

	_, err = OpenArray(cells, Location{Layout: Flat[uint64]()})
	assert.ErrorIs(err, ErrSegmentMismatch)

	nestedLoc, err := testSchema.Resolve(P("allowances", Key(uint64(1))))
	require.NoError(err)
	outer, err := testSchema.Resolve(P("allowances"))
	require.NoError(err)
	om, err := OpenMapping(cells, outer)
	require.NoError(err)
	_, err = om.Read(uint64(1))
	assert.ErrorIs(err, ErrNotFlat)
	_, ok := nestedLoc.Layout.(Addressable)
	assert.True(ok)
}

func TestSchemaErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := NewSchema(Var("a", Flat[uint8]()), Var("a", Flat[uint8]()))
	assert.Error(err)
	_, err = NewNode("n", Var("x", Flat[uint8]()), Var("x", Flat[uint8]()))
	assert.Error(err)
	assert.Contains(testSchema.String(), "balances: map(felt.Address => uint64)")
}
