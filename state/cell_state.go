// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/storage"
)

var _ storage.CellStore = &CellState{}

// CellState stores cells in a database keyed by the 32-byte big-endian
// address. Zero cells are not stored.
type CellState struct {
	cellDB database.Database
}

func NewCellState(db database.Database) *CellState {
	return &CellState{cellDB: db}
}

func (s *CellState) Get(addr felt.Felt) (felt.Felt, error) {
	key := addr.Bytes()
	value, err := s.cellDB.Get(key[:])
	if err == database.ErrNotFound {
		return felt.Zero, nil
	}
	if err != nil {
		return felt.Zero, err
	}
	f, err := felt.FromBytes(value)
	if err != nil {
		return felt.Zero, fmt.Errorf("cell %s: %w", addr, err)
	}
	return f, nil
}

func (s *CellState) Set(addr, value felt.Felt) error {
	key := addr.Bytes()
	if value.IsZero() {
		return s.cellDB.Delete(key[:])
	}
	b := value.Bytes()
	return s.cellDB.Put(key[:], b[:])
}
