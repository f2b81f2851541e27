// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state is the host side of the storage engine: the cell store,
// emitted-event receipts and the layout tag, all kept in prefixed databases
// over one versioned overlay so that an invocation commits or aborts as a
// whole.
package state

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tanim0la/cairo-tutorial/storage"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	cellStatePrefix    = []byte("cells")
	receiptStatePrefix = []byte("receipts")
	layoutStatePrefix  = []byte("layout")

	_ State = &state{}
)

// State exposes the cells, receipts and layout tag along with the methods
// needed for managing commits, aborts and close.
type State interface {
	ReceiptState
	LayoutState

	Cells() storage.CellStore

	Commit() error
	Abort()
	Close() error
}

type state struct {
	ReceiptState
	LayoutState

	cells  storage.CellStore
	baseDB *versiondb.Database
}

// NewState opens the state over db. When registerer is non-nil cell traffic
// is counted under namespace.
func NewState(db database.Database, namespace string, registerer prometheus.Registerer) (State, error) {
	// create a new baseDB
	baseDB := versiondb.New(db)

	var cells storage.CellStore = NewCellState(prefixdb.New(cellStatePrefix, baseDB))
	if registerer != nil {
		metered, err := NewMeteredCells(cells, namespace, registerer)
		if err != nil {
			return nil, err
		}
		cells = metered
	}

	return &state{
		ReceiptState: NewReceiptState(prefixdb.New(receiptStatePrefix, baseDB)),
		LayoutState:  NewLayoutState(prefixdb.New(layoutStatePrefix, baseDB)),
		cells:        cells,
		baseDB:       baseDB,
	}, nil
}

func (s *state) Cells() storage.CellStore { return s.cells }

// Commit commits pending operations to the underlying database
func (s *state) Commit() error {
	return s.baseDB.Commit()
}

// Abort discards pending operations and cached receipts
func (s *state) Abort() {
	s.baseDB.Abort()
	s.ReceiptState.ClearCache()
}

// Close closes the underlying base database
func (s *state) Close() error {
	return s.baseDB.Close()
}
