// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package feltvm runs invocations against a storage schema. Each invocation
// sees its own writes, and commits or aborts as a whole.
package feltvm

import (
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/state"
	"github.com/tanim0la/cairo-tutorial/storage"
)

const (
	Name = "feltvm"
)

var Version = version.NewDefaultVersion(1, 0, 0)

// Result describes a committed invocation.
type Result struct {
	ReceiptID ids.ID
	Height    uint64
	Events    []event.Emitted
}

// VM owns the state of one contract: its schema, cells and receipts.
// Invocations are serialized.
type VM struct {
	lock sync.Mutex

	schema *storage.Schema
	state  state.State
	events *event.Codec
	log    log.Logger

	height      uint64
	lastReceipt ids.ID
}

// New opens a VM over db. It fails with state.ErrLayoutMismatch if db was
// written under a different schema.
func New(db database.Database, schema *storage.Schema, config Config, registerer prometheus.Registerer) (*VM, error) {
	config = config.withDefaults()
	logger := log.New("module", Name)

	s, err := state.NewState(db, config.MetricsNamespace, registerer)
	if err != nil {
		return nil, fmt.Errorf("couldn't create state: %w", err)
	}

	fingerprint := state.Fingerprint(schema)
	if err := s.CheckLayout(fingerprint); err != nil {
		logger.Error("layout check failed", "layout", fingerprint, "err", err)
		return nil, err
	}

	vm := &VM{
		schema: schema,
		state:  s,
		events: event.NewCodec(config.SelectorCacheSize),
		log:    logger,
	}

	vm.lastReceipt, err = s.GetLastReceipt()
	if err != nil {
		return nil, err
	}
	if vm.lastReceipt != ids.Empty {
		r, err := s.GetReceipt(vm.lastReceipt)
		if err != nil {
			return nil, fmt.Errorf("couldn't load last receipt %s: %w", vm.lastReceipt, err)
		}
		vm.height = r.Height
	}

	// Flush the layout tag to the underlying db
	if err := s.Commit(); err != nil {
		return nil, err
	}
	logger.Info("initialized", "version", Version, "layout", fingerprint, "height", vm.height)
	return vm, nil
}

// Invoke runs fn as one invocation. If fn fails, or panics with a
// *storage.BoundsError, every write it made is discarded and the error is
// returned unchanged. Other panics are re-raised after the abort.
func (vm *VM) Invoke(fn func(tx *Tx) error) (res *Result, err error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	tx := &Tx{
		schema: vm.schema,
		cells:  vm.state.Cells(),
		events: vm.events,
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		vm.state.Abort()
		boundsErr, ok := r.(*storage.BoundsError)
		if !ok {
			panic(r)
		}
		vm.log.Debug("invocation aborted", "height", vm.height+1, "err", boundsErr)
		res, err = nil, boundsErr
	}()

	if err := fn(tx); err != nil {
		vm.state.Abort()
		vm.log.Debug("invocation aborted", "height", vm.height+1, "err", err)
		return nil, err
	}

	receipt := state.NewReceipt(vm.height+1, vm.lastReceipt, tx.emitted)
	if err := vm.commit(receipt); err != nil {
		vm.state.Abort()
		vm.log.Error("couldn't commit invocation", "height", receipt.Height, "err", err)
		return nil, err
	}

	vm.height = receipt.Height
	vm.lastReceipt = receipt.ID()
	vm.log.Debug("invocation committed",
		"height", vm.height,
		"receipt", vm.lastReceipt,
		"events", len(tx.emitted),
	)
	return &Result{
		ReceiptID: receipt.ID(),
		Height:    receipt.Height,
		Events:    tx.emitted,
	}, nil
}

func (vm *VM) commit(receipt *state.Receipt) error {
	if err := vm.state.PutReceipt(receipt); err != nil {
		return err
	}
	if err := vm.state.SetLastReceipt(receipt.ID()); err != nil {
		return err
	}
	return vm.state.Commit()
}

// Receipt returns a committed receipt.
func (vm *VM) Receipt(id ids.ID) (*state.Receipt, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.state.GetReceipt(id)
}

// LastReceipt returns the ID and height of the latest committed invocation.
func (vm *VM) LastReceipt() (ids.ID, uint64) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.lastReceipt, vm.height
}

func (vm *VM) Schema() *storage.Schema { return vm.schema }

// Close closes the underlying database.
func (vm *VM) Close() error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.state.Close()
}
