// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/storage"
)

var _ storage.CellStore = &MeteredCells{}

// MeteredCells counts cell reads and writes on the wrapped store.
type MeteredCells struct {
	cells storage.CellStore

	reads  prometheus.Counter
	writes prometheus.Counter
}

// NewMeteredCells registers the counters with registerer.
func NewMeteredCells(cells storage.CellStore, namespace string, registerer prometheus.Registerer) (*MeteredCells, error) {
	m := &MeteredCells{
		cells: cells,
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_reads",
			Help:      "Number of storage cells read",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_writes",
			Help:      "Number of storage cells written",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.reads),
		registerer.Register(m.writes),
	)
	return m, errs.Err
}

func (m *MeteredCells) Get(addr felt.Felt) (felt.Felt, error) {
	m.reads.Inc()
	return m.cells.Get(addr)
}

func (m *MeteredCells) Set(addr, value felt.Felt) error {
	m.writes.Inc()
	return m.cells.Set(addr, value)
}
