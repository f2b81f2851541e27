// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/felt"
)

const (
	receiptCacheSize = 1024
)

var (
	ErrWrongVersion = errors.New("wrong version")

	lastReceiptKey = []byte("last")

	_ ReceiptState = &receiptState{}
)

// Word is a felt in its 32-byte big-endian form.
type Word [felt.Bytes]byte

// EventRecord is an emitted event as persisted.
type EventRecord struct {
	Selector Word   `serialize:"true" json:"selector"`
	Keys     []Word `serialize:"true" json:"keys"`
	Data     []Word `serialize:"true" json:"data"`
}

// Receipt holds the events emitted by one committed invocation.
type Receipt struct {
	Height uint64        `serialize:"true" json:"height"`
	Parent ids.ID        `serialize:"true" json:"parent"`
	Events []EventRecord `serialize:"true" json:"events"`

	id    ids.ID
	bytes []byte
}

// NewReceipt builds the receipt of the invocation at height.
func NewReceipt(height uint64, parent ids.ID, events []event.Emitted) *Receipt {
	r := &Receipt{
		Height: height,
		Parent: parent,
		Events: make([]EventRecord, len(events)),
	}
	for i, e := range events {
		r.Events[i] = EventRecord{
			Selector: e.Selector.Bytes(),
			Keys:     toWords(e.Keys),
			Data:     toWords(e.Data),
		}
	}
	return r
}

// ID is the hash of the receipt's serialized form.
func (r *Receipt) ID() ids.ID { return r.id }

func (r *Receipt) Bytes() []byte { return r.bytes }

func (r *Receipt) initialize(bytes []byte) {
	r.bytes = bytes
	r.id = hashing.ComputeHash256Array(bytes)
}

// Emitted converts the persisted events back to felts.
func (r *Receipt) Emitted() ([]event.Emitted, error) {
	out := make([]event.Emitted, len(r.Events))
	for i, rec := range r.Events {
		sel, err := felt.FromBytes(rec.Selector[:])
		if err != nil {
			return nil, err
		}
		keys, err := fromWords(rec.Keys)
		if err != nil {
			return nil, err
		}
		data, err := fromWords(rec.Data)
		if err != nil {
			return nil, err
		}
		out[i] = event.Emitted{Selector: sel, Keys: keys, Data: data}
	}
	return out, nil
}

func toWords(fs []felt.Felt) []Word {
	out := make([]Word, len(fs))
	for i, f := range fs {
		out[i] = f.Bytes()
	}
	return out
}

func fromWords(ws []Word) ([]felt.Felt, error) {
	out := make([]felt.Felt, len(ws))
	for i, w := range ws {
		f, err := felt.FromBytes(w[:])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// ReceiptState persists receipts by ID and tracks the latest one.
type ReceiptState interface {
	GetReceipt(id ids.ID) (*Receipt, error)
	PutReceipt(r *Receipt) error

	GetLastReceipt() (ids.ID, error)
	SetLastReceipt(id ids.ID) error

	ClearCache()
}

type receiptState struct {
	receiptCache cache.Cacher
	receiptDB    database.Database
}

func NewReceiptState(db database.Database) ReceiptState {
	return &receiptState{
		receiptCache: &cache.LRU{Size: receiptCacheSize},
		receiptDB:    db,
	}
}

func (s *receiptState) GetReceipt(id ids.ID) (*Receipt, error) {
	if r, ok := s.receiptCache.Get(id); ok {
		return r.(*Receipt), nil
	}

	bytes, err := s.receiptDB.Get(id[:])
	if err != nil {
		return nil, err
	}

	r := &Receipt{}
	parsedVersion, err := Codec.Unmarshal(bytes, r)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, ErrWrongVersion
	}
	r.initialize(bytes)

	s.receiptCache.Put(id, r)
	return r, nil
}

// PutReceipt serializes r, sets its ID and stores it.
func (s *receiptState) PutReceipt(r *Receipt) error {
	bytes, err := Codec.Marshal(CodecVersion, r)
	if err != nil {
		return err
	}
	r.initialize(bytes)

	id := r.ID()
	s.receiptCache.Put(id, r)
	return s.receiptDB.Put(id[:], bytes)
}

func (s *receiptState) GetLastReceipt() (ids.ID, error) {
	b, err := s.receiptDB.Get(lastReceiptKey)
	if err == database.ErrNotFound {
		return ids.Empty, nil
	}
	if err != nil {
		return ids.Empty, err
	}
	return ids.ToID(b)
}

func (s *receiptState) SetLastReceipt(id ids.ID) error {
	return s.receiptDB.Put(lastReceiptKey, id[:])
}

func (s *receiptState) ClearCache() {
	s.receiptCache.Flush()
}
