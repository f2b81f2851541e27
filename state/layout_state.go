// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

var (
	ErrLayoutMismatch = errors.New("storage layout does not match the persisted layout")

	layoutKey = []byte("layout")

	_ LayoutState = &layoutState{}
)

type layoutTag struct {
	Fingerprint ids.ID `serialize:"true"`
}

// Fingerprint is the hash of a schema's canonical description.
func Fingerprint(schema fmt.Stringer) ids.ID {
	return hashing.ComputeHash256Array([]byte(schema.String()))
}

// LayoutState records the fingerprint of the schema the cells were written
// under.
type LayoutState interface {
	GetLayout() (ids.ID, bool, error)
	SetLayout(fingerprint ids.ID) error

	// CheckLayout records fingerprint on first use and otherwise fails with
	// ErrLayoutMismatch if it differs from the recorded one.
	CheckLayout(fingerprint ids.ID) error
}

type layoutState struct {
	singletonDB database.Database
}

func NewLayoutState(db database.Database) LayoutState {
	return &layoutState{
		singletonDB: db,
	}
}

func (s *layoutState) GetLayout() (ids.ID, bool, error) {
	bytes, err := s.singletonDB.Get(layoutKey)
	if err == database.ErrNotFound {
		return ids.Empty, false, nil
	}
	if err != nil {
		return ids.Empty, false, err
	}
	tag := layoutTag{}
	parsedVersion, err := Codec.Unmarshal(bytes, &tag)
	if err != nil {
		return ids.Empty, false, err
	}
	if parsedVersion != CodecVersion {
		return ids.Empty, false, ErrWrongVersion
	}
	return tag.Fingerprint, true, nil
}

func (s *layoutState) SetLayout(fingerprint ids.ID) error {
	bytes, err := Codec.Marshal(CodecVersion, &layoutTag{Fingerprint: fingerprint})
	if err != nil {
		return err
	}
	return s.singletonDB.Put(layoutKey, bytes)
}

func (s *layoutState) CheckLayout(fingerprint ids.ID) error {
	stored, ok, err := s.GetLayout()
	if err != nil {
		return err
	}
	if !ok {
		return s.SetLayout(fingerprint)
	}
	if stored != fingerprint {
		return fmt.Errorf("%w: stored %s, schema %s", ErrLayoutMismatch, stored, fingerprint)
	}
	return nil
}
