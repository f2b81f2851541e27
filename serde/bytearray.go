// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serde

import (
	"fmt"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/scalar"
)

// ChunkBytes is how many bytes of a byte array are packed into one word.
const ChunkBytes = 31

// ByteArrayParts is the chunked form of a byte string:
// len(Words)*ChunkBytes + PendingLen bytes in total, 0 <= PendingLen < ChunkBytes.
//
// It serializes as [len(Words), Words..., Pending, PendingLen].
type ByteArrayParts struct {
	Words      []felt.Felt
	Pending    felt.Felt
	PendingLen int
}

// ChunkByteArray splits b into full words and the trailing pending word.
func ChunkByteArray(b []byte) ByteArrayParts {
	full := len(b) / ChunkBytes
	parts := ByteArrayParts{Words: make([]felt.Felt, 0, full)}
	for i := 0; i < full; i++ {
		w, _ := felt.FromBytes(b[i*ChunkBytes : (i+1)*ChunkBytes])
		parts.Words = append(parts.Words, w)
	}
	rest := b[full*ChunkBytes:]
	parts.Pending, _ = felt.FromBytes(rest)
	parts.PendingLen = len(rest)
	return parts
}

// Bytes reassembles the original byte string.
func (p ByteArrayParts) Bytes() []byte {
	out := make([]byte, 0, len(p.Words)*ChunkBytes+p.PendingLen)
	for _, w := range p.Words {
		raw := w.Bytes()
		out = append(out, raw[felt.Bytes-ChunkBytes:]...)
	}
	raw := p.Pending.Bytes()
	return append(out, raw[felt.Bytes-p.PendingLen:]...)
}

func (p ByteArrayParts) encode(e *Encoder) {
	e.Felt(scalar.EncodeUint64(uint64(len(p.Words))))
	for _, w := range p.Words {
		e.Felt(w)
	}
	e.Felt(p.Pending)
	e.Felt(scalar.EncodeUint64(uint64(p.PendingLen)))
}

func (p *ByteArrayParts) decode(d *Decoder) error {
	n, err := d.length()
	if err != nil {
		return err
	}
	p.Words = make([]felt.Felt, 0, minInt(n, 1024))
	for i := 0; i < n; i++ {
		w, err := d.Next()
		if err != nil {
			return err
		}
		if _, err := scalar.DecodeBytes31(w); err != nil {
			return err
		}
		p.Words = append(p.Words, w)
	}
	if p.Pending, err = d.Next(); err != nil {
		return err
	}
	lenFelt, err := d.Next()
	if err != nil {
		return err
	}
	pendingLen, ok := lenFelt.Uint64()
	if !ok || pendingLen >= ChunkBytes {
		return fmt.Errorf("%w: pending length %s", ErrMalformed, lenFelt)
	}
	p.PendingLen = int(pendingLen)
	if p.Pending.Big().BitLen() > 8*p.PendingLen {
		return fmt.Errorf("%w: pending word %s wider than %d bytes", ErrMalformed, p.Pending, p.PendingLen)
	}
	return nil
}

func (p ByteArrayParts) MarshalFelts(e *Encoder) error {
	p.encode(e)
	return nil
}

func (p *ByteArrayParts) UnmarshalFelts(d *Decoder) error {
	return p.decode(d)
}
