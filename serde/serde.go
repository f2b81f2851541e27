// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package serde serializes Go values into ordered sequences of field elements
// and reconstructs them.
//
// Structs serialize their exported fields in declaration order, enums are a
// discriminant followed by the active variant's payload, strings are byte
// arrays chunked into 31-byte words, slices are length prefixed and arrays are
// fixed-size tuples. Types implementing Marshaler and Unmarshaler control their
// own encoding.
package serde

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/tanim0la/cairo-tutorial/felt"
)

var (
	ErrTruncated       = errors.New("serde: truncated input")
	ErrMalformed       = errors.New("serde: malformed input")
	ErrUnsupportedType = errors.New("serde: unsupported type")
	errNotPointer      = errors.New("serde: decode target must be a non-nil pointer")
)

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalFelts(e *Encoder) error
}

// Unmarshaler is implemented by types that decode themselves.
type Unmarshaler interface {
	UnmarshalFelts(d *Decoder) error
}

// Widther reports the static width of a self-encoding type.
type Widther interface {
	FeltWidth() int
}

// Source yields felts one at a time. It returns io.EOF once exhausted.
type Source interface {
	Next() (felt.Felt, error)
}

// Marshal returns the serialization of v.
//
// An enum value must be passed as a pointer to its interface type, for
// example Marshal(&s) with s declared as the enum interface. A bare variant
// such as Marshal(circle{}) is serialized as its payload without the
// discriminant, because the interface type is lost in the conversion to
// interface{}.
func Marshal(v interface{}) ([]felt.Felt, error) {
	e := &Encoder{}
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Felts(), nil
}

// Unmarshal decodes in into the value pointed to by dst. All of in must be
// consumed.
func Unmarshal(in []felt.Felt, dst interface{}) error {
	d := NewDecoder(in)
	if err := d.Decode(dst); err != nil {
		return err
	}
	if d.Consumed() != len(in) {
		return fmt.Errorf("%w: %d trailing elements", ErrMalformed, len(in)-d.Consumed())
	}
	return nil
}

// Encoder accumulates serialized felts.
type Encoder struct {
	out []felt.Felt
}

func (e *Encoder) Felts() []felt.Felt { return e.out }

// Felt appends a raw element.
func (e *Encoder) Felt(f felt.Felt) { e.out = append(e.out, f) }

func (e *Encoder) Encode(v interface{}) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrUnsupportedType)
	}
	return e.encode(reflect.ValueOf(v))
}

// Decoder reads felts from a Source.
type Decoder struct {
	src      Source
	consumed int
}

func NewDecoder(in []felt.Felt) *Decoder {
	return &Decoder{src: &sliceSource{felts: in}}
}

func NewStreamDecoder(src Source) *Decoder {
	return &Decoder{src: src}
}

// Consumed returns how many felts have been read.
func (d *Decoder) Consumed() int { return d.consumed }

// Next returns the next raw element.
func (d *Decoder) Next() (felt.Felt, error) {
	f, err := d.src.Next()
	if err == io.EOF {
		return felt.Zero, fmt.Errorf("%w after %d elements", ErrTruncated, d.consumed)
	}
	if err != nil {
		return felt.Zero, err
	}
	d.consumed++
	return f, nil
}

// Decode reads one value into the value pointed to by dst.
func (d *Decoder) Decode(dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errNotPointer
	}
	return d.decode(rv.Elem())
}

type sliceSource struct {
	felts []felt.Felt
	pos   int
}

func (s *sliceSource) Next() (felt.Felt, error) {
	if s.pos >= len(s.felts) {
		return felt.Zero, io.EOF
	}
	f := s.felts[s.pos]
	s.pos++
	return f, nil
}
