// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event splits emitted records into a selector, indexed keys and
// unindexed data using the composite serializer.
//
// Fields tagged `event:"key"` are serialized verbatim into keys, composites
// included, so a client holding the record type can decode them back. Fields
// tagged `event:"-"` are not emitted.
package event

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ava-labs/avalanchego/cache"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/serde"
)

const (
	tagName  = "event"
	tagKey   = "key"
	tagSkip  = "-"
	cacheMin = 16
)

var (
	ErrNotStruct        = errors.New("event record is not a struct")
	ErrSelectorMismatch = errors.New("event selector mismatch")
	ErrMissingSelector  = errors.New("event has no keys")
	ErrTrailingElements = errors.New("event has trailing elements")
)

// Named records choose their own event name instead of the Go type name.
type Named interface {
	EventName() string
}

// Emitted is the host-facing triple produced for one record.
type Emitted struct {
	Selector felt.Felt   `json:"selector"`
	Keys     []felt.Felt `json:"keys"`
	Data     []felt.Felt `json:"data"`
}

type options struct {
	outer string
	flat  bool
}

// Option modifies how the selector name is chosen.
type Option func(*options)

// WithinEnum marks the record as a variant of the outer event union. The
// selector is then taken from the outer name.
func WithinEnum(outer string) Option {
	return func(o *options) { o.outer = outer }
}

// Flat selects the inner record's own name even inside an outer union.
func Flat() Option {
	return func(o *options) { o.flat = true }
}

// Selector is the starknet-keccak of an event name.
func Selector(name string) felt.Felt {
	return felt.StarknetKeccak([]byte(name))
}

// Name returns the event name of a record: EventName() if defined, otherwise
// the Go type name.
func Name(rec interface{}) string {
	if n, ok := rec.(Named); ok {
		return n.EventName()
	}
	t := reflect.TypeOf(rec)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// SelectorName is the name fed to the selector hash under opts.
func SelectorName(rec interface{}, opts ...Option) string {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.outer != "" && !o.flat {
		return o.outer
	}
	return Name(rec)
}

// Codec encodes and decodes events, memoising selectors.
type Codec struct {
	selectors cache.Cacher
}

// NewCodec returns a codec whose selector memo holds up to cacheSize names.
func NewCodec(cacheSize int) *Codec {
	if cacheSize < cacheMin {
		cacheSize = cacheMin
	}
	return &Codec{selectors: &cache.LRU{Size: cacheSize}}
}

// Selector returns Selector(name) through the memo.
func (c *Codec) Selector(name string) felt.Felt {
	if s, ok := c.selectors.Get(name); ok {
		return s.(felt.Felt)
	}
	s := Selector(name)
	c.selectors.Put(name, s)
	return s
}

type field struct {
	index   []int
	indexed bool
}

func fields(t reflect.Type) []field {
	var out []field
	for _, f := range serde.Fields(t) {
		tag := f.Tag.Get(tagName)
		if tag == tagSkip {
			continue
		}
		out = append(out, field{index: f.Index, indexed: tag == tagKey})
	}
	return out
}

func recordValue(rec interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %T", ErrNotStruct, rec)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T", ErrNotStruct, rec)
	}
	// copy into an addressable value so interface fields encode as enums
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c, nil
}

// Encode emits rec. keys[0] is the selector, followed by the indexed fields
// in declaration order; data holds the remaining fields in order.
func (c *Codec) Encode(rec interface{}, opts ...Option) (Emitted, error) {
	v, err := recordValue(rec)
	if err != nil {
		return Emitted{}, err
	}
	sel := c.Selector(SelectorName(rec, opts...))
	keys := &serde.Encoder{}
	data := &serde.Encoder{}
	keys.Felt(sel)
	for _, f := range fields(v.Type()) {
		enc := data
		if f.indexed {
			enc = keys
		}
		if err := enc.Encode(v.FieldByIndex(f.index).Addr().Interface()); err != nil {
			return Emitted{}, fmt.Errorf("encoding %s: %w", v.Type(), err)
		}
	}
	return Emitted{Selector: sel, Keys: keys.Felts(), Data: data.Felts()}, nil
}

// Decode rebuilds a record of dst's type from e. The selector must match the
// one Encode would produce for that type under opts.
func (c *Codec) Decode(e Emitted, dst interface{}, opts ...Option) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", ErrNotStruct, dst)
	}
	if len(e.Keys) == 0 {
		return ErrMissingSelector
	}
	want := c.Selector(SelectorName(dst, opts...))
	if e.Keys[0] != want || e.Selector != want {
		return fmt.Errorf("%w: got %s, want %s", ErrSelectorMismatch, e.Keys[0], want)
	}
	rec := v.Elem()
	keys := serde.NewDecoder(e.Keys[1:])
	data := serde.NewDecoder(e.Data)
	for _, f := range fields(rec.Type()) {
		dec := data
		if f.indexed {
			dec = keys
		}
		if err := dec.Decode(rec.FieldByIndex(f.index).Addr().Interface()); err != nil {
			return fmt.Errorf("decoding %s: %w", rec.Type(), err)
		}
	}
	if keys.Consumed() != len(e.Keys)-1 || data.Consumed() != len(e.Data) {
		return ErrTrailingElements
	}
	return nil
}
