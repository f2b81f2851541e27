// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/serde"
)

// SegmentKind tells which part of a slot a Segment selects.
type SegmentKind uint8

const (
	FieldSegment SegmentKind = iota
	KeySegment
	IndexSegment
)

// Segment is one step of a storage path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Key   interface{}
	Index uint64
}

func Field(name string) Segment { return Segment{Kind: FieldSegment, Name: name} }
func Key(k interface{}) Segment { return Segment{Kind: KeySegment, Key: k} }
func Index(i uint64) Segment { return Segment{Kind: IndexSegment, Index: i} }

func (s Segment) String() string {
	switch s.Kind {
	case FieldSegment:
		return "." + s.Name
	case KeySegment:
		return fmt.Sprintf("[%v]", s.Key)
	default:
		return fmt.Sprintf("[%d]", s.Index)
	}
}

// Path is a storage path from a top-level variable.
type Path []Segment

// P builds a path whose first segment names a top-level variable.
func P(variable string, rest ...Segment) Path {
	return append(Path{Field(variable)}, rest...)
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i == 0 && s.Kind == FieldSegment {
			b.WriteString(s.Name)
			continue
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Location is a resolved slot: its base address and layout.
type Location struct {
	Addr   felt.Felt
	Layout Layout
}

// Resolve walks path from the schema root. It reads no cells.
func (s *Schema) Resolve(path Path) (Location, error) {
	if len(path) == 0 {
		return Location{}, errEmptyPath
	}
	if path[0].Kind != FieldSegment {
		return Location{}, fmt.Errorf("%w: path %s must start with a variable", ErrSegmentMismatch, path)
	}
	loc, err := s.Root(path[0].Name)
	if err != nil {
		return Location{}, err
	}
	for _, seg := range path[1:] {
		if loc, err = Step(loc, seg); err != nil {
			return Location{}, fmt.Errorf("resolving %s: %w", path, err)
		}
	}
	return loc, nil
}

// Step applies one segment to loc. Array indices are not bound-checked here.
func Step(loc Location, seg Segment) (Location, error) {
	switch l := loc.Layout.(type) {
	case *NodeLayout:
		if seg.Kind != FieldSegment {
			break
		}
		return l.Member(loc.Addr, seg.Name)
	case *MapLayout:
		if seg.Kind != KeySegment {
			break
		}
		keys, err := KeyFelts(l.Key, reflect.ValueOf(seg.Key))
		if err != nil {
			return Location{}, err
		}
		return Location{Addr: Entry(loc.Addr, keys...), Layout: l.Value}, nil
	case *VecLayout:
		if seg.Kind != IndexSegment {
			break
		}
		return Location{Addr: elementAddr(loc.Addr, l.Elem, seg.Index), Layout: l.Elem}, nil
	case *FlatLayout:
		return stepFlat(loc.Addr, l, seg)
	}
	return Location{}, fmt.Errorf("%w: %s on %s", ErrSegmentMismatch, seg, loc.Layout)
}

// stepFlat addresses a field or tuple element inside a flat value.
func stepFlat(base felt.Felt, l *FlatLayout, seg Segment) (Location, error) {
	t := l.Type
	switch {
	case seg.Kind == FieldSegment && t.Kind() == reflect.Struct:
		off, f, err := serde.FieldOffset(t, seg.Name)
		if err != nil {
			return Location{}, fmt.Errorf("%w: %s.%s: %v", ErrUnknownField, t, seg.Name, err)
		}
		return Location{Addr: Offset(base, uint64(off)), Layout: FlatOf(f.Type)}, nil
	case seg.Kind == IndexSegment && t.Kind() == reflect.Array:
		if seg.Index >= uint64(t.Len()) {
			return Location{}, &BoundsError{Index: seg.Index, Length: uint64(t.Len())}
		}
		w, ok := serde.WidthOf(t.Elem())
		if !ok {
			return Location{}, fmt.Errorf("%w: %s has dynamic-width elements", ErrSegmentMismatch, t)
		}
		return Location{Addr: Offset(base, seg.Index*uint64(w)), Layout: FlatOf(t.Elem())}, nil
	}
	return Location{}, fmt.Errorf("%w: %s on %s", ErrSegmentMismatch, seg, t)
}

// elementAddr is the address of element i of the array rooted at root.
func elementAddr(root felt.Felt, elem *FlatLayout, i uint64) felt.Felt {
	if w, fixed := elem.Width(); fixed {
		return VecElement(root, i, uint64(w))
	}
	return Entry(root, felt.FromUint64(i))
}
