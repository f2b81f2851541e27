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

var (
	_ Layout      = &FlatLayout{}
	_ Addressable = &MapLayout{}
	_ Addressable = &VecLayout{}
	_ Addressable = &NodeLayout{}
)

// Layout describes how a storage slot is arranged over cells.
type Layout interface {
	fmt.Stringer
	layout()
}

// Addressable layouts own a namespace of cells rather than a contiguous run.
// They cannot be read or written as a single value, only navigated into.
type Addressable interface {
	Layout
	namespace()
}

// FlatLayout is a value serialized into consecutive cells.
type FlatLayout struct {
	Type  reflect.Type
	width int
	fixed bool
}

// Flat returns the flat layout of T.
func Flat[T any]() *FlatLayout {
	return FlatOf(reflect.TypeOf((*T)(nil)).Elem())
}

// FlatOf returns the flat layout of t.
func FlatOf(t reflect.Type) *FlatLayout {
	w, ok := serde.WidthOf(t)
	return &FlatLayout{Type: t, width: w, fixed: ok}
}

// Width returns the number of cells the value occupies and whether that number
// is the same for every value of the type.
func (l *FlatLayout) Width() (int, bool) { return l.width, l.fixed }

// String describes the serialized shape of the type, not just its name, so
// schema fingerprints change when a stored struct or enum changes shape.
func (l *FlatLayout) String() string { return serde.Describe(l.Type) }

func (*FlatLayout) layout() {}

// MapLayout is a map from Key values to slots of layout Value.
type MapLayout struct {
	Key   reflect.Type
	Value Layout
}

// MapOf returns the layout of a map keyed by K.
func MapOf[K any](value Layout) *MapLayout {
	return &MapLayout{Key: reflect.TypeOf((*K)(nil)).Elem(), Value: value}
}

func (l *MapLayout) String() string {
	return fmt.Sprintf("map(%s => %s)", serde.Describe(l.Key), l.Value)
}

func (*MapLayout) layout()    {}
func (*MapLayout) namespace() {}

// VecLayout is a growable array of flat elements.
type VecLayout struct {
	Elem *FlatLayout
}

// VecOf returns the layout of a growable array of T.
func VecOf[T any]() *VecLayout {
	return &VecLayout{Elem: Flat[T]()}
}

func (l *VecLayout) String() string {
	return fmt.Sprintf("vec(%s)", l.Elem)
}

func (*VecLayout) layout()    {}
func (*VecLayout) namespace() {}

// Member is a named slot of a storage node or schema.
type Member struct {
	Name   string
	Layout Layout
}

// Var is shorthand for a Member.
func Var(name string, l Layout) Member { return Member{Name: name, Layout: l} }

type placement struct {
	Member
	offset int // -1 for members placed under their own root
}

// NodeLayout is a storage node: a named group of members where maps and
// vectors may appear alongside plain values.
type NodeLayout struct {
	Name    string
	members []placement
	byName  map[string]int
}

// NewNode lays out members in order. Fixed-width flat members are packed from
// the node base; every other member lives under MemberRoot(base, name).
func NewNode(name string, members ...Member) (*NodeLayout, error) {
	n := &NodeLayout{
		Name:    name,
		members: make([]placement, 0, len(members)),
		byName:  make(map[string]int, len(members)),
	}
	offset := 0
	for _, m := range members {
		if _, dup := n.byName[m.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", errDuplicateMember, name, m.Name)
		}
		p := placement{Member: m, offset: -1}
		if flat, ok := m.Layout.(*FlatLayout); ok {
			if w, fixed := flat.Width(); fixed {
				p.offset = offset
				offset += w
			}
		}
		n.byName[m.Name] = len(n.members)
		n.members = append(n.members, p)
	}
	return n, nil
}

// MustNode is NewNode that panics on error.
func MustNode(name string, members ...Member) *NodeLayout {
	n, err := NewNode(name, members...)
	if err != nil {
		panic(err)
	}
	return n
}

// Members returns the members in declaration order.
func (n *NodeLayout) Members() []Member {
	out := make([]Member, len(n.members))
	for i, p := range n.members {
		out[i] = p.Member
	}
	return out
}

// Member returns the location of the named member of the node at base.
func (n *NodeLayout) Member(base felt.Felt, name string) (Location, error) {
	i, ok := n.byName[name]
	if !ok {
		return Location{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, n.Name, name)
	}
	p := n.members[i]
	if p.offset >= 0 {
		return Location{Addr: Offset(base, uint64(p.offset)), Layout: p.Layout}, nil
	}
	return Location{Addr: MemberRoot(base, name), Layout: p.Layout}, nil
}

func (n *NodeLayout) String() string {
	var b strings.Builder
	b.WriteString("node ")
	b.WriteString(n.Name)
	b.WriteString(" {")
	for i, p := range n.members {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Name, p.Layout)
	}
	b.WriteString("}")
	return b.String()
}

func (*NodeLayout) layout()    {}
func (*NodeLayout) namespace() {}

// Schema is the set of top-level storage variables of a contract. Each
// variable is rooted at VariableBase(name).
type Schema struct {
	vars   []Member
	byName map[string]int
}

// NewSchema returns a schema of the given top-level variables.
func NewSchema(vars ...Member) (*Schema, error) {
	s := &Schema{
		vars:   vars,
		byName: make(map[string]int, len(vars)),
	}
	for i, v := range vars {
		if _, dup := s.byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateMember, v.Name)
		}
		s.byName[v.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error.
func MustSchema(vars ...Member) *Schema {
	s, err := NewSchema(vars...)
	if err != nil {
		panic(err)
	}
	return s
}

// Vars returns the top-level variables in declaration order.
func (s *Schema) Vars() []Member { return s.vars }

// Root returns the location of the named top-level variable.
func (s *Schema) Root(name string) (Location, error) {
	i, ok := s.byName[name]
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return Location{Addr: VariableBase(name), Layout: s.vars[i].Layout}, nil
}

// String is a canonical description of the schema, stable across runs.
func (s *Schema) String() string {
	var b strings.Builder
	for i, v := range s.vars {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", v.Name, v.Layout)
	}
	return b.String()
}
