// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serde

import (
	"reflect"
	"strconv"
	"strings"
)

// Describe returns a canonical description of how t serializes: struct field
// names and types in serialization order, array lengths, slice and pointer
// element types, and the variant list of registered enums. Two types with the
// same description lay out felts identically.
func Describe(t reflect.Type) string {
	var b strings.Builder
	describe(&b, t, make(map[reflect.Type]bool))
	return b.String()
}

func describe(b *strings.Builder, t reflect.Type, seen map[reflect.Type]bool) {
	switch t {
	case feltType, addressType, u256Type, bytes31Type:
		b.WriteString(t.String())
		return
	}
	if seen[t] {
		b.WriteString(t.String())
		return
	}

	switch t.Kind() {
	case reflect.Ptr:
		b.WriteString("*")
		describe(b, t.Elem(), seen)
	case reflect.Array:
		b.WriteString("[")
		b.WriteString(strconv.Itoa(t.Len()))
		b.WriteString("]")
		describe(b, t.Elem(), seen)
	case reflect.Slice:
		b.WriteString("[]")
		describe(b, t.Elem(), seen)
	case reflect.Struct:
		seen[t] = true
		defer delete(seen, t)
		b.WriteString(t.String())
		b.WriteString("{")
		for i, f := range Fields(t) {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f.Name)
			b.WriteString(" ")
			describe(b, f.Type, seen)
		}
		b.WriteString("}")
	case reflect.Interface:
		seen[t] = true
		defer delete(seen, t)
		b.WriteString(t.String())
		variants, ok := Variants(t)
		if !ok {
			return
		}
		b.WriteString("(")
		for i, v := range variants {
			if i > 0 {
				b.WriteString(" | ")
			}
			describe(b, v, seen)
		}
		b.WriteString(")")
	default:
		b.WriteString(t.String())
	}
}
