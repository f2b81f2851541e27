// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feltvm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/tanim0la/cairo-tutorial/event"
	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/scalar"
	"github.com/tanim0la/cairo-tutorial/serde"
	"github.com/tanim0la/cairo-tutorial/storage"
)

// StaticService exposes the stateless encoding helpers
type StaticService struct{}

func CreateStaticService() *StaticService {
	return &StaticService{}
}

// CreateStaticHandler returns a JSON-RPC handler serving StaticService
// under the name "feltvm".
func CreateStaticHandler() (http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(CreateStaticService(), Name)
}

// SelectorArgs are arguments for Selector
type SelectorArgs struct {
	Name string `json:"name"`
}

// SelectorReply is the reply from Selector
type SelectorReply struct {
	Selector felt.Felt `json:"selector"`
}

// Selector returns the event selector of a name
func (ss *StaticService) Selector(_ *http.Request, args *SelectorArgs, reply *SelectorReply) error {
	reply.Selector = event.Selector(args.Name)
	return nil
}

// StorageAddressArgs are arguments for StorageAddress
type StorageAddressArgs struct {
	Variable string      `json:"variable"`
	Keys     []felt.Felt `json:"keys"`
}

// StorageAddressReply is the reply from StorageAddress
type StorageAddressReply struct {
	Address felt.Felt `json:"address"`
}

// StorageAddress returns the address of a top-level variable, or of a map
// entry under it when keys are given
func (ss *StaticService) StorageAddress(_ *http.Request, args *StorageAddressArgs, reply *StorageAddressReply) error {
	reply.Address = storage.Entry(storage.VariableBase(args.Variable), args.Keys...)
	return nil
}

// ByteArrayArgs are arguments for EncodeByteArray
type ByteArrayArgs struct {
	Data string `json:"data"`
}

// FeltsReply is the reply from EncodeByteArray
type FeltsReply struct {
	Felts []felt.Felt `json:"felts"`
}

// EncodeByteArray serializes a string as a byte array
func (ss *StaticService) EncodeByteArray(_ *http.Request, args *ByteArrayArgs, reply *FeltsReply) error {
	felts, err := serde.Marshal(args.Data)
	if err != nil {
		return fmt.Errorf("couldn't encode byte array: %w", err)
	}
	reply.Felts = felts
	return nil
}

// FeltsArgs are arguments for DecodeByteArray
type FeltsArgs struct {
	Felts []felt.Felt `json:"felts"`
}

// ByteArrayReply is the reply from DecodeByteArray
type ByteArrayReply struct {
	Data string `json:"data"`
}

// DecodeByteArray decodes a serialized byte array
func (ss *StaticService) DecodeByteArray(_ *http.Request, args *FeltsArgs, reply *ByteArrayReply) error {
	var s string
	if err := serde.Unmarshal(args.Felts, &s); err != nil {
		return fmt.Errorf("couldn't decode byte array: %w", err)
	}
	reply.Data = s
	return nil
}

// SplitU256Args are arguments for SplitU256. Value is decimal or 0x-prefixed hex.
type SplitU256Args struct {
	Value string `json:"value"`
}

// SplitU256Reply is the reply from SplitU256
type SplitU256Reply struct {
	Low  felt.Felt `json:"low"`
	High felt.Felt `json:"high"`
}

// SplitU256 splits a 256-bit integer into its 128-bit limbs
func (ss *StaticService) SplitU256(_ *http.Request, args *SplitU256Args, reply *SplitU256Reply) error {
	v, err := parseU256(args.Value)
	if err != nil {
		return fmt.Errorf("couldn't parse u256 %q: %w", args.Value, err)
	}
	reply.Low, reply.High = scalar.SplitU256(v)
	return nil
}

func parseU256(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}
