// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/tanim0la/cairo-tutorial/felt"
	"github.com/tanim0la/cairo-tutorial/feltvm"
)

// Client defines feltvm static service operations.
type Client interface {
	// Selector returns the event selector of name
	Selector(ctx context.Context, name string) (felt.Felt, error)

	// StorageAddress returns the address of a variable or of a map entry under it
	StorageAddress(ctx context.Context, variable string, keys ...felt.Felt) (felt.Felt, error)

	// EncodeByteArray serializes data as a byte array
	EncodeByteArray(ctx context.Context, data string) ([]felt.Felt, error)

	// DecodeByteArray decodes a serialized byte array
	DecodeByteArray(ctx context.Context, felts []felt.Felt) (string, error)

	// SplitU256 splits a decimal or 0x-prefixed integer into 128-bit limbs
	SplitU256(ctx context.Context, value string) (low, high felt.Felt, err error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri, "", feltvm.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) Selector(ctx context.Context, name string) (felt.Felt, error) {
	resp := new(feltvm.SelectorReply)
	err := cli.req.SendRequest(ctx,
		"selector",
		&feltvm.SelectorArgs{Name: name},
		resp,
	)
	return resp.Selector, err
}

func (cli *client) StorageAddress(ctx context.Context, variable string, keys ...felt.Felt) (felt.Felt, error) {
	resp := new(feltvm.StorageAddressReply)
	err := cli.req.SendRequest(ctx,
		"storageAddress",
		&feltvm.StorageAddressArgs{Variable: variable, Keys: keys},
		resp,
	)
	return resp.Address, err
}

func (cli *client) EncodeByteArray(ctx context.Context, data string) ([]felt.Felt, error) {
	resp := new(feltvm.FeltsReply)
	err := cli.req.SendRequest(ctx,
		"encodeByteArray",
		&feltvm.ByteArrayArgs{Data: data},
		resp,
	)
	return resp.Felts, err
}

func (cli *client) DecodeByteArray(ctx context.Context, felts []felt.Felt) (string, error) {
	resp := new(feltvm.ByteArrayReply)
	err := cli.req.SendRequest(ctx,
		"decodeByteArray",
		&feltvm.FeltsArgs{Felts: felts},
		resp,
	)
	return resp.Data, err
}

func (cli *client) SplitU256(ctx context.Context, value string) (felt.Felt, felt.Felt, error) {
	resp := new(feltvm.SplitU256Reply)
	err := cli.req.SendRequest(ctx,
		"splitU256",
		&feltvm.SplitU256Args{Value: value},
		resp,
	)
	return resp.Low, resp.High, err
}
