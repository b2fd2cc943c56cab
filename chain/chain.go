// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chain is the boundary to the external Substrate client. It opens
// one connection per run, exposes the handful of storage reads the tool
// needs, and signs/submits extrinsics with watch-until-terminal or
// fire-and-forget semantics. All protocol work (SCALE, signing payloads,
// subscriptions) is delegated to go-substrate-rpc-client.
package chain

import (
	"math/big"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/vechain/substake/netconf"
)

// Status subscriptions that emit no terminal event are abandoned after this
// long and treated as "possibly succeeded"; the usual cause is a backend
// hiccup, not a rejection.
const submitTimeout = 30 * time.Second

// Conn is the shared per-run connection handle. Reads may run concurrently;
// each write is independently signed and submitted.
type Conn struct {
	api     *gsrpc.SubstrateAPI
	meta    *types.Metadata
	genesis types.Hash
	rv      *types.RuntimeVersion
	net     *netconf.Network
	nonces  *nonceCache
	timeout time.Duration
	logger  log15.Logger
}

// Connect opens the RPC connection and loads the chain constants every later
// call needs (metadata, genesis hash, runtime version).
func Connect(url string, net *netconf.Network, logger log15.Logger) (*Conn, error) {
	if logger == nil {
		logger = log15.New("pkg", "chain")
	}
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, errors.WithMessagef(err, "connect %s", url)
	}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, errors.WithMessage(err, "fetch metadata")
	}
	genesis, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch genesis hash")
	}
	rv, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, errors.WithMessage(err, "fetch runtime version")
	}
	logger.Info("connected", "url", url, "network", net.Name, "specVersion", rv.SpecVersion)

	return &Conn{
		api:     api,
		meta:    meta,
		genesis: genesis,
		rv:      rv,
		net:     net,
		nonces:  newNonceCache(),
		timeout: submitTimeout,
		logger:  logger,
	}, nil
}

// Network returns the static config of the connected network.
func (c *Conn) Network() *netconf.Network {
	return c.net
}

// Meta returns the chain metadata, needed to construct calls.
func (c *Conn) Meta() *types.Metadata {
	return c.meta
}

// AccountInfo mirrors the FRAME System.Account record on current runtimes.
type AccountInfo struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        struct {
		Free     types.U128
		Reserved types.U128
		Frozen   types.U128
		Flags    types.U128
	}
}

// Exists reports whether the chain holds a reference to this account.
func (a *AccountInfo) Exists() bool {
	return a.Consumers > 0 || a.Providers > 0 || a.Sufficients > 0
}

// Account reads System.Account for a raw 32-byte account id. The zero
// AccountInfo is returned for accounts the chain has never seen.
func (c *Conn) Account(accountID []byte) (*AccountInfo, error) {
	key, err := types.CreateStorageKey(c.meta, "System", "Account", accountID)
	if err != nil {
		return nil, errors.WithMessage(err, "account storage key")
	}
	var info AccountInfo
	if _, err := c.api.RPC.State.GetStorageLatest(key, &info); err != nil {
		return nil, errors.WithMessage(err, "query account")
	}
	return &info, nil
}

// FreeBalance returns the spendable balance of an account.
func (c *Conn) FreeBalance(accountID []byte) (*big.Int, error) {
	info, err := c.Account(accountID)
	if err != nil {
		return nil, err
	}
	if info.Data.Free.Int == nil {
		return new(big.Int), nil
	}
	return info.Data.Free.Int, nil
}

// Validators returns the active validator set from Session.Validators.
func (c *Conn) Validators() ([]types.AccountID, error) {
	key, err := types.CreateStorageKey(c.meta, "Session", "Validators")
	if err != nil {
		return nil, errors.WithMessage(err, "validators storage key")
	}
	var vals []types.AccountID
	if _, err := c.api.RPC.State.GetStorageLatest(key, &vals); err != nil {
		return nil, errors.WithMessage(err, "query validators")
	}
	return vals, nil
}
