// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keys derives child key-pairs from a funding secret.
//
// Children are addressed by derivation-path suffixes appended to the secret
// URI: "///N" for nominator accounts and "//pool/N" for pool creators. A pair
// is a pure function of (secret, path, ss58 prefix); derivation never touches
// the network.
package keys

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/vedhavyas/go-subkey/v2"
)

// sr25519 derivation is the hot path when the same account range is walked by
// the check, fund and stake phases in one run.
const cacheSize = 8192

// Ring derives and caches key-pairs rooted at one secret.
type Ring struct {
	secret string
	prefix uint16
	cache  *lru.Cache
}

// NewRing creates a Ring for the given secret URI and SS58 prefix.
// The secret may be a mnemonic, a hex seed, or a full secret URI.
func NewRing(secret string, prefix uint16) (*Ring, error) {
	if secret == "" {
		return nil, errors.New("empty seed")
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Ring{secret: secret, prefix: prefix, cache: cache}, nil
}

// God returns the funding pair, derived from the bare secret.
func (r *Ring) God() (signature.KeyringPair, error) {
	return r.Derive("")
}

// Child returns the nominator pair at the given index ("///N").
func (r *Ring) Child(index uint32) (signature.KeyringPair, error) {
	return r.Derive(fmt.Sprintf("///%d", index))
}

// PoolCreator returns the pool-creator pair at the given index ("//pool/N").
func (r *Ring) PoolCreator(index uint32) (signature.KeyringPair, error) {
	return r.Derive(fmt.Sprintf("//pool/%d", index))
}

// Derive returns the pair at the given path suffix.
func (r *Ring) Derive(path string) (signature.KeyringPair, error) {
	if cached, ok := r.cache.Get(path); ok {
		return cached.(signature.KeyringPair), nil
	}
	pair, err := signature.KeyringPairFromSecret(r.secret+path, r.prefix)
	if err != nil {
		return signature.KeyringPair{}, errors.WithMessagef(err, "derive %q", path)
	}
	r.cache.Add(path, pair)
	return pair, nil
}

// SS58 encodes a raw 32-byte account id with the given network prefix.
func SS58(accountID []byte, prefix uint16) string {
	return subkey.SS58Encode(accountID, prefix)
}
