// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch

import (
	"encoding/hex"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/inconshreveable/log15"
	"golang.org/x/crypto/blake2b"
)

// DryRun is a Dispatcher that plans without submitting. Every unit is
// classified Included so planning output (chunking, assignment, totals)
// matches a live run exactly, while zero writes reach the chain.
type DryRun struct {
	logger log15.Logger
	quiet  bool

	mu    sync.Mutex
	units int
	calls int
}

// NewDryRun creates a dry-run dispatcher logging through the given logger.
func NewDryRun(quiet bool, logger log15.Logger) *DryRun {
	if logger == nil {
		logger = log15.New("pkg", "batch")
	}
	return &DryRun{logger: logger, quiet: quiet}
}

// Dispatch records the unit and reports its call hash for cross-checking
// against an explorer, without touching the network.
func (d *DryRun) Dispatch(signer signature.KeyringPair, calls []types.Call, _ bool) (Outcome, error) {
	d.mu.Lock()
	d.units++
	d.calls += len(calls)
	d.mu.Unlock()

	if !d.quiet {
		d.logger.Info("dry-run: would submit",
			"signer", signer.Address,
			"calls", len(calls),
			"callHash", CallHash(calls),
		)
	}
	return Included, nil
}

// Units returns the number of units planned so far.
func (d *DryRun) Units() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.units
}

// Calls returns the number of calls planned so far.
func (d *DryRun) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// CallHash returns the 0x-prefixed blake2b-256 hash of the SCALE encoding of
// the calls, matching how the runtime identifies a (batched) call.
func CallHash(calls []types.Call) string {
	var encoded []byte
	if len(calls) == 1 {
		encoded, _ = codec.Encode(calls[0])
	} else {
		encoded, _ = codec.Encode(calls)
	}
	sum := blake2b.Sum256(encoded)
	return "0x" + hex.EncodeToString(sum[:])
}
