// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"strings"
	"sync"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"

	"github.com/vechain/substake/batch"
)

// ErrTimeout marks a submission whose status subscription produced no
// terminal event in time. The extrinsic may still have been included.
var ErrTimeout = errors.New("no terminal transaction status within timeout")

// Message fragments of connectivity/plumbing failures inside the client or
// the backend. Anything matching is downgraded to "possibly succeeded"
// instead of a hard failure.
var transientMarkers = []string{
	"connection",
	"websocket",
	"broken pipe",
	"i/o timeout",
	"eof",
	"internal error",
	"use of closed network",
	"no response received",
}

// IsTransient reports whether err looks like an infrastructure-class
// failure rather than a chain-side rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// nonceCache hands out sequential nonces per signer so concurrent
// submissions from one account do not collide, seeding each account from
// chain state on first use.
type nonceCache struct {
	mu   sync.Mutex
	next map[string]uint32
}

func newNonceCache() *nonceCache {
	return &nonceCache{next: make(map[string]uint32)}
}

func (n *nonceCache) acquire(key string, seed func() (uint32, error)) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	nonce, ok := n.next[key]
	if !ok {
		seeded, err := seed()
		if err != nil {
			return 0, err
		}
		nonce = seeded
	}
	n.next[key] = nonce + 1
	return nonce, nil
}

// forget drops the cached nonce so the next submission re-seeds from chain;
// called after a failed submission to avoid a stuck nonce gap.
func (n *nonceCache) forget(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.next, key)
}

// Dispatch signs the calls as one extrinsic (batch_all composite for more
// than one call) and submits it. With wait it follows the status
// subscription until inclusion in a best block, an explicit rejection, or
// the fixed timeout; without it the client's acknowledgement is enough.
//
// Dispatch implements batch.Dispatcher.
func (c *Conn) Dispatch(signer signature.KeyringPair, calls []types.Call, wait bool) (batch.Outcome, error) {
	if len(calls) == 0 {
		return batch.Rejected, errors.New("empty call set")
	}
	call, err := c.BatchAllCall(calls)
	if err != nil {
		return preSubmit(errors.WithMessage(err, "compose batch"))
	}

	nonce, err := c.nonces.acquire(signer.Address, func() (uint32, error) {
		info, err := c.Account(signer.PublicKey)
		if err != nil {
			return 0, err
		}
		return uint32(info.Nonce), nil
	})
	if err != nil {
		return preSubmit(errors.WithMessage(err, "fetch nonce"))
	}

	ext := types.NewExtrinsic(call)
	opts := types.SignatureOptions{
		BlockHash:          c.genesis,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        c.genesis,
		Nonce:              types.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        c.rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: c.rv.TransactionVersion,
	}
	if err := ext.Sign(signer, opts); err != nil {
		c.nonces.forget(signer.Address)
		return preSubmit(errors.WithMessage(err, "sign extrinsic"))
	}

	if !wait {
		if _, err := c.api.RPC.Author.SubmitExtrinsic(ext); err != nil {
			c.nonces.forget(signer.Address)
			return classify(err)
		}
		return batch.Included, nil
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		c.nonces.forget(signer.Address)
		return classify(err)
	}
	defer sub.Unsubscribe()

	outcome, err := awaitStatus(sub.Chan(), sub.Err(), c.timeout)
	if outcome == batch.Rejected {
		c.nonces.forget(signer.Address)
	}
	return outcome, err
}

// awaitStatus follows one status subscription to a terminal classification.
// Non-terminal states (ready, broadcast, retracted) keep the wait alive
// until the timeout fires.
func awaitStatus(statusCh <-chan types.ExtrinsicStatus, errCh <-chan error, timeout time.Duration) (batch.Outcome, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case status := <-statusCh:
			switch {
			case status.IsInBlock, status.IsFinalized:
				return batch.Included, nil
			case status.IsInvalid:
				return batch.Rejected, errors.New("extrinsic invalid")
			case status.IsDropped:
				return batch.Rejected, errors.New("extrinsic dropped")
			case status.IsUsurped:
				return batch.Rejected, errors.New("extrinsic usurped")
			case status.IsFinalityTimeout:
				return batch.Unknown, errors.New("finality timeout")
			}
		case err := <-errCh:
			return classify(err)
		case <-timer.C:
			return batch.Unknown, ErrTimeout
		}
	}
}

// preSubmit classifies failures that happen before the extrinsic reaches
// the network. Nothing was submitted, so the outcome is a hard failure even
// when the error itself looks transient.
func preSubmit(err error) (batch.Outcome, error) {
	return batch.Rejected, err
}

func classify(err error) (batch.Outcome, error) {
	if IsTransient(err) {
		return batch.Unknown, err
	}
	return batch.Rejected, err
}
