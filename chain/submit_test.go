// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/substake/batch"
)

func TestAwaitStatusTimeout(t *testing.T) {
	statusCh := make(chan types.ExtrinsicStatus)
	errCh := make(chan error)

	start := time.Now()
	outcome, err := awaitStatus(statusCh, errCh, 50*time.Millisecond)

	assert.Equal(t, batch.Unknown, outcome)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second, "must proceed, not hang")
}

func TestAwaitStatusInBlock(t *testing.T) {
	statusCh := make(chan types.ExtrinsicStatus, 2)
	statusCh <- types.ExtrinsicStatus{IsReady: true}
	statusCh <- types.ExtrinsicStatus{IsInBlock: true}

	outcome, err := awaitStatus(statusCh, nil, time.Second)
	assert.Equal(t, batch.Included, outcome)
	assert.NoError(t, err)
}

func TestAwaitStatusRejections(t *testing.T) {
	for _, status := range []types.ExtrinsicStatus{
		{IsInvalid: true},
		{IsDropped: true},
		{IsUsurped: true},
	} {
		statusCh := make(chan types.ExtrinsicStatus, 1)
		statusCh <- status

		outcome, err := awaitStatus(statusCh, nil, time.Second)
		assert.Equal(t, batch.Rejected, outcome)
		assert.Error(t, err)
	}
}

func TestAwaitStatusSubscriptionError(t *testing.T) {
	errCh := make(chan error, 1)
	errCh <- errors.New("websocket: close 1006")

	outcome, err := awaitStatus(nil, errCh, time.Second)
	assert.Equal(t, batch.Unknown, outcome, "infra errors downgrade to unknown")
	assert.Error(t, err)

	errCh = make(chan error, 1)
	errCh <- errors.New("Invalid Transaction: inability to pay some fees")

	outcome, _ = awaitStatus(nil, errCh, time.Second)
	assert.Equal(t, batch.Rejected, outcome)
}

func TestIsTransient(t *testing.T) {
	transient := []string{
		"connection reset by peer",
		"websocket: bad handshake",
		"unexpected EOF",
		"Internal Error: client is closed",
		"read tcp: i/o timeout",
	}
	for _, msg := range transient {
		assert.True(t, IsTransient(errors.New(msg)), msg)
	}

	fatal := []string{
		"Invalid Transaction: payment",
		"staking.InsufficientBond",
		"1010: Invalid Transaction",
	}
	for _, msg := range fatal {
		assert.False(t, IsTransient(errors.New(msg)), msg)
	}
	assert.False(t, IsTransient(nil))
}

func TestPreSubmitNeverUnknown(t *testing.T) {
	// a failed nonce fetch or signing step submitted nothing, so even a
	// transient-looking error must count as a hard failure
	err := errors.New("connection reset by peer")
	require.True(t, IsTransient(err))

	outcome, got := preSubmit(err)
	assert.Equal(t, batch.Rejected, outcome)
	assert.Equal(t, err, got)
}

func TestNonceCache(t *testing.T) {
	cache := newNonceCache()
	seeds := 0
	seed := func() (uint32, error) {
		seeds++
		return 7, nil
	}

	for want := uint32(7); want < 10; want++ {
		got, err := cache.acquire("alice", seed)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, seeds, "seeded from chain only once")

	cache.forget("alice")
	got, err := cache.acquire("alice", seed)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got)
	assert.Equal(t, 2, seeds)

	got, err = cache.acquire("bob", func() (uint32, error) { return 0, nil })
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestNonceCacheSeedError(t *testing.T) {
	cache := newNonceCache()
	_, err := cache.acquire("alice", func() (uint32, error) {
		return 0, errors.New("connection refused")
	})
	assert.Error(t, err)

	// a failed seed must not poison the slot
	got, err := cache.acquire("alice", func() (uint32, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got)
}
