// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch_test

import (
	"sync"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/substake/batch"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	seen     [][]types.Call
	waits    []bool
	outcomes map[string]batch.Outcome // by label-ish signer address; default Included
	delay    time.Duration
}

func (f *fakeDispatcher) Dispatch(signer signature.KeyringPair, calls []types.Call, wait bool) (batch.Outcome, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.seen = append(f.seen, calls)
	f.waits = append(f.waits, wait)
	f.mu.Unlock()
	if out, ok := f.outcomes[signer.Address]; ok {
		return out, errors.New("boom")
	}
	return batch.Included, nil
}

func calls(n int) []types.Call {
	// zero-value calls are fine: the orchestrator treats them opaquely
	return make([]types.Call, n)
}

func TestChunk(t *testing.T) {
	tests := []struct {
		n, size int
		want    int
		last    int
	}{
		{10, 3, 4, 1},
		{9, 3, 3, 3},
		{1, 100, 1, 1},
		{100, 100, 1, 100},
		{101, 100, 2, 1},
	}
	for _, tt := range tests {
		spans := batch.Chunk(tt.n, tt.size)
		require.Len(t, spans, tt.want)

		covered := 0
		prevEnd := 0
		for _, span := range spans {
			assert.Equal(t, prevEnd, span[0], "spans must be contiguous")
			assert.Greater(t, span[1], span[0])
			covered += span[1] - span[0]
			prevEnd = span[1]
		}
		assert.Equal(t, tt.n, covered)
		last := spans[len(spans)-1]
		assert.Equal(t, tt.last, last[1]-last[0])
	}
}

func TestChunkDegenerate(t *testing.T) {
	assert.Nil(t, batch.Chunk(0, 10))
	assert.Nil(t, batch.Chunk(10, 0))
	assert.Nil(t, batch.Chunk(-1, 10))
}

func TestCompose(t *testing.T) {
	signer := signature.KeyringPair{Address: "god"}
	units := batch.Compose("transfer", signer, calls(10), 4)
	require.Len(t, units, 3)
	assert.Equal(t, "transfer 1/3", units[0].Label)
	assert.Equal(t, "transfer 3/3", units[2].Label)
	assert.Len(t, units[0].Calls, 4)
	assert.Len(t, units[2].Calls, 2)

	units = batch.Compose("transfer", signer, calls(4), 4)
	require.Len(t, units, 1)
	assert.Equal(t, "transfer", units[0].Label)
}

func TestRunSequential(t *testing.T) {
	disp := &fakeDispatcher{}
	o := batch.New(disp, 1, false, true, nil)

	units := batch.Compose("fund", signature.KeyringPair{Address: "god"}, calls(250), 100)
	result := o.Run(units)

	assert.Equal(t, 3, result.Included)
	assert.Equal(t, 0, result.Rejected)
	assert.Equal(t, 3, result.Total())
	require.Len(t, disp.seen, 3)
	assert.Len(t, disp.seen[0], 100)
	assert.Len(t, disp.seen[2], 50)
	for _, w := range disp.waits {
		assert.True(t, w)
	}
}

func TestRunNoWait(t *testing.T) {
	disp := &fakeDispatcher{}
	o := batch.New(disp, 1, true, true, nil)

	o.Run([]batch.Unit{{Label: "x", Calls: calls(1)}})
	require.Len(t, disp.waits, 1)
	assert.False(t, disp.waits[0])
}

func TestRunIsolatesFailures(t *testing.T) {
	disp := &fakeDispatcher{outcomes: map[string]batch.Outcome{
		"acc-3": batch.Rejected,
		"acc-7": batch.Unknown,
	}}
	o := batch.New(disp, 4, false, true, nil)

	var units []batch.Unit
	for _, addr := range []string{"acc-1", "acc-2", "acc-3", "acc-4", "acc-5", "acc-6", "acc-7", "acc-8"} {
		units = append(units, batch.Unit{
			Label:  addr,
			Signer: signature.KeyringPair{Address: addr},
			Calls:  calls(2),
		})
	}
	result := o.Run(units)

	assert.Equal(t, 6, result.Included)
	assert.Equal(t, 1, result.Unknown)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, []string{"acc-3"}, result.FailedLabels)
	assert.Len(t, disp.seen, 8, "siblings of a failed unit still run")
}

func TestRunBoundedFanOut(t *testing.T) {
	disp := &fakeDispatcher{delay: 20 * time.Millisecond}
	o := batch.New(disp, 2, false, true, nil)

	start := time.Now()
	result := o.Run(batch.Compose("x", signature.KeyringPair{}, calls(8), 2))
	elapsed := time.Since(start)

	assert.Equal(t, 4, result.Included)
	// 4 units, width 2, 20ms each: two waves
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestDryRunZeroWrites(t *testing.T) {
	dry := batch.NewDryRun(true, nil)
	o := batch.New(dry, 3, false, true, nil)

	result := o.Run(batch.Compose("fund", signature.KeyringPair{Address: "god"}, calls(250), 100))

	// planning output identical to a live run
	assert.Equal(t, 3, result.Included)
	assert.Equal(t, 0, result.Rejected)
	assert.Equal(t, 3, dry.Units())
	assert.Equal(t, 250, dry.Calls())
}
