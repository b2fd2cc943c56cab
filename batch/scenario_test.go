// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch_test

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/substake/batch"
	"github.com/vechain/substake/rotor"
)

// Documented reference run: 10 nominators, stake batch 100, 16 validators
// each, 150 validators on chain, starting cursor 0.
func TestNominatorRunScenario(t *testing.T) {
	vals := make([]types.AccountID, 150)
	for i := range vals {
		binary.BigEndian.PutUint32(vals[i][:4], uint32(i))
	}

	assignment, err := rotor.Assign(vals, 10, 16, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, assignment.NextIndex)

	// one bond+nominate composite per nominator
	units := make([]batch.Unit, 10)
	for k := range units {
		units[k] = batch.Unit{
			Label:  fmt.Sprintf("account %d", k),
			Signer: signature.KeyringPair{Address: fmt.Sprintf("acc-%d", k)},
			Calls:  calls(2),
		}
	}

	groups := batch.Chunk(len(units), 100)
	require.Len(t, groups, 1, "10 accounts fit one stake batch of 100")

	disp := &fakeDispatcher{}
	result := batch.New(disp, 1, false, true, nil).Run(units[groups[0][0]:groups[0][1]])

	assert.Equal(t, 10, result.Included)
	assert.Equal(t, 0, result.Rejected)
	require.Len(t, disp.seen, 10)
	for _, seen := range disp.seen {
		assert.Len(t, seen, 2)
	}
}
