// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/substake/keys"
)

// the well-known substrate dev mnemonic
const devSeed = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func TestDeriveDeterministic(t *testing.T) {
	r1, err := keys.NewRing(devSeed, 42)
	require.NoError(t, err)
	r2, err := keys.NewRing(devSeed, 42)
	require.NoError(t, err)

	for _, idx := range []uint32{0, 1, 2, 999} {
		a, err := r1.Child(idx)
		require.NoError(t, err)
		b, err := r2.Child(idx)
		require.NoError(t, err)
		assert.Equal(t, a.Address, b.Address)
		assert.Equal(t, a.PublicKey, b.PublicKey)
	}
}

func TestDeriveWellKnown(t *testing.T) {
	ring, err := keys.NewRing(devSeed, 42)
	require.NoError(t, err)

	alice, err := ring.Derive("//Alice")
	require.NoError(t, err)
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", alice.Address)
}

func TestDerivePathsDistinct(t *testing.T) {
	ring, err := keys.NewRing(devSeed, 42)
	require.NoError(t, err)

	god, err := ring.God()
	require.NoError(t, err)
	child0, err := ring.Child(0)
	require.NoError(t, err)
	child1, err := ring.Child(1)
	require.NoError(t, err)
	pool0, err := ring.PoolCreator(0)
	require.NoError(t, err)

	addrs := map[string]bool{
		god.Address:    true,
		child0.Address: true,
		child1.Address: true,
		pool0.Address:  true,
	}
	assert.Len(t, addrs, 4, "god, children and pool creators must not collide")
}

func TestDerivePrefix(t *testing.T) {
	westend, err := keys.NewRing(devSeed, 42)
	require.NoError(t, err)
	kusama, err := keys.NewRing(devSeed, 2)
	require.NoError(t, err)

	a, err := westend.Child(0)
	require.NoError(t, err)
	b, err := kusama.Child(0)
	require.NoError(t, err)

	assert.Equal(t, a.PublicKey, b.PublicKey, "prefix changes encoding only")
	assert.NotEqual(t, a.Address, b.Address)
	assert.Equal(t, a.Address, keys.SS58(a.PublicKey, 42))
	assert.Equal(t, b.Address, keys.SS58(b.PublicKey, 2))
}

func TestNewRingEmptySeed(t *testing.T) {
	_, err := keys.NewRing("", 42)
	assert.Error(t, err)
}

func TestPoolAccount(t *testing.T) {
	bonded := keys.PoolAccount(keys.PoolBonded, 1)
	require.Len(t, bonded, 32)
	assert.Equal(t, []byte("modlpy/nopls"), bonded[:12])
	assert.Equal(t, byte(0), bonded[12])
	assert.Equal(t, []byte{1, 0, 0, 0}, bonded[13:17])
	assert.Equal(t, make([]byte, 15), bonded[17:])

	reward := keys.PoolAccount(keys.PoolReward, 1)
	assert.Equal(t, byte(1), reward[12])
	assert.NotEqual(t, bonded, reward)
}
