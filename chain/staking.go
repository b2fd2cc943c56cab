// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pierrec/xxHash/xxHash64"
	"github.com/pkg/errors"
)

// StakingLedger mirrors pallet-staking's ledger record.
type StakingLedger struct {
	Stash          types.AccountID
	Total          types.UCompact
	Active         types.UCompact
	Unlocking      []UnlockChunk
	ClaimedRewards []types.U32
}

// UnlockChunk is one scheduled unbond within a ledger.
type UnlockChunk struct {
	Value types.UCompact
	Era   types.UCompact
}

// Nominations mirrors pallet-staking's nomination record.
type Nominations struct {
	Targets     []types.AccountID
	SubmittedIn types.U32
	Suppressed  types.Bool
}

// PoolMember mirrors pallet-nomination-pools' membership record.
type PoolMember struct {
	PoolID                    types.U32
	Points                    types.U128
	LastRecordedRewardCounter types.U128
	UnbondingEras             []UnbondingEra
}

// UnbondingEra is one (era, points) entry of a pool member's unbonding queue.
type UnbondingEra struct {
	Era    types.U32
	Points types.U128
}

// Ledger reads the staking ledger of a stash, resolving the controller
// through Staking.Bonded first. Returns (nil, nil) for unbonded stashes.
func (c *Conn) Ledger(stash []byte) (*StakingLedger, error) {
	bondedKey, err := types.CreateStorageKey(c.meta, "Staking", "Bonded", stash)
	if err != nil {
		return nil, errors.WithMessage(err, "bonded storage key")
	}
	var controller types.AccountID
	ok, err := c.api.RPC.State.GetStorageLatest(bondedKey, &controller)
	if err != nil {
		return nil, errors.WithMessage(err, "query bonded")
	}
	if !ok {
		return nil, nil
	}

	ledgerKey, err := types.CreateStorageKey(c.meta, "Staking", "Ledger", controller[:])
	if err != nil {
		return nil, errors.WithMessage(err, "ledger storage key")
	}
	var ledger StakingLedger
	ok, err = c.api.RPC.State.GetStorageLatest(ledgerKey, &ledger)
	if err != nil {
		return nil, errors.WithMessage(err, "query ledger")
	}
	if !ok {
		return nil, nil
	}
	return &ledger, nil
}

// Nominators reads the nomination targets of a stash, or nil when the stash
// nominates nothing.
func (c *Conn) Nominators(stash []byte) (*Nominations, error) {
	key, err := types.CreateStorageKey(c.meta, "Staking", "Nominators", stash)
	if err != nil {
		return nil, errors.WithMessage(err, "nominators storage key")
	}
	var noms Nominations
	ok, err := c.api.RPC.State.GetStorageLatest(key, &noms)
	if err != nil {
		return nil, errors.WithMessage(err, "query nominators")
	}
	if !ok {
		return nil, nil
	}
	return &noms, nil
}

// PoolMembership reads the pool membership of an account, or nil when the
// account is in no pool.
func (c *Conn) PoolMembership(who []byte) (*PoolMember, error) {
	key, err := types.CreateStorageKey(c.meta, "NominationPools", "PoolMembers", who)
	if err != nil {
		return nil, errors.WithMessage(err, "pool members storage key")
	}
	var member PoolMember
	ok, err := c.api.RPC.State.GetStorageLatest(key, &member)
	if err != nil {
		return nil, errors.WithMessage(err, "query pool membership")
	}
	if !ok {
		return nil, nil
	}
	return &member, nil
}

// twox128 is the hasher FRAME uses for pallet and storage-item name
// prefixes: two xxhash64 rounds seeded 0 and 1, little-endian concatenated.
func twox128(data []byte) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], xxHash64.Checksum(data, 0))
	binary.LittleEndian.PutUint64(out[8:], xxHash64.Checksum(data, 1))
	return out
}

// storagePrefix is the 32-byte key prefix of one storage item,
// twox128(pallet) ++ twox128(item).
func storagePrefix(pallet, item string) types.StorageKey {
	return types.StorageKey(append(twox128([]byte(pallet)), twox128([]byte(item))...))
}

// PoolIDs enumerates all bonded pool ids by walking the BondedPools map
// keys; values are not decoded so the listing survives runtime upgrades of
// the pool record layout.
func (c *Conn) PoolIDs() ([]uint32, error) {
	prefix := storagePrefix("NominationPools", "BondedPools")
	storageKeys, err := c.api.RPC.State.GetKeysLatest(prefix)
	if err != nil {
		return nil, errors.WithMessage(err, "enumerate bonded pools")
	}
	ids := make([]uint32, 0, len(storageKeys))
	for _, key := range storageKeys {
		// twox64concat map key: the trailing 4 bytes are the u32 pool id
		if len(key) < 4 {
			continue
		}
		ids = append(ids, binary.LittleEndian.Uint32(key[len(key)-4:]))
	}
	return ids, nil
}
