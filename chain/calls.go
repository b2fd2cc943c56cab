// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
)

// RewardDestination is pallet-staking's payee enum; only the variant the
// tool submits is represented.
type RewardDestination byte

// RewardStaked compounds rewards into the bonded amount.
const RewardStaked RewardDestination = 0

// Encode implements SCALE enum encoding for the variant.
func (d RewardDestination) Encode(encoder scale.Encoder) error {
	return encoder.PushByte(byte(d))
}

// PoolState is pallet-nomination-pools' lifecycle enum.
type PoolState byte

const (
	PoolOpen       PoolState = 0
	PoolBlocked    PoolState = 1
	PoolDestroying PoolState = 2
)

// Encode implements SCALE enum encoding for the variant.
func (s PoolState) Encode(encoder scale.Encoder) error {
	return encoder.PushByte(byte(s))
}

// TransferCall builds Balances.transfer_keep_alive to a raw account id.
func (c *Conn) TransferCall(dest []byte, amount *big.Int) (types.Call, error) {
	addr, err := types.NewMultiAddressFromAccountID(dest)
	if err != nil {
		return types.Call{}, errors.WithMessage(err, "transfer dest")
	}
	return types.NewCall(c.meta, "Balances.transfer_keep_alive", addr, types.NewUCompact(amount))
}

// BondCall builds Staking.bond with rewards restaked.
func (c *Conn) BondCall(amount *big.Int) (types.Call, error) {
	return types.NewCall(c.meta, "Staking.bond", types.NewUCompact(amount), RewardStaked)
}

// NominateCall builds Staking.nominate for the given validator targets.
func (c *Conn) NominateCall(targets []types.AccountID) (types.Call, error) {
	addrs := make([]types.MultiAddress, len(targets))
	for i, target := range targets {
		addr, err := types.NewMultiAddressFromAccountID(target[:])
		if err != nil {
			return types.Call{}, errors.WithMessage(err, "nominate target")
		}
		addrs[i] = addr
	}
	return types.NewCall(c.meta, "Staking.nominate", addrs)
}

// ChillCall builds Staking.chill.
func (c *Conn) ChillCall() (types.Call, error) {
	return types.NewCall(c.meta, "Staking.chill")
}

// UnbondCall builds Staking.unbond for the given amount.
func (c *Conn) UnbondCall(amount *big.Int) (types.Call, error) {
	return types.NewCall(c.meta, "Staking.unbond", types.NewUCompact(amount))
}

// PoolCreateCall builds NominationPools.create with the given account filling
// every role.
func (c *Conn) PoolCreateCall(amount *big.Int, admin []byte) (types.Call, error) {
	addr, err := types.NewMultiAddressFromAccountID(admin)
	if err != nil {
		return types.Call{}, errors.WithMessage(err, "pool admin")
	}
	return types.NewCall(c.meta, "NominationPools.create", types.NewUCompact(amount), addr, addr, addr)
}

// PoolJoinCall builds NominationPools.join.
func (c *Conn) PoolJoinCall(amount *big.Int, poolID uint32) (types.Call, error) {
	return types.NewCall(c.meta, "NominationPools.join", types.NewUCompact(amount), types.NewU32(poolID))
}

// PoolUnbondCall builds NominationPools.unbond for a member's points.
func (c *Conn) PoolUnbondCall(member []byte, points *big.Int) (types.Call, error) {
	addr, err := types.NewMultiAddressFromAccountID(member)
	if err != nil {
		return types.Call{}, errors.WithMessage(err, "pool member")
	}
	return types.NewCall(c.meta, "NominationPools.unbond", addr, types.NewUCompact(points))
}

// PoolSetStateCall builds NominationPools.set_state.
func (c *Conn) PoolSetStateCall(poolID uint32, state PoolState) (types.Call, error) {
	return types.NewCall(c.meta, "NominationPools.set_state", types.NewU32(poolID), state)
}

// BatchAllCall wraps calls into one atomic Utility.batch_all composite;
// a single call passes through unwrapped.
func (c *Conn) BatchAllCall(calls []types.Call) (types.Call, error) {
	if len(calls) == 1 {
		return calls[0], nil
	}
	return types.NewCall(c.meta, "Utility.batch_all", calls)
}
