// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/substake/batch"
	"github.com/vechain/substake/chain"
	"github.com/vechain/substake/keys"
)

// extra whole tokens a pool creator keeps for fees on top of its bond
const creatorFeeBuffer = 10

func poolsAction(ctx *cli.Context) error {
	pools := ctx.Int(poolsFlag.Name)
	membersRange := ctx.String(poolMembersFlag.Name)
	list := ctx.Bool(listPoolsFlag.Name)
	destroy := ctx.Bool(destroyPoolsFlag.Name)

	if list && destroy {
		return errors.New("--list-pools conflicts with --destroy-pools")
	}
	if destroy && pools < 1 {
		return errors.New("--destroy-pools requires --pools to bound the managed creator range")
	}
	if !list && !destroy && pools < 1 && membersRange == "" {
		return errors.New("nothing to do: pass --pools, --pool-members, --list-pools or --destroy-pools")
	}
	var mStart, mCount uint32
	if membersRange != "" {
		var err error
		if mStart, mCount, err = parseRange(membersRange); err != nil {
			return err
		}
	}
	transferBatch := clampBatch(ctx.Int(transferBatchFlag.Name))

	e, err := setup(ctx)
	if err != nil {
		return err
	}

	switch {
	case list:
		if err := e.listPools(); err != nil {
			e.logger.Error("list pools", "err", err)
		}
	case destroy:
		e.destroyPools(pools)
	default:
		if pools > 0 {
			e.createPools(pools, ctx.Uint64(poolStakeFlag.Name), transferBatch)
		}
		if mCount > 0 {
			e.joinPools(mStart, mCount, ctx.Uint64(stakeFlag.Name))
		}
	}
	return nil
}

// createPools funds //pool/N creators from god, then has each create a pool
// bonding poolStake.
func (e *env) createPools(pools int, poolStake uint64, transferBatch int) {
	god, err := e.ring.God()
	if err != nil {
		e.logger.Error("derive god account", "err", err)
		return
	}
	bond := e.net.Tokens(poolStake)
	grant := e.net.Tokens(poolStake + creatorFeeBuffer)

	transfers := make([]types.Call, 0, pools)
	units := make([]batch.Unit, 0, pools)
	for i := 0; i < pools; i++ {
		creator, err := e.ring.PoolCreator(uint32(i))
		if err != nil {
			e.logger.Error("derive pool creator", "index", i, "err", err)
			return
		}
		transfer, err := e.conn.TransferCall(creator.PublicKey, grant)
		if err != nil {
			e.logger.Error("build transfer", "err", err)
			return
		}
		transfers = append(transfers, transfer)

		create, err := e.conn.PoolCreateCall(bond, creator.PublicKey)
		if err != nil {
			e.logger.Error("build pool create", "err", err)
			return
		}
		units = append(units, batch.Unit{
			Label:  fmt.Sprintf("pool creator %d (%s)", i, creator.Address),
			Signer: creator,
			Calls:  []types.Call{create},
		})
	}

	funded := e.orch.Run(batch.Compose("fund pool creators", god, transfers, transferBatch))
	if funded.Rejected > 0 {
		e.logger.Error("pool creator funding failed, not creating pools", "failed", funded.Rejected)
		return
	}
	created := e.orch.Run(units)
	e.logger.Info("pools created",
		"ok", created.Included, "failed", created.Rejected, "unknown", created.Unknown,
		"bond", e.net.FormatAmount(bond))
}

// joinPools spreads derived member accounts round-robin across the bonded
// pools currently on chain.
func (e *env) joinPools(start, count uint32, stakeTokens uint64) {
	ids, err := e.conn.PoolIDs()
	if err != nil {
		e.logger.Error("enumerate pools", "err", err)
		return
	}
	if len(ids) == 0 {
		e.logger.Error("no pools available to join")
		return
	}
	amount := e.net.Tokens(stakeTokens)

	units := make([]batch.Unit, 0, count)
	for i := uint32(0); i < count; i++ {
		member, err := e.ring.Child(start + i)
		if err != nil {
			e.logger.Error("derive member", "index", start+i, "err", err)
			return
		}
		poolID := ids[int(i)%len(ids)]
		join, err := e.conn.PoolJoinCall(amount, poolID)
		if err != nil {
			e.logger.Error("build pool join", "err", err)
			return
		}
		units = append(units, batch.Unit{
			Label:  fmt.Sprintf("member %d -> pool %d", start+i, poolID),
			Signer: member,
			Calls:  []types.Call{join},
		})
	}
	result := e.orch.Run(units)
	e.logger.Info("pool joins settled",
		"ok", result.Included, "failed", result.Rejected, "unknown", result.Unknown,
		"pools", len(ids), "each", e.net.FormatAmount(amount))
}

// listPools prints every bonded pool with its runtime-derived accounts.
func (e *env) listPools() error {
	ids, err := e.conn.PoolIDs()
	if err != nil {
		return err
	}
	fmt.Printf("%-6s %-50s %-50s %s\n", "POOL", "BONDED ACCOUNT", "REWARD ACCOUNT", "BONDED")
	for _, id := range ids {
		bonded := keys.PoolAccount(keys.PoolBonded, id)
		reward := keys.PoolAccount(keys.PoolReward, id)
		balance := new(big.Int)
		if ledger, err := e.conn.Ledger(bonded); err == nil && ledger != nil {
			balance.Set((*big.Int)(&ledger.Active))
		}
		fmt.Printf("%-6d %-50s %-50s %s\n",
			id,
			keys.SS58(bonded, e.net.SS58Prefix),
			keys.SS58(reward, e.net.SS58Prefix),
			e.net.FormatAmount(balance),
		)
	}
	fmt.Printf("%d pools\n", len(ids))
	return nil
}

// destroyPools unbonds each managed creator and flips its pool to
// destroying. Pools whose creator is in no pool are skipped.
func (e *env) destroyPools(pools int) {
	units := make([]batch.Unit, 0, pools)
	for i := 0; i < pools; i++ {
		creator, err := e.ring.PoolCreator(uint32(i))
		if err != nil {
			e.logger.Error("derive pool creator", "index", i, "err", err)
			return
		}
		member, err := e.conn.PoolMembership(creator.PublicKey)
		if err != nil {
			e.logger.Error("query pool membership", "index", i, "err", err)
			return
		}
		if member == nil {
			e.logger.Debug("creator not in any pool, skipping", "index", i)
			continue
		}
		setState, err := e.conn.PoolSetStateCall(uint32(member.PoolID), chain.PoolDestroying)
		if err != nil {
			e.logger.Error("build set state", "err", err)
			return
		}
		unbond, err := e.conn.PoolUnbondCall(creator.PublicKey, member.Points.Int)
		if err != nil {
			e.logger.Error("build pool unbond", "err", err)
			return
		}
		units = append(units, batch.Unit{
			Label:  fmt.Sprintf("destroy pool %d", member.PoolID),
			Signer: creator,
			Calls:  []types.Call{setState, unbond},
		})
	}
	if len(units) == 0 {
		e.logger.Info("no managed pools found")
		return
	}
	result := e.orch.Run(units)
	e.logger.Info("pools destroying",
		"ok", result.Included, "failed", result.Rejected, "unknown", result.Unknown)
}
