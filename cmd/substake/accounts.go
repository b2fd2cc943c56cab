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
)

func accountsAction(ctx *cli.Context) error {
	listRange := ctx.String(listAccountsFlag.Name)
	unbondRange := ctx.String(unbondAccountsFlag.Name)

	if listRange == "" && unbondRange == "" {
		return errors.New("pass --list-accounts or --unbond-accounts")
	}
	if listRange != "" && unbondRange != "" {
		return errors.New("--list-accounts conflicts with --unbond-accounts")
	}
	rangeStr := listRange
	if unbondRange != "" {
		rangeStr = unbondRange
	}
	start, count, err := parseRange(rangeStr)
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}

	if listRange != "" {
		if err := e.listAccounts(start, count); err != nil {
			e.logger.Error("list accounts", "err", err)
		}
		return nil
	}
	e.unbondAccounts(start, count)
	return nil
}

// listAccounts prints one row per derived index: balance, bonded stake and
// pool membership.
func (e *env) listAccounts(start, count uint32) error {
	fmt.Printf("%-7s %-50s %-16s %-16s %s\n", "INDEX", "ADDRESS", "FREE", "BONDED", "POOL")
	existing := 0
	for i := uint32(0); i < count; i++ {
		idx := start + i
		pair, err := e.ring.Child(idx)
		if err != nil {
			return err
		}
		info, err := e.conn.Account(pair.PublicKey)
		if err != nil {
			return err
		}
		if !info.Exists() {
			fmt.Printf("%-7d %-50s %s\n", idx, pair.Address, "(not created)")
			continue
		}
		existing++

		bonded := new(big.Int)
		if ledger, err := e.conn.Ledger(pair.PublicKey); err != nil {
			return err
		} else if ledger != nil {
			bonded.Set((*big.Int)(&ledger.Active))
		}
		pool := "-"
		if member, err := e.conn.PoolMembership(pair.PublicKey); err != nil {
			return err
		} else if member != nil {
			pool = fmt.Sprintf("%d", member.PoolID)
		}
		fmt.Printf("%-7d %-50s %-16s %-16s %s\n",
			idx, pair.Address,
			e.net.FormatAmount(info.Data.Free.Int),
			e.net.FormatAmount(bonded),
			pool,
		)
	}
	fmt.Printf("%d of %d created\n", existing, count)
	return nil
}

// unbondAccounts chills and unbonds every bonded account in the range, and
// pool-unbonds every pool member.
func (e *env) unbondAccounts(start, count uint32) {
	var units []batch.Unit
	for i := uint32(0); i < count; i++ {
		idx := start + i
		pair, err := e.ring.Child(idx)
		if err != nil {
			e.logger.Error("derive child", "index", idx, "err", err)
			return
		}

		ledger, err := e.conn.Ledger(pair.PublicKey)
		if err != nil {
			e.logger.Error("query ledger", "index", idx, "err", err)
			return
		}
		if ledger != nil {
			active := new(big.Int).Set((*big.Int)(&ledger.Active))
			chill, err := e.conn.ChillCall()
			if err != nil {
				e.logger.Error("build chill", "err", err)
				return
			}
			unbond, err := e.conn.UnbondCall(active)
			if err != nil {
				e.logger.Error("build unbond", "err", err)
				return
			}
			units = append(units, batch.Unit{
				Label:  fmt.Sprintf("unbond %d (%s)", idx, pair.Address),
				Signer: pair,
				Calls:  []types.Call{chill, unbond},
			})
			continue
		}

		member, err := e.conn.PoolMembership(pair.PublicKey)
		if err != nil {
			e.logger.Error("query pool membership", "index", idx, "err", err)
			return
		}
		if member != nil {
			poolUnbond, err := e.conn.PoolUnbondCall(pair.PublicKey, member.Points.Int)
			if err != nil {
				e.logger.Error("build pool unbond", "err", err)
				return
			}
			units = append(units, batch.Unit{
				Label:  fmt.Sprintf("pool unbond %d (%s)", idx, pair.Address),
				Signer: pair,
				Calls:  []types.Call{poolUnbond},
			})
		}
	}
	if len(units) == 0 {
		e.logger.Info("nothing bonded in range")
		return
	}

	result := e.orch.Run(units)
	e.logger.Info("unbonding submitted",
		"ok", result.Included, "failed", result.Rejected, "unknown", result.Unknown,
		"withdrawableAfterDays", e.net.UnbondDays)
}
