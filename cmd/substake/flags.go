// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

// hard caps on operator-supplied sizes
const (
	maxBatchSize = 256
	maxParallel  = 32
)

var (
	seedFlag = cli.StringFlag{
		Name:  "seed",
		Usage: "secret URI of the funding (god) account; children are derived from it",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Value: "westend",
		Usage: "target network name from the registry",
	}
	rpcURLFlag = cli.StringFlag{
		Name:  "rpc-url",
		Usage: "RPC endpoint; defaults to the network's registry entry",
	}
	networksFileFlag = cli.StringFlag{
		Name:  "networks-file",
		Usage: "YAML file with extra network definitions",
	}
	nominatorsFlag = cli.StringFlag{
		Name:  "nominators",
		Usage: "account index range to drive, as COUNT or START:END",
	}
	validatorsPerNominatorFlag = cli.IntFlag{
		Name:  "validators-per-nominator",
		Value: 16,
		Usage: "validators each nominator targets",
	}
	validatorStartIndexFlag = cli.IntFlag{
		Name:  "validator-start-index",
		Usage: "rotation cursor carried over from the previous run",
	}
	stakeBatchFlag = cli.IntFlag{
		Name:  "stake-batch",
		Value: 100,
		Usage: "accounts staked per reporting batch",
	}
	transferBatchFlag = cli.IntFlag{
		Name:  "transfer-batch",
		Value: 100,
		Usage: "transfers composed into one atomic batch extrinsic",
	}
	checkBatchFlag = cli.IntFlag{
		Name:  "check-batch",
		Value: 100,
		Usage: "existence probes grouped per query round",
	}
	parallelBatchesFlag = cli.IntFlag{
		Name:  "parallel-batches",
		Value: 1,
		Usage: "how many submissions to keep in flight at once",
	}
	noWaitFlag = cli.BoolFlag{
		Name:  "no-wait",
		Usage: "fire-and-forget: do not wait for block inclusion",
	}
	dryRunFlag = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "plan everything, submit nothing",
	}
	skipCheckAccountFlag = cli.BoolFlag{
		Name:  "skip-check-account",
		Usage: "treat the whole range as empty without probing (unsafe)",
	}
	fastCheckFlag = cli.BoolFlag{
		Name:  "fast-check",
		Usage: "estimate created accounts by binary search instead of probing every index (assumes contiguous creation)",
	}
	quietFlag = cli.BoolFlag{
		Name:  "quiet",
		Usage: "suppress per-account progress detail",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-4: crit, error, warn, info, debug)",
	}
	fundFlag = cli.Uint64Flag{
		Name:  "fund",
		Value: 300,
		Usage: "whole tokens transferred to each fresh account",
	}
	stakeFlag = cli.Uint64Flag{
		Name:  "stake",
		Value: 250,
		Usage: "whole tokens each nominator bonds",
	}
	topupFlag = cli.BoolFlag{
		Name:  "topup",
		Usage: "raise existing accounts back to the fund amount instead of creating new ones",
	}

	poolsFlag = cli.IntFlag{
		Name:  "pools",
		Usage: "number of pools to create (creators derived at //pool/N)",
	}
	poolMembersFlag = cli.StringFlag{
		Name:  "pool-members",
		Usage: "account index range to join into pools, as COUNT or START:END",
	}
	poolStakeFlag = cli.Uint64Flag{
		Name:  "pool-stake",
		Value: 500,
		Usage: "whole tokens a pool creator bonds at creation",
	}
	listPoolsFlag = cli.BoolFlag{
		Name:  "list-pools",
		Usage: "print bonded pools with their derived accounts",
	}
	destroyPoolsFlag = cli.BoolFlag{
		Name:  "destroy-pools",
		Usage: "unbond creators and set managed pools to destroying",
	}

	listAccountsFlag = cli.StringFlag{
		Name:  "list-accounts",
		Usage: "print derived accounts in the range, as COUNT or START:END",
	}
	unbondAccountsFlag = cli.StringFlag{
		Name:  "unbond-accounts",
		Usage: "chill and unbond staked accounts in the range, as COUNT or START:END",
	}
)
