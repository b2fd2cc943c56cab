// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// substake derives child accounts from a funding seed on a Substrate test
// network, funds them, and drives them through the staking lifecycle.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "Substake",
		Usage:   "mass account funding and staking on Substrate test networks",
		Flags: []cli.Flag{
			seedFlag,
			networkFlag,
			rpcURLFlag,
			networksFileFlag,
			nominatorsFlag,
			validatorsPerNominatorFlag,
			validatorStartIndexFlag,
			stakeBatchFlag,
			transferBatchFlag,
			checkBatchFlag,
			parallelBatchesFlag,
			noWaitFlag,
			dryRunFlag,
			skipCheckAccountFlag,
			fastCheckFlag,
			quietFlag,
			verbosityFlag,
			fundFlag,
			stakeFlag,
			topupFlag,
		},
		Action: runAction,
		Commands: []cli.Command{
			{
				Name:  "pools",
				Usage: "create, fill, list or destroy nomination pools",
				Flags: []cli.Flag{
					poolsFlag,
					poolMembersFlag,
					poolStakeFlag,
					stakeFlag,
					listPoolsFlag,
					destroyPoolsFlag,
					transferBatchFlag,
					parallelBatchesFlag,
					noWaitFlag,
					dryRunFlag,
					quietFlag,
				},
				Action: poolsAction,
			},
			{
				Name:  "accounts",
				Usage: "inspect or unbond derived accounts",
				Flags: []cli.Flag{
					listAccountsFlag,
					unbondAccountsFlag,
					parallelBatchesFlag,
					noWaitFlag,
					dryRunFlag,
					quietFlag,
				},
				Action: accountsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
