// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

// testContext builds a cli context over the given flags without running the
// app. No connection is ever opened: every case below must be rejected by
// flag validation alone.
func testContext(t *testing.T, flags []cli.Flag, args ...string) *cli.Context {
	set := flag.NewFlagSet("substake", flag.ContinueOnError)
	for _, f := range flags {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestRunActionFlagValidation(t *testing.T) {
	runFlags := []cli.Flag{
		seedFlag, networkFlag, nominatorsFlag, validatorsPerNominatorFlag,
		validatorStartIndexFlag, stakeBatchFlag, transferBatchFlag,
		checkBatchFlag, skipCheckAccountFlag, fastCheckFlag, topupFlag,
		fundFlag, stakeFlag, verbosityFlag,
	}
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing nominators", nil, "--nominators"},
		{"zero count range", []string{"--nominators", "0"}, "range"},
		{"inverted range", []string{"--nominators", "10:5"}, "range"},
		{"topup conflicts with skip-check", []string{"--nominators", "10", "--topup", "--skip-check-account"}, "conflicts"},
		{"fast-check conflicts with skip-check", []string{"--nominators", "10", "--fast-check", "--skip-check-account"}, "conflicts"},
		{"stake above fund", []string{"--nominators", "10", "--stake", "400"}, "exceeds"},
		{"missing seed", []string{"--nominators", "10"}, "--seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runAction(testContext(t, runFlags, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPoolsActionFlagValidation(t *testing.T) {
	poolFlags := []cli.Flag{
		seedFlag, poolsFlag, poolMembersFlag, poolStakeFlag, stakeFlag,
		listPoolsFlag, destroyPoolsFlag, transferBatchFlag, verbosityFlag,
	}
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"list conflicts with destroy", []string{"--list-pools", "--destroy-pools"}, "conflicts"},
		{"destroy needs pools", []string{"--destroy-pools"}, "--pools"},
		{"nothing to do", nil, "nothing to do"},
		{"bad member range", []string{"--pool-members", "5:2"}, "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := poolsAction(testContext(t, poolFlags, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAccountsActionFlagValidation(t *testing.T) {
	accountFlags := []cli.Flag{
		seedFlag, listAccountsFlag, unbondAccountsFlag, verbosityFlag,
	}
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"neither flag", nil, "--list-accounts"},
		{"both flags", []string{"--list-accounts", "5", "--unbond-accounts", "5"}, "conflicts"},
		{"bad range", []string{"--list-accounts", "abc"}, "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accountsAction(testContext(t, accountFlags, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
