// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"sort"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/substake/batch"
	"github.com/vechain/substake/chain"
	"github.com/vechain/substake/keys"
	"github.com/vechain/substake/netconf"
	"github.com/vechain/substake/rotor"
	"github.com/vechain/substake/scan"
)

// widest creation gap the fast scan steps over before it takes the highest
// found index as final
const fastCheckGapWindow = 16

// env is the shared per-invocation context: one connection, one derivation
// ring, one orchestrator.
type env struct {
	net    *netconf.Network
	ring   *keys.Ring
	conn   *chain.Conn
	orch   *batch.Orchestrator
	dry    *batch.DryRun // non-nil under --dry-run
	quiet  bool
	logger log15.Logger
}

// setup validates the shared flags and opens the connection. Everything that
// can be rejected without touching the network is rejected first.
func setup(ctx *cli.Context) (*env, error) {
	initLogger(ctx)
	logger := log15.New("cmd", "substake")

	seed := ctx.GlobalString(seedFlag.Name)
	if seed == "" {
		return nil, errors.New("--seed is required")
	}
	if file := ctx.GlobalString(networksFileFlag.Name); file != "" {
		if err := netconf.LoadFile(file); err != nil {
			return nil, err
		}
	}
	net, err := netconf.Lookup(ctx.GlobalString(networkFlag.Name))
	if err != nil {
		return nil, err
	}
	ring, err := keys.NewRing(seed, net.SS58Prefix)
	if err != nil {
		return nil, err
	}

	url := ctx.GlobalString(rpcURLFlag.Name)
	if url == "" {
		url = net.DefaultURL
	}
	conn, err := chain.Connect(url, net, logger)
	if err != nil {
		return nil, err
	}

	quiet := ctx.GlobalBool(quietFlag.Name) || ctx.Bool(quietFlag.Name)
	parallel := clampParallel(firstInt(ctx.Int(parallelBatchesFlag.Name), ctx.GlobalInt(parallelBatchesFlag.Name)))
	noWait := ctx.GlobalBool(noWaitFlag.Name) || ctx.Bool(noWaitFlag.Name)

	e := &env{
		net:    net,
		ring:   ring,
		conn:   conn,
		quiet:  quiet,
		logger: logger,
	}
	var disp batch.Dispatcher = conn
	if ctx.GlobalBool(dryRunFlag.Name) || ctx.Bool(dryRunFlag.Name) {
		e.dry = batch.NewDryRun(quiet, logger)
		disp = e.dry
	}
	e.orch = batch.New(disp, parallel, noWait, quiet, logger)
	return e, nil
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// runAction is the default nominator run: check, fund (or top up), then
// bond+nominate with round-robin validator assignment.
func runAction(ctx *cli.Context) error {
	// flag validation, before any network call
	rangeStr := ctx.GlobalString(nominatorsFlag.Name)
	if rangeStr == "" {
		return errors.New("--nominators is required")
	}
	start, count, err := parseRange(rangeStr)
	if err != nil {
		return err
	}
	perNominator := ctx.GlobalInt(validatorsPerNominatorFlag.Name)
	if perNominator < 1 {
		return errors.New("--validators-per-nominator must be at least 1")
	}
	startIndex := ctx.GlobalInt(validatorStartIndexFlag.Name)
	topup := ctx.GlobalBool(topupFlag.Name)
	skipCheck := ctx.GlobalBool(skipCheckAccountFlag.Name)
	fastCheck := ctx.GlobalBool(fastCheckFlag.Name)
	if topup && skipCheck {
		return errors.New("--topup conflicts with --skip-check-account")
	}
	if fastCheck && skipCheck {
		return errors.New("--fast-check conflicts with --skip-check-account")
	}
	fundTokens := ctx.GlobalUint64(fundFlag.Name)
	stakeTokens := ctx.GlobalUint64(stakeFlag.Name)
	if stakeTokens > fundTokens {
		return errors.Errorf("--stake %d exceeds --fund %d", stakeTokens, fundTokens)
	}
	transferBatch := clampBatch(ctx.GlobalInt(transferBatchFlag.Name))
	checkBatch := clampBatch(ctx.GlobalInt(checkBatchFlag.Name))
	stakeBatch := clampBatch(ctx.GlobalInt(stakeBatchFlag.Name))

	e, err := setup(ctx)
	if err != nil {
		return err
	}

	// execution phase: failures are logged, not turned into exit codes
	god, err := e.ring.God()
	if err != nil {
		e.logger.Error("derive god account", "err", err)
		return nil
	}
	godFree, err := e.conn.FreeBalance(god.PublicKey)
	if err != nil {
		e.logger.Error("query god balance", "err", err)
		return nil
	}
	e.logger.Info("god account", "address", god.Address, "free", e.net.FormatAmount(godFree))

	// classify the range
	var classified *scan.Result
	switch {
	case skipCheck:
		classified = scan.SkipAll(start, count)
		e.logger.Warn("skipping account existence check, whole range assumed available")
	case fastCheck:
		classified, err = scan.ClassifyFast(e.conn.Prober(e.ring), start, count, fastCheckGapWindow)
		if err != nil {
			e.logger.Error("account scan", "err", err)
			return nil
		}
	default:
		progress, done := scanProgress(int(count), e.quiet)
		classified, err = scan.Classify(e.conn.Prober(e.ring), start, count, checkBatch, progress)
		done()
		if err != nil {
			e.logger.Error("account scan", "err", err)
			return nil
		}
	}
	e.logger.Info("range classified",
		"range", rangeStr, "existing", len(classified.Existing), "available", len(classified.Available))

	fundAmount := e.net.Tokens(fundTokens)
	if topup {
		if err := e.topup(god, classified.Existing, fundAmount, transferBatch); err != nil {
			e.logger.Error("topup", "err", err)
		}
		return nil
	}

	// fund fresh accounts
	planned := new(big.Int).Mul(fundAmount, big.NewInt(int64(len(classified.Available))))
	if godFree.Cmp(planned) < 0 && e.dry == nil {
		e.logger.Error("god balance cannot cover planned funding",
			"needed", e.net.FormatAmount(planned), "free", e.net.FormatAmount(godFree))
		return nil
	}
	funded := e.fund(god, classified.Available, fundAmount, transferBatch)

	// assign validators and stake
	candidates, err := e.stakeCandidates(classified, skipCheck)
	if err != nil {
		e.logger.Error("collect stake candidates", "err", err)
		return nil
	}
	vals, err := e.conn.Validators()
	if err != nil {
		e.logger.Error("query validators", "err", err)
		return nil
	}
	assignment, err := rotor.Assign(vals, len(candidates), perNominator, startIndex)
	if err != nil {
		// empty validator set: fail fast, nothing submitted
		e.logger.Error("validator assignment", "err", err, "validators", len(vals))
		return nil
	}
	e.logger.Info("validators assigned",
		"validators", len(vals), "perNominator", perNominator,
		"minPerValidator", assignment.MinCount, "maxPerValidator", assignment.MaxCount)

	staked := e.stake(candidates, assignment, e.net.Tokens(stakeTokens), stakeBatch)

	e.logger.Info("run complete",
		"created", funded.Included, "skipped", len(classified.Existing),
		"staked", staked.Included, "failed", funded.Rejected+staked.Rejected,
		"unknown", funded.Unknown+staked.Unknown,
		"nextValidatorIndex", assignment.NextIndex)
	return nil
}

// fund transfers the fund amount to every available index, god-signed, in
// atomic composite batches.
func (e *env) fund(god signature.KeyringPair, indexes []uint32, amount *big.Int, transferBatch int) *batch.Result {
	result := new(batch.Result)
	if len(indexes) == 0 {
		return result
	}
	calls := make([]types.Call, 0, len(indexes))
	for _, idx := range indexes {
		pair, err := e.ring.Child(idx)
		if err != nil {
			e.logger.Error("derive child", "index", idx, "err", err)
			return result
		}
		call, err := e.conn.TransferCall(pair.PublicKey, amount)
		if err != nil {
			e.logger.Error("build transfer", "index", idx, "err", err)
			return result
		}
		calls = append(calls, call)
	}
	e.logger.Info("funding accounts",
		"accounts", len(indexes), "each", e.net.FormatAmount(amount),
		"batches", (len(calls)+transferBatch-1)/transferBatch)
	return e.orch.Run(batch.Compose("fund", god, calls, transferBatch))
}

// topup raises every existing account back up to the target balance.
func (e *env) topup(god signature.KeyringPair, indexes []uint32, target *big.Int, transferBatch int) error {
	var calls []types.Call
	for _, idx := range indexes {
		pair, err := e.ring.Child(idx)
		if err != nil {
			return err
		}
		free, err := e.conn.FreeBalance(pair.PublicKey)
		if err != nil {
			return err
		}
		delta := new(big.Int).Sub(target, free)
		if delta.Sign() <= 0 {
			continue
		}
		call, err := e.conn.TransferCall(pair.PublicKey, delta)
		if err != nil {
			return err
		}
		calls = append(calls, call)
	}
	if len(calls) == 0 {
		e.logger.Info("topup: all accounts at target")
		return nil
	}
	e.logger.Info("topping up accounts", "transfers", len(calls))
	result := e.orch.Run(batch.Compose("topup", god, calls, transferBatch))
	e.logger.Info("topup complete", "ok", result.Included, "failed", result.Rejected, "unknown", result.Unknown)
	return nil
}

// stakeCandidates returns the indexes to bond+nominate, in range order:
// freshly funded accounts plus existing ones that have no staking ledger yet.
func (e *env) stakeCandidates(classified *scan.Result, skipCheck bool) ([]uint32, error) {
	candidates := append([]uint32(nil), classified.Available...)
	if !skipCheck {
		for _, idx := range classified.Existing {
			pair, err := e.ring.Child(idx)
			if err != nil {
				return nil, err
			}
			ledger, err := e.conn.Ledger(pair.PublicKey)
			if err != nil {
				return nil, err
			}
			if ledger == nil {
				candidates = append(candidates, idx)
			}
		}
	}
	sortUint32(candidates)
	return candidates, nil
}

// stake submits one bond+nominate composite per candidate, signed by the
// candidate itself, processed in reporting groups of stakeBatch.
func (e *env) stake(candidates []uint32, assignment *rotor.Assignment, amount *big.Int, stakeBatch int) *batch.Result {
	total := new(batch.Result)
	units := make([]batch.Unit, 0, len(candidates))
	for k, idx := range candidates {
		pair, err := e.ring.Child(idx)
		if err != nil {
			e.logger.Error("derive child", "index", idx, "err", err)
			return total
		}
		bond, err := e.conn.BondCall(amount)
		if err != nil {
			e.logger.Error("build bond", "err", err)
			return total
		}
		nominate, err := e.conn.NominateCall(assignment.Targets[k])
		if err != nil {
			e.logger.Error("build nominate", "err", err)
			return total
		}
		units = append(units, batch.Unit{
			Label:  pair.Address,
			Signer: pair,
			Calls:  []types.Call{bond, nominate},
		})
	}

	groups := batch.Chunk(len(units), stakeBatch)
	for i, span := range groups {
		if !e.quiet {
			e.logger.Info("staking batch", "batch", i+1, "of", len(groups), "accounts", span[1]-span[0])
		}
		merge(total, e.orch.Run(units[span[0]:span[1]]))
	}
	return total
}

func merge(into, from *batch.Result) {
	into.Included += from.Included
	into.Unknown += from.Unknown
	into.Rejected += from.Rejected
	into.FailedLabels = append(into.FailedLabels, from.FailedLabels...)
}

func sortUint32(s []uint32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
