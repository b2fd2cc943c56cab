// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package batch turns lists of logical chain operations into bounded-size
// atomic submissions and drives them to a terminal state.
//
// A run never aborts on a single unit's failure: rejected units are counted
// and reported, timed-out or transiently failed units are counted as unknown
// ("possibly succeeded"), and the remaining units proceed.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/inconshreveable/log15"
	"golang.org/x/sync/semaphore"
)

// Outcome is the terminal classification of one dispatched unit.
type Outcome int

const (
	// Included means the extrinsic reached a best block, or was acknowledged
	// under fire-and-forget.
	Included Outcome = iota
	// Unknown means no terminal signal arrived (timeout) or the failure was
	// infrastructure-class; the operations may still have landed on chain.
	Unknown
	// Rejected means the chain explicitly refused the extrinsic.
	Rejected
)

// Unit is one independently signed piece of work: a signer plus the calls it
// authorizes, submitted as a single extrinsic (composed into one atomic
// Utility.batch_all when there is more than one call).
type Unit struct {
	Label  string
	Signer signature.KeyringPair
	Calls  []types.Call
}

// Dispatcher signs and submits one unit and classifies its outcome.
// When wait is false the dispatcher returns as soon as the client
// acknowledges the submission.
type Dispatcher interface {
	Dispatch(signer signature.KeyringPair, calls []types.Call, wait bool) (Outcome, error)
}

// Result aggregates unit outcomes over one run.
type Result struct {
	Included int
	Unknown  int
	Rejected int

	// FailedLabels names the rejected units, in completion order.
	FailedLabels []string
}

// Total returns the number of units accounted for.
func (r *Result) Total() int {
	return r.Included + r.Unknown + r.Rejected
}

func (r *Result) count(label string, outcome Outcome) {
	switch outcome {
	case Included:
		r.Included++
	case Unknown:
		r.Unknown++
	case Rejected:
		r.Rejected++
		r.FailedLabels = append(r.FailedLabels, label)
	}
}

// Orchestrator submits units through a Dispatcher with a bounded fan-out
// width.
type Orchestrator struct {
	disp     Dispatcher
	parallel int64
	noWait   bool
	quiet    bool
	logger   log15.Logger
}

// New creates an Orchestrator. parallel is clamped to at least 1.
func New(disp Dispatcher, parallel int, noWait, quiet bool, logger log15.Logger) *Orchestrator {
	if parallel < 1 {
		parallel = 1
	}
	if logger == nil {
		logger = log15.New("pkg", "batch")
	}
	return &Orchestrator{
		disp:     disp,
		parallel: int64(parallel),
		noWait:   noWait,
		quiet:    quiet,
		logger:   logger,
	}
}

// Chunk partitions n items into [start, end) spans of at most size items,
// preserving order. The final span may be shorter.
func Chunk(n, size int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	spans := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans
}

// Compose chunks one signer's call list into units of at most size calls
// each. Labels are "<label> 1/3", "<label> 2/3", ...
func Compose(label string, signer signature.KeyringPair, calls []types.Call, size int) []Unit {
	spans := Chunk(len(calls), size)
	units := make([]Unit, len(spans))
	for i, span := range spans {
		units[i] = Unit{
			Label:  unitLabel(label, i, len(spans)),
			Signer: signer,
			Calls:  calls[span[0]:span[1]],
		}
	}
	return units
}

// Run dispatches all units and returns the aggregate result. Units run at
// most `parallel` at a time; every unit settles on its own, so one slow or
// failed submission neither blocks nor cancels its siblings.
func (o *Orchestrator) Run(units []Unit) *Result {
	result := new(Result)
	if len(units) == 0 {
		return result
	}

	if o.parallel == 1 {
		for i := range units {
			o.runOne(&units[i], result, nil)
		}
		return result
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(o.parallel)
	)
	for i := range units {
		unit := &units[i]
		if err := sem.Acquire(context.Background(), 1); err != nil {
			// background context: acquisition cannot fail in practice
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			o.runOne(unit, result, &mu)
		}()
	}
	wg.Wait()
	return result
}

func (o *Orchestrator) runOne(unit *Unit, result *Result, mu *sync.Mutex) {
	outcome, err := o.disp.Dispatch(unit.Signer, unit.Calls, !o.noWait)

	switch outcome {
	case Included:
		if !o.quiet {
			o.logger.Info("batch settled", "unit", unit.Label, "calls", len(unit.Calls))
		}
	case Unknown:
		o.logger.Warn("batch outcome unknown, assuming possibly succeeded", "unit", unit.Label, "err", errString(err))
	case Rejected:
		o.logger.Error("batch rejected", "unit", unit.Label, "err", errString(err))
	}

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	result.count(unit.Label, outcome)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func unitLabel(label string, i, n int) string {
	if n == 1 {
		return label
	}
	return fmt.Sprintf("%s %d/%d", label, i+1, n)
}
