// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rotor distributes an on-chain validator set across nominator
// accounts by round-robin rotation.
package rotor

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
)

// ErrNoValidators is returned when the chain reports an empty validator set.
var ErrNoValidators = errors.New("no validators available")

// Assignment is the result of one rotation pass.
type Assignment struct {
	// Targets[k] is the ordered validator window of the k-th nominator.
	Targets [][]types.AccountID

	// NextIndex is the rotation cursor after the last nominator. Callers
	// persist it and pass it as the start of the next run so repeated
	// invocations keep visiting the set evenly.
	NextIndex int

	// MinCount and MaxCount are the lowest and highest per-validator
	// assignment counts in this table, for diagnostics.
	MinCount int
	MaxCount int
}

// Assign computes validator windows for `nominators` accounts.
//
// Each nominator receives a contiguous window of min(perNominator, len(vals))
// validators beginning at the rotation cursor; the cursor then advances by
// perNominator modulo the set size before the next nominator, whether or not
// that nominator's transaction later succeeds. The terminal cursor therefore
// equals (start + nominators*perNominator) mod len(vals).
func Assign(vals []types.AccountID, nominators, perNominator, start int) (*Assignment, error) {
	if len(vals) == 0 {
		return nil, ErrNoValidators
	}
	if nominators < 0 || perNominator < 1 {
		return nil, errors.Errorf("invalid assignment shape: %d nominators, %d per nominator", nominators, perNominator)
	}

	v := len(vals)
	window := perNominator
	if window > v {
		window = v
	}

	cursor := ((start % v) + v) % v
	counts := make([]int, v)
	targets := make([][]types.AccountID, nominators)
	for k := 0; k < nominators; k++ {
		w := make([]types.AccountID, window)
		for i := 0; i < window; i++ {
			idx := (cursor + i) % v
			w[i] = vals[idx]
			counts[idx]++
		}
		targets[k] = w
		cursor = (cursor + perNominator) % v
	}

	minCount, maxCount := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c < minCount {
			minCount = c
		}
		if c > maxCount {
			maxCount = c
		}
	}

	return &Assignment{
		Targets:   targets,
		NextIndex: cursor,
		MinCount:  minCount,
		MaxCount:  maxCount,
	}, nil
}
