// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scan classifies a contiguous range of derived account indexes as
// already created on chain or still available, so a run does not double-fund.
package scan

import (
	"github.com/pkg/errors"
)

// Prober answers existence queries for derived account indexes, in batches.
// Implementations return one answer per requested index, in order.
type Prober interface {
	Exists(indexes []uint32) ([]bool, error)
}

// Result is the classification of one scanned range.
type Result struct {
	Existing  []uint32
	Available []uint32
}

// Progress is called after each probed chunk with cumulative done/total.
type Progress func(done, total int)

// SkipAll marks the whole range available without any probing. Deliberate
// unsafe fast path for ranges the operator knows are empty.
func SkipAll(start, count uint32) *Result {
	result := &Result{Available: make([]uint32, 0, count)}
	for i := uint32(0); i < count; i++ {
		result.Available = append(result.Available, start+i)
	}
	return result
}

// Classify probes [start, start+count) in chunks of at most chunkSize
// indexes, in order.
func Classify(p Prober, start, count uint32, chunkSize int, progress Progress) (*Result, error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	result := new(Result)
	indexes := make([]uint32, 0, chunkSize)
	done := 0
	for i := uint32(0); i < count; i++ {
		indexes = append(indexes, start+i)
		if len(indexes) < chunkSize && i != count-1 {
			continue
		}
		found, err := p.Exists(indexes)
		if err != nil {
			return nil, errors.WithMessage(err, "existence probe")
		}
		if len(found) != len(indexes) {
			return nil, errors.Errorf("prober returned %d answers for %d indexes", len(found), len(indexes))
		}
		for j, ok := range found {
			if ok {
				result.Existing = append(result.Existing, indexes[j])
			} else {
				result.Available = append(result.Available, indexes[j])
			}
		}
		done += len(indexes)
		if progress != nil {
			progress(done, int(count))
		}
		indexes = indexes[:0]
	}
	return result, nil
}

// EstimateHighest estimates the highest created index at or above start by
// galloping doubling probes followed by bisection, then confirms with a
// bounded linear pass over the next `confirm` indexes to step over small
// gaps. It returns (highest, true) or (0, false) when start itself is not
// created.
//
// The estimate assumes accounts were created roughly contiguously from
// start; pathological gap patterns can under-report, which only costs a
// re-funding attempt on an existing account, not a double-create.
func EstimateHighest(p Prober, start, confirm uint32) (uint32, bool, error) {
	exists := func(i uint32) (bool, error) {
		found, err := p.Exists([]uint32{i})
		if err != nil {
			return false, errors.WithMessage(err, "existence probe")
		}
		return found[0], nil
	}

	ok, err := exists(start)
	if err != nil || !ok {
		return 0, false, err
	}

	// gallop: find a span [lo, hi) with lo created and hi not
	lo, step := start, uint32(1)
	for {
		hi := lo + step
		if hi < lo { // overflow guard
			return lo, true, nil
		}
		ok, err := exists(hi)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			// bisect inside (lo, hi)
			for hi-lo > 1 {
				mid := lo + (hi-lo)/2
				ok, err := exists(mid)
				if err != nil {
					return 0, false, err
				}
				if ok {
					lo = mid
				} else {
					hi = mid
				}
			}
			break
		}
		lo = hi
		step *= 2
	}

	// linear confirmation: step over gaps no wider than `confirm`
	for {
		advanced := false
		for i := uint32(1); i <= confirm; i++ {
			ok, err := exists(lo + i)
			if err != nil {
				return 0, false, err
			}
			if ok {
				lo += i
				advanced = true
				break
			}
		}
		if !advanced {
			return lo, true, nil
		}
	}
}

// ClassifyFast estimates the highest created index and marks everything at or
// below it existing, everything above available. Probes O(log n) indexes
// instead of the whole range.
func ClassifyFast(p Prober, start, count, confirm uint32) (*Result, error) {
	if count == 0 {
		return new(Result), nil
	}
	highest, any, err := EstimateHighest(p, start, confirm)
	if err != nil {
		return nil, err
	}
	result := new(Result)
	for i := uint32(0); i < count; i++ {
		idx := start + i
		if any && idx <= highest {
			result.Existing = append(result.Existing, idx)
		} else {
			result.Available = append(result.Available, idx)
		}
	}
	return result, nil
}
