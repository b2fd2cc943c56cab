// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	start, count, err := parseRange("1000")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), start)
	assert.Equal(t, uint32(1000), count)

	start, count, err = parseRange("500:750")
	require.NoError(t, err)
	assert.Equal(t, uint32(500), start)
	assert.Equal(t, uint32(250), count)
}

func TestParseRangeMalformed(t *testing.T) {
	for _, s := range []string{"", "0", "abc", "10:", ":10", "10:5", "7:7", "-5", "1:2:3", "0x10"} {
		_, _, err := parseRange(s)
		assert.Error(t, err, s)
	}
}

func TestFatalWriter(t *testing.T) {
	// under test both std streams are live; either stderr alone or the
	// multi-writer is acceptable, nil never is
	assert.NotNil(t, fatalWriter())
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 1, clampBatch(0))
	assert.Equal(t, 1, clampBatch(-3))
	assert.Equal(t, 100, clampBatch(100))
	assert.Equal(t, maxBatchSize, clampBatch(100000))

	assert.Equal(t, 1, clampParallel(0))
	assert.Equal(t, 8, clampParallel(8))
	assert.Equal(t, maxParallel, clampParallel(500))
}
