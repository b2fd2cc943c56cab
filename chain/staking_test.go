// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoragePrefix(t *testing.T) {
	// the canonical System.Account prefix, checkable against any chain explorer
	prefix := storagePrefix("System", "Account")
	require.Len(t, []byte(prefix), 32)
	assert.Equal(t,
		"26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9",
		hex.EncodeToString(prefix))
}

func TestTwox128(t *testing.T) {
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef7", hex.EncodeToString(twox128([]byte("System"))))
	assert.Len(t, twox128(nil), 16)
}
