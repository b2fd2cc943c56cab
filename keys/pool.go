// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keys

import "encoding/binary"

// PoolAccountKind selects which derived sub-account of a nomination pool.
type PoolAccountKind byte

const (
	PoolBonded PoolAccountKind = 0
	PoolReward PoolAccountKind = 1
)

// nomination-pools PalletId, fixed by the runtime.
const poolPalletID = "py/nopls"

// PoolAccount computes the runtime-derived account id of a nomination pool's
// bonded or reward account: "modl" ++ pallet id ++ kind ++ u32-le pool id,
// zero-padded to 32 bytes.
func PoolAccount(kind PoolAccountKind, poolID uint32) []byte {
	out := make([]byte, 32)
	n := copy(out, "modl")
	n += copy(out[n:], poolPalletID)
	out[n] = byte(kind)
	binary.LittleEndian.PutUint32(out[n+1:], poolID)
	return out
}
