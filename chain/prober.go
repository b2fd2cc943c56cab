// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"github.com/vechain/substake/keys"
)

// AccountProber answers existence queries for derived child accounts.
// It implements scan.Prober.
type AccountProber struct {
	conn *Conn
	ring *keys.Ring
}

// Prober creates an existence prober over the given derivation ring.
func (c *Conn) Prober(ring *keys.Ring) *AccountProber {
	return &AccountProber{conn: c, ring: ring}
}

// Exists probes the derived account at each index for on-chain presence.
func (p *AccountProber) Exists(indexes []uint32) ([]bool, error) {
	out := make([]bool, len(indexes))
	for i, idx := range indexes {
		pair, err := p.ring.Child(idx)
		if err != nil {
			return nil, err
		}
		info, err := p.conn.Account(pair.PublicKey)
		if err != nil {
			return nil, err
		}
		out[i] = info.Exists()
	}
	return out, nil
}
