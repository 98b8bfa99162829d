package sweth

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/swell-network/swell-core/pkg/crypto"
)

// StateRoot commits to the whole share ledger. The first leaf hashes the
// totals; each following leaf hashes one holder and balance, in address
// order. Two engines with equal state have equal roots.
func (e *Engine) StateRoot() common.Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()

	holders := make([]common.Address, 0, len(e.balances))
	for addr := range e.balances {
		holders = append(holders, addr)
	}
	sort.Slice(holders, func(i, j int) bool {
		return bytes.Compare(holders[i][:], holders[j][:]) < 0
	})

	leaves := make([]common.Hash, 0, len(holders)+1)
	leaves = append(leaves, hashTotals(e.totals))
	for _, addr := range holders {
		leaves = append(leaves, hashBalance(addr, e.balances[addr]))
	}
	return crypto.MerkleRoot(leaves)
}

// hashTotals hashes pooled(32) | shares(32) | deposited(32).
func hashTotals(t totals) common.Hash {
	buf := make([]byte, 0, 96)
	buf = appendWord(buf, t.Pooled)
	buf = appendWord(buf, t.Shares)
	buf = appendWord(buf, t.Deposited)
	return crypto.Hash(buf)
}

// hashBalance hashes address(20) | balance(32).
func hashBalance(addr common.Address, bal *uint256.Int) common.Hash {
	buf := make([]byte, 0, common.AddressLength+32)
	buf = append(buf, addr[:]...)
	buf = appendWord(buf, bal)
	return crypto.Hash(buf)
}

func appendWord(buf []byte, v *uint256.Int) []byte {
	w := v.Bytes32()
	return append(buf, w[:]...)
}
