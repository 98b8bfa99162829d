// Package crypto provides hashing and key primitives used by the protocol core.
package crypto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) common.Hash {
	return blake3.Sum256(data)
}

// HashConcat hashes the concatenation of two hashes.
// Used for building merkle trees.
func HashConcat(a, b common.Hash) common.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}

// MerkleRoot calculates the merkle root of a list of leaf hashes.
//
//   - 0 hashes: zero hash
//   - 1 hash: that hash
//   - otherwise pairwise hash, duplicating the last element on odd levels,
//     until one hash remains.
func MerkleRoot(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]common.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]common.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = HashConcat(level[i], level[i+1])
		}
		level = next
	}
	return level[0]
}
