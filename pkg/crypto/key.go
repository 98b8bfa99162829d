package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey wraps a secp256k1 private key controlling an Ethereum account.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PublicKey returns the uncompressed 65-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeUncompressed()
}

// Address returns the Ethereum address of the key:
// the last 20 bytes of keccak256(X || Y).
func (pk *PrivateKey) Address() common.Address {
	return AddressFromPubKey(pk.PublicKey())
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// AddressFromPubKey derives an Ethereum address from an uncompressed
// (65-byte, 0x04-prefixed) or compressed (33-byte) public key.
func AddressFromPubKey(pub []byte) common.Address {
	if len(pub) == secp256k1.PubKeyBytesLenCompressed {
		parsed, err := secp256k1.ParsePubKey(pub)
		if err != nil {
			return common.Address{}
		}
		pub = parsed.SerializeUncompressed()
	}
	if len(pub) != secp256k1.PubKeyBytesLenUncompressed {
		return common.Address{}
	}
	return common.BytesToAddress(crypto.Keccak256(pub[1:])[12:])
}
