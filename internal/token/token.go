// Package token implements the ledger of foreign ERC20 tokens held by
// protocol accounts.
//
// Tokens are identified by their contract address. Balances follow ERC20
// rules: transfers conserve supply, mints create it, and every movement
// emits a Transfer log under the token's address. The access manager uses
// the ledger to rescue tokens sent to it by mistake.
package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/swell-network/swell-core/pkg/revert"
)

// Ledger failure kinds.
var (
	ErrInsufficientBalance = revert.New("InsufficientBalance")
	ErrUnknownToken        = revert.New("UnknownToken")
	ErrTokenExists         = revert.New("TokenAlreadyRegistered")
)

// DeriveAddress computes the address a token contract deployed by creator
// at nonce would have.
func DeriveAddress(creator common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(creator, nonce)
}

// Metadata holds descriptive information about a token.
type Metadata struct {
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Creator  common.Address `json:"creator"`
}
