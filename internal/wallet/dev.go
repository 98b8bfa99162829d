package wallet

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/pkg/crypto"
)

// Account is a derived development account.
type Account struct {
	Index   uint32
	Address common.Address
	Key     *crypto.PrivateKey
}

// DevAccounts derives the first n accounts of mnemonic.
func DevAccounts(mnemonic string, n int) ([]Account, error) {
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, n)
	for i := 0; i < n; i++ {
		child, err := master.DeriveAccount(uint32(i))
		if err != nil {
			return nil, err
		}
		key, err := child.PrivateKey()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{Index: uint32(i), Address: key.Address(), Key: key})
	}
	return accounts, nil
}
