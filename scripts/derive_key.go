// derive_key.go prints the address for a hex-encoded private key file, or the
// dev accounts of a mnemonic.
// Usage:
//
//	go run scripts/derive_key.go <keyfile>
//	go run scripts/derive_key.go -mnemonic "<words>" [-n 10]
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/swell-network/swell-core/internal/wallet"
	"github.com/swell-network/swell-core/pkg/crypto"
)

func main() {
	mnemonic := flag.String("mnemonic", "", "derive dev accounts from this mnemonic")
	n := flag.Int("n", 10, "number of dev accounts")
	flag.Parse()

	if *mnemonic != "" {
		accounts, err := wallet.DevAccounts(*mnemonic, *n)
		if err != nil {
			fail(err)
		}
		for _, a := range accounts {
			fmt.Printf("%d address=%s key=%s\n", a.Index, a.Address.Hex(), hex.EncodeToString(a.Key.Serialize()))
		}
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile> | -mnemonic \"<words>\" [-n N]")
		os.Exit(1)
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fail(err)
	}
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(string(data)), "0x"))
	if err != nil {
		fail(err)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		fail(err)
	}
	defer key.Zero()
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(key.PublicKey()))
	fmt.Printf("address=%s\n", key.Address().Hex())
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
