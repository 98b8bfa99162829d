package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func TestPrivateKey_Address(t *testing.T) {
	// First Hardhat/Anvil dev account.
	secret := hexutil.MustDecode("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	key, err := PrivateKeyFromBytes(secret)
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}

	want := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	if got := key.Address(); got != want {
		t.Errorf("Address() = %s, want %s", got, want)
	}
}

func TestAddressFromPubKey_Compressed(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	compressed := key.key.PubKey().SerializeCompressed()
	if got := AddressFromPubKey(compressed); got != key.Address() {
		t.Errorf("compressed address = %s, want %s", got, key.Address())
	}
}

func TestAddressFromPubKey_BadLength(t *testing.T) {
	if got := AddressFromPubKey([]byte{1, 2, 3}); got != (common.Address{}) {
		t.Errorf("expected zero address, got %s", got)
	}
}

func TestPrivateKeyFromBytes_BadLength(t *testing.T) {
	if _, err := PrivateKeyFromBytes(make([]byte, 31)); err == nil {
		t.Error("expected error for 31-byte key")
	}
}
