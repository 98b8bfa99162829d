package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestGenerateMnemonic(t *testing.T) {
	m1, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	m2, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	if n := len(strings.Fields(m1)); n != 24 {
		t.Errorf("word count = %d, want 24", n)
	}
	if !ValidateMnemonic(m1) {
		t.Error("generated mnemonic should validate")
	}
	if m1 == m2 {
		t.Error("two generated mnemonics should differ")
	}
}

func TestSeedFromMnemonic_KnownVector(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	seed, err := SeedFromMnemonic(mnemonic, "TREZOR")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	want, _ := hex.DecodeString("c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04")
	if !bytes.Equal(seed, want) {
		t.Errorf("seed = %x, want %x", seed, want)
	}
}

func TestSeedFromMnemonic_Invalid(t *testing.T) {
	for _, m := range []string{"", "not valid words here", "abandon"} {
		if _, err := SeedFromMnemonic(m, ""); !errors.Is(err, ErrInvalidMnemonic) {
			t.Errorf("SeedFromMnemonic(%q) err = %v, want ErrInvalidMnemonic", m, err)
		}
	}
}

func TestNewMasterKey_InvalidSeedLength(t *testing.T) {
	for _, n := range []int{0, 32, 128} {
		if _, err := NewMasterKey(make([]byte, n)); err == nil {
			t.Errorf("NewMasterKey(%d bytes) should fail", n)
		}
	}
}

func TestDevAccounts_KnownAddresses(t *testing.T) {
	accounts, err := DevAccounts(DevMnemonic, 3)
	if err != nil {
		t.Fatalf("DevAccounts() error: %v", err)
	}
	want := []common.Address{
		common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	}
	if len(accounts) != len(want) {
		t.Fatalf("got %d accounts, want %d", len(accounts), len(want))
	}
	for i, acc := range accounts {
		if acc.Address != want[i] {
			t.Errorf("account %d = %s, want %s", i, acc.Address.Hex(), want[i].Hex())
		}
		if acc.Index != uint32(i) {
			t.Errorf("account %d index = %d", i, acc.Index)
		}
	}

	key0 := hex.EncodeToString(accounts[0].Key.Serialize())
	if key0 != "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80" {
		t.Errorf("account 0 key = %s", key0)
	}
}

func TestDeriveAccount_Depth(t *testing.T) {
	seed, err := SeedFromMnemonic(DevMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	key, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatalf("DeriveAccount() error: %v", err)
	}
	if key.Depth() != 5 {
		t.Errorf("depth = %d, want 5", key.Depth())
	}
	priv, err := key.PrivateKey()
	if err != nil {
		t.Fatalf("PrivateKey() error: %v", err)
	}
	if priv.Address() != key.Address() {
		t.Error("private key and public key addresses differ")
	}
}
