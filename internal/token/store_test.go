package token

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/internal/storage"
)

func TestStore_PutGetHas(t *testing.T) {
	store := NewStore(storage.NewMemory())

	addr := common.HexToAddress("0x0165878A594ca255338adfa4d48449f69242Eb8F")
	meta := &Metadata{
		Name:     "Mock USD",
		Symbol:   "mUSD",
		Decimals: 6,
		Creator:  common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	}

	has, err := store.Has(addr)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Fatal("expected Has=false before Put")
	}

	if err := store.Put(addr, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(addr)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != *meta {
		t.Errorf("Get = %+v, want %+v", got, meta)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(storage.NewMemory())

	_, err := store.Get(common.Address{0xFF})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get missing token err = %v, want ErrNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(storage.NewMemory())

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}

	for i, sym := range []string{"GAM", "ALP", "BET"} {
		if err := store.Put(common.Address{byte(3 - i)}, &Metadata{Symbol: sym}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	entries, err = store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"BET", "ALP", "GAM"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Symbol != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Symbol, want[i])
		}
	}
}

func TestStore_ForEach_StopEarly(t *testing.T) {
	store := NewStore(storage.NewMemory())
	for i := 0; i < 5; i++ {
		if err := store.Put(common.Address{byte(i + 1)}, &Metadata{Symbol: "TKN"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	var count int
	errStop := errors.New("stop")
	err := store.ForEach(func(common.Address, *Metadata) error {
		count++
		if count >= 2 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Errorf("error = %v, want %v", err, errStop)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
