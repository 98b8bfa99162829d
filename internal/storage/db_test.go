package storage

import (
	"bytes"
	"errors"
	"testing"
)

// testDB runs the shared test suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		if err := db.Put([]byte("acm/treasury"), []byte("0x01")); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		val, err := db.Get([]byte("acm/treasury"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(val, []byte("0x01")) {
			t.Errorf("Get() = %q, want %q", val, "0x01")
		}
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		_, err := db.Get([]byte("missing"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() missing key err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Has", func(t *testing.T) {
		db.Put([]byte("exists"), []byte("yes"))

		ok, err := db.Has([]byte("exists"))
		if err != nil {
			t.Fatalf("Has() error: %v", err)
		}
		if !ok {
			t.Error("Has() = false for existing key")
		}
		ok, err = db.Has([]byte("absent"))
		if err != nil {
			t.Fatalf("Has() error: %v", err)
		}
		if ok {
			t.Error("Has() = true for missing key")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		db.Put([]byte("ow"), []byte("first"))
		db.Put([]byte("ow"), []byte("second"))

		val, err := db.Get([]byte("ow"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(val, []byte("second")) {
			t.Errorf("Get() after overwrite = %q, want %q", val, "second")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db.Put([]byte("del"), []byte("value"))
		if err := db.Delete([]byte("del")); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if ok, _ := db.Has([]byte("del")); ok {
			t.Error("key should be gone after Delete()")
		}
		if err := db.Delete([]byte("never-existed")); err != nil {
			t.Errorf("Delete() nonexistent key error: %v", err)
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		if err := db.Put([]byte("empty"), []byte{}); err != nil {
			t.Fatalf("Put() empty value error: %v", err)
		}
		val, err := db.Get([]byte("empty"))
		if err != nil {
			t.Fatalf("Get() empty value error: %v", err)
		}
		if len(val) != 0 {
			t.Errorf("expected empty value, got %d bytes", len(val))
		}
	})

	t.Run("ForEachOrdered", func(t *testing.T) {
		db.Put([]byte("wl/c"), []byte("3"))
		db.Put([]byte("wl/a"), []byte("1"))
		db.Put([]byte("wl/b"), []byte("2"))
		db.Put([]byte("other/x"), []byte("4"))

		var keys []string
		err := db.ForEach([]byte("wl/"), func(key, value []byte) error {
			keys = append(keys, string(key))
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach() error: %v", err)
		}
		want := []string{"wl/a", "wl/b", "wl/c"}
		if len(keys) != len(want) {
			t.Fatalf("ForEach(wl/) keys = %v, want %v", keys, want)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
			}
		}
	})

	t.Run("BatchCommit", func(t *testing.T) {
		batcher, ok := db.(Batcher)
		if !ok {
			t.Skip("no batch support")
		}
		db.Put([]byte("b/old"), []byte("x"))

		b := batcher.NewBatch()
		b.Put([]byte("b/one"), []byte("1"))
		b.Put([]byte("b/two"), []byte("2"))
		b.Delete([]byte("b/old"))

		if ok, _ := db.Has([]byte("b/one")); ok {
			t.Fatal("batch write visible before Commit")
		}
		if err := b.Commit(); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
		for _, k := range []string{"b/one", "b/two"} {
			if ok, _ := db.Has([]byte(k)); !ok {
				t.Errorf("%s missing after Commit", k)
			}
		}
		if ok, _ := db.Has([]byte("b/old")); ok {
			t.Error("b/old should be deleted by Commit")
		}
	})

	t.Run("BatchDiscarded", func(t *testing.T) {
		batcher, ok := db.(Batcher)
		if !ok {
			t.Skip("no batch support")
		}
		b := batcher.NewBatch()
		b.Put([]byte("discarded"), []byte("1"))

		if ok, _ := db.Has([]byte("discarded")); ok {
			t.Error("uncommitted batch must not write")
		}
	})
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestMemoryDB_GetReturnsCopy(t *testing.T) {
	db := NewMemory()
	db.Put([]byte("k"), []byte("abc"))

	val, _ := db.Get([]byte("k"))
	val[0] = 'z'

	again, _ := db.Get([]byte("k"))
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through Get result: %q", again)
	}
}

func TestBadgerDB_Persistence(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	b := db1.NewBatch()
	b.Put([]byte("sweth/supply"), []byte("100"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	db1.Close()

	db2, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() reopen error: %v", err)
	}
	defer db2.Close()

	val, err := db2.Get([]byte("sweth/supply"))
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if !bytes.Equal(val, []byte("100")) {
		t.Errorf("persisted value = %q, want %q", val, "100")
	}
}
