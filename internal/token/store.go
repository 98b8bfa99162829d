package token

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/internal/storage"
)

var prefixToken = []byte("t/") // t/<token(20)> -> Metadata JSON

// Store persists token metadata.
type Store struct {
	db storage.DB
}

// NewStore creates a token metadata store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Put stores metadata for a token.
func (s *Store) Put(token common.Address, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(tokenKey(token), data)
}

// Stage writes metadata into b instead of the store.
func (s *Store) Stage(b storage.Batch, token common.Address, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return b.Put(tokenKey(token), data)
}

// Get retrieves metadata for a token.
func (s *Store) Get(token common.Address) (*Metadata, error) {
	data, err := s.db.Get(tokenKey(token))
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has checks if metadata exists for a token.
func (s *Store) Has(token common.Address) (bool, error) {
	return s.db.Has(tokenKey(token))
}

// MetadataEntry pairs a token address with its metadata.
type MetadataEntry struct {
	Address common.Address `json:"address"`
	Metadata
}

// ForEach iterates over all token metadata entries in address order.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEach(fn func(common.Address, *Metadata) error) error {
	return s.db.ForEach(prefixToken, func(key, value []byte) error {
		if len(key) != len(prefixToken)+common.AddressLength {
			return nil
		}
		addr := common.BytesToAddress(key[len(prefixToken):])

		var meta Metadata
		if err := json.Unmarshal(value, &meta); err != nil {
			return fmt.Errorf("token %s: %w", addr.Hex(), err)
		}
		return fn(addr, &meta)
	})
}

// List returns all token metadata entries.
func (s *Store) List() ([]MetadataEntry, error) {
	entries := []MetadataEntry{}
	err := s.ForEach(func(addr common.Address, meta *Metadata) error {
		entries = append(entries, MetadataEntry{Address: addr, Metadata: *meta})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func tokenKey(token common.Address) []byte {
	key := make([]byte, len(prefixToken)+common.AddressLength)
	copy(key, prefixToken)
	copy(key[len(prefixToken):], token[:])
	return key
}
