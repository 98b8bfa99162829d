package events

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/swell-network/swell-core/internal/storage"
)

var (
	keyHead      = []byte("head")
	keyLogPrefix = []byte("l")
)

// Filter selects logs from the journal. Zero values match everything.
type Filter struct {
	FromSeq uint64
	Address *common.Address
	Name    string
	Limit   int
}

func (f Filter) match(l Log) bool {
	if l.Seq < f.FromSeq {
		return false
	}
	if f.Address != nil && l.Address != *f.Address {
		return false
	}
	return f.Name == "" || l.Name == f.Name
}

// Journal is the append-only record of every committed log. Writes are
// staged into the caller's batch so logs land atomically with the state
// change that produced them.
type Journal struct {
	mu   sync.RWMutex
	db   storage.DB
	next uint64
	feed event.Feed
}

// NewJournal opens the journal stored in db (typically an "ev/" namespace).
func NewJournal(db storage.DB) (*Journal, error) {
	j := &Journal{db: db}
	raw, err := db.Get(keyHead)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read journal head: %w", err)
	case len(raw) != 8:
		return nil, fmt.Errorf("corrupt journal head: %d bytes", len(raw))
	default:
		j.next = binary.BigEndian.Uint64(raw)
	}
	return j, nil
}

// Stage assigns sequence numbers to logs and writes them into b. The
// journal itself is unchanged until Publish is called after b commits.
// Callers must serialize Stage/Publish pairs.
func (j *Journal) Stage(b storage.Batch, logs []Log) ([]Log, error) {
	if len(logs) == 0 {
		return nil, nil
	}
	j.mu.RLock()
	seq := j.next
	j.mu.RUnlock()

	out := make([]Log, len(logs))
	for i, l := range logs {
		l.Seq = seq
		data, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("marshal log %s: %w", l.Name, err)
		}
		if err := b.Put(logKey(seq), data); err != nil {
			return nil, err
		}
		out[i] = l
		seq++
	}
	var head [8]byte
	binary.BigEndian.PutUint64(head[:], seq)
	if err := b.Put(keyHead, head[:]); err != nil {
		return nil, err
	}
	return out, nil
}

// Publish advances the journal past logs and delivers them to subscribers.
func (j *Journal) Publish(logs []Log) {
	if len(logs) == 0 {
		return
	}
	j.mu.Lock()
	j.next = logs[len(logs)-1].Seq + 1
	j.mu.Unlock()

	for _, l := range logs {
		j.feed.Send(l)
	}
}

// Subscribe delivers every published log to ch. Subscribers must drain ch
// promptly and must not call back into the emitting components.
func (j *Journal) Subscribe(ch chan<- Log) event.Subscription {
	return j.feed.Subscribe(ch)
}

// Len returns the number of committed logs.
func (j *Journal) Len() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.next
}

// Logs returns committed logs matching f in sequence order.
func (j *Journal) Logs(f Filter) ([]Log, error) {
	j.mu.RLock()
	head := j.next
	j.mu.RUnlock()

	var out []Log
	errStop := errors.New("stop")
	err := j.db.ForEach(keyLogPrefix, func(key, value []byte) error {
		var l Log
		if err := json.Unmarshal(value, &l); err != nil {
			return fmt.Errorf("decode log %x: %w", key, err)
		}
		// Staged but not yet published.
		if l.Seq >= head {
			return errStop
		}
		if !f.match(l) {
			return nil
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) >= f.Limit {
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	return out, nil
}

func logKey(seq uint64) []byte {
	key := make([]byte, len(keyLogPrefix)+8)
	copy(key, keyLogPrefix)
	binary.BigEndian.PutUint64(key[len(keyLogPrefix):], seq)
	return key
}
