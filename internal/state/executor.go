// Package state runs protocol operations one at a time, each as an
// all-or-nothing unit: storage writes and emitted events commit together or
// not at all.
package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/storage"
)

// Executor serializes mutating operations over a shared database.
type Executor struct {
	mu      sync.Mutex
	db      storage.BatchDB
	evDB    *storage.PrefixDB
	journal *events.Journal
}

// NewExecutor opens the event journal under the "ev/" namespace of db.
func NewExecutor(db storage.BatchDB) (*Executor, error) {
	evDB := storage.NewPrefixDB(db, []byte("ev/"))
	j, err := events.NewJournal(evDB)
	if err != nil {
		return nil, err
	}
	return &Executor{db: db, evDB: evDB, journal: j}, nil
}

// Journal returns the committed event log.
func (e *Executor) Journal() *events.Journal {
	return e.journal
}

// Namespace returns a view of the database under prefix, for component state.
func (e *Executor) Namespace(prefix string) *storage.PrefixDB {
	return storage.NewPrefixDB(e.db, []byte(prefix))
}

// Execute runs fn with exclusive write access. If fn returns an error
// nothing it staged is written and no event is emitted. Otherwise the batch
// is committed, commit hooks run in registration order and the staged
// events are appended to the journal and published.
func (e *Executor) Execute(fn func(tx *Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := &Tx{batch: e.db.NewBatch()}
	if err := fn(tx); err != nil {
		return err
	}

	staged, err := e.journal.Stage(e.evDB.Wrap(tx.batch), tx.logs)
	if err != nil {
		return fmt.Errorf("stage events: %w", err)
	}
	if err := tx.batch.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	for _, hook := range tx.hooks {
		hook()
	}
	e.journal.Publish(staged)
	return nil
}

// Tx collects the effects of one operation.
type Tx struct {
	batch   storage.Batch
	logs    []events.Log
	hooks   []func()
	pending map[interface{}]interface{}
}

// Writer returns a batch view that writes into ns as part of this operation.
func (tx *Tx) Writer(ns *storage.PrefixDB) storage.Batch {
	return ns.Wrap(tx.batch)
}

// PutJSON stages v, JSON-encoded, under key in ns.
func (tx *Tx) PutJSON(ns *storage.PrefixDB, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return tx.Writer(ns).Put(key, data)
}

// Emit stages ev as a log from contract.
func (tx *Tx) Emit(contract common.Address, ev events.Event) error {
	l, err := events.Encode(contract, ev)
	if err != nil {
		return err
	}
	tx.logs = append(tx.logs, l)
	return nil
}

// OnCommit registers fn to run after the batch commits. Components use it
// to publish new in-memory state.
func (tx *Tx) OnCommit(fn func()) {
	tx.hooks = append(tx.hooks, fn)
}

// Pending returns per-operation scratch state stored under key, creating it
// with init on first use. Components keep values staged earlier in the same
// operation here, since their committed view is only updated on commit.
func (tx *Tx) Pending(key interface{}, init func() interface{}) interface{} {
	if tx.pending == nil {
		tx.pending = make(map[interface{}]interface{})
	}
	v, ok := tx.pending[key]
	if !ok {
		v = init()
		tx.pending[key] = v
	}
	return v
}

// Logs returns the events staged so far.
func (tx *Tx) Logs() []events.Log {
	return tx.logs
}
