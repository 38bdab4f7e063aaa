package state

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps state in a badger directory. With a non-zero TTL an
// abandoned flow expires on its own.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

type badgerRow struct {
	State   Name    `json:"state"`
	Payload Payload `json:"payload"`
}

// OpenBadger opens (or creates) dir. An empty dir opens an in-memory store.
func OpenBadger(dir string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func key(actor int64) []byte { return []byte("state/" + strconv.FormatInt(actor, 10)) }

func (s *BadgerStore) Get(actor int64) (Name, Payload, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(actor))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return None, Payload{}, nil
	}
	if err != nil {
		return None, Payload{}, err
	}
	var row badgerRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return None, Payload{}, err
	}
	if row.Payload == nil {
		row.Payload = Payload{}
	}
	return row.State, row.Payload, nil
}

func (s *BadgerStore) Set(actor int64, name Name, p Payload) error {
	if p == nil {
		p = Payload{}
	}
	raw, err := json.Marshal(badgerRow{State: name, Payload: p})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(actor), raw)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerStore) Clear(actor int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(actor))
	})
}
