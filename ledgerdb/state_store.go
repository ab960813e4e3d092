package ledgerdb

import (
	"fmt"

	"github.com/annchain/settler/core"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

const statePrefix = "state/"

const DefaultStateCacheSize = 64

// StateStore keeps the committed state of every named ledger in a Database.
// Decoded states are cached by name.
type StateStore struct {
	db    Database
	cache *lru.Cache
}

func NewStateStore(db Database, cacheSize int) (*StateStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultStateCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &StateStore{db: db, cache: cache}, nil
}

func stateKey(name string) []byte {
	return []byte(statePrefix + name)
}

// Load returns the committed state of ledger name, or the zero state if the
// ledger was never saved.
func (s *StateStore) Load(name string) (core.State, error) {
	if v, ok := s.cache.Get(name); ok {
		return v.(core.State), nil
	}
	data, err := s.db.Get(stateKey(name))
	if err == ErrNotFound {
		logrus.WithField("ledger", name).Debug("no stored state, starting empty")
		return core.State{}, nil
	}
	if err != nil {
		return core.State{}, fmt.Errorf("read state of %s: %w", name, err)
	}
	var state core.State
	if _, err := state.UnmarshalMsg(data); err != nil {
		return core.State{}, fmt.Errorf("decode state of %s: %w", name, err)
	}
	s.cache.Add(name, state)
	return state, nil
}

func (s *StateStore) Save(name string, state core.State) error {
	data, err := state.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("encode state of %s: %w", name, err)
	}
	if err := s.db.Put(stateKey(name), data); err != nil {
		s.cache.Remove(name)
		return fmt.Errorf("write state of %s: %w", name, err)
	}
	s.cache.Add(name, state)
	return nil
}

func (s *StateStore) Delete(name string) error {
	s.cache.Remove(name)
	return s.db.Delete(stateKey(name))
}
