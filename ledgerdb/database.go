// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledgerdb

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

var ErrNotFound = errors.New("not found")

// Putter wraps the database write operation.
type Putter interface {
	Put(key []byte, value []byte) error
}

// Deleter wraps the database delete operation.
type Deleter interface {
	Delete(key []byte) error
}

// Database is the key-value store the ledger state is kept in.
type Database interface {
	Putter
	Deleter
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Close()
}

const (
	minCache   = 16
	minHandles = 16
)

/*
 * LevelDB operator
 */
type LevelDB struct {
	fn   string
	db   *leveldb.DB
	lock sync.Mutex
}

// NewLevelDB opens (or creates) the database at file. cache is in megabytes.
func NewLevelDB(file string, cache int, handles int) (*LevelDB, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logrus.WithFields(logrus.Fields{
		"path":    file,
		"cache":   cache,
		"handles": handles,
	}).Info("Allocated cache and file handles")

	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if leveldbErrors.IsCorrupted(err) {
		logrus.WithField("path", file).Warn("database corrupted, trying to recover")
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{fn: file, db: db}, nil
}

// NewMemLevelDB returns a LevelDB kept entirely in memory.
func NewMemLevelDB() *LevelDB {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// memory storage cannot fail to open
		panic(err)
	}
	return &LevelDB{fn: "memory", db: db}
}

func (db *LevelDB) Path() string {
	return db.fn
}

func (db *LevelDB) Put(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

func (db *LevelDB) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

func (db *LevelDB) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dat, nil
}

func (db *LevelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

func (db *LevelDB) Close() {
	db.lock.Lock()
	defer db.lock.Unlock()

	if err := db.db.Close(); err != nil {
		logrus.WithError(err).WithField("path", db.fn).Error("failed to close database")
		return
	}
	logrus.WithField("path", db.fn).Info("database closed")
}
