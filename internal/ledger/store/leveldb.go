package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"vaxledger/internal/ledger/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
	platformsync "vaxledger/pkg/platform/sync"
)

const recordKeyPrefix = "vaccination:"

// LevelDBStore keeps records in an embedded key-value store for single-node
// deployments. LevelDB has no conditional put, so writes to the same token
// are serialized in-process.
type LevelDBStore struct {
	db    *leveldb.DB
	locks *platformsync.KeyedMutex
}

func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return NewLevelDB(db), nil
}

func NewLevelDB(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db, locks: platformsync.NewKeyedMutex()}
}

func recordKey(token id.ProofToken) []byte {
	return []byte(recordKeyPrefix + token.String())
}

func (s *LevelDBStore) Create(ctx context.Context, r *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeRecord(r)
	if err != nil {
		return err
	}
	key := recordKey(r.ProofToken)
	return s.locks.WithLock(string(key), func() error {
		exists, err := s.db.Has(key, nil)
		if err != nil {
			return fmt.Errorf("check record: %w", err)
		}
		if exists {
			return fmt.Errorf("proof token %s: %w", r.ProofToken, sentinel.ErrAlreadyUsed)
		}
		if err := s.db.Put(key, data, &opt.WriteOptions{Sync: true}); err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		return nil
	})
}

func (s *LevelDBStore) FindByToken(ctx context.Context, token id.ProofToken) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.db.Get(recordKey(token), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decodeRecord(data)
}

// Count walks the record keyspace. It is linear in the number of records.
func (s *LevelDBStore) Count() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(recordKeyPrefix)), nil)
	defer iter.Release()
	n := 0
	for iter.Next() {
		n++
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("iterate records: %w", err)
	}
	return n, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
